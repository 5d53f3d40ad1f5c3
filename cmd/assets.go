package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cart_ledger/ledger"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Manage the device inventory",
}

var assetsImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Register devices from a YAML inventory file",
	Long: `Register every device listed in an inventory file. Devices that are
already registered are skipped, so the same file can be imported again.

File format:
  carts:
    - cart: A
      from: 1
      to: 30
    - cart: B
      numbers: [1, 2, 5]`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		inv, err := parseInventory(b)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		l, closeFn, err := openLedger(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		rep, err := importInventory(cmd.Context(), l, inv, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "registered %d, already present %d\n", rep.Registered, rep.Existing)
		return nil
	},
}

func init() {
	assetsCmd.AddCommand(assetsImportCmd)
}

type inventoryFile struct {
	Carts []inventoryCart `yaml:"carts"`
}

type inventoryCart struct {
	Cart    string `yaml:"cart"`
	From    int    `yaml:"from"`
	To      int    `yaml:"to"`
	Numbers []int  `yaml:"numbers"`
}

type deviceKey struct {
	Number int
	Cart   string
}

// parseInventory expands ranges and explicit numbers, in file order,
// dropping repeats.
func parseInventory(b []byte) ([]deviceKey, error) {
	var f inventoryFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	if len(f.Carts) == 0 {
		return nil, errors.New("no carts listed")
	}

	var out []deviceKey
	seen := map[deviceKey]bool{}
	add := func(k deviceKey) {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	for i, c := range f.Carts {
		cart := strings.TrimSpace(c.Cart)
		if cart == "" {
			return nil, fmt.Errorf("carts[%d]: cart is required", i)
		}
		if c.From != 0 || c.To != 0 {
			if c.From <= 0 || c.To < c.From {
				return nil, fmt.Errorf("carts[%d]: invalid range %d-%d", i, c.From, c.To)
			}
			for n := c.From; n <= c.To; n++ {
				add(deviceKey{Number: n, Cart: cart})
			}
		}
		for _, n := range c.Numbers {
			if n <= 0 {
				return nil, fmt.Errorf("carts[%d]: invalid device number %d", i, n)
			}
			add(deviceKey{Number: n, Cart: cart})
		}
	}
	return out, nil
}

type importReport struct {
	Registered int
	Existing   int
}

func importInventory(ctx context.Context, l *ledger.Ledger, inv []deviceKey, w io.Writer) (importReport, error) {
	var rep importReport
	for _, k := range inv {
		_, err := l.RegisterAsset(ctx, k.Number, k.Cart)
		switch {
		case err == nil:
			rep.Registered++
		case errors.Is(err, ledger.ErrDuplicateAsset):
			rep.Existing++
		default:
			fmt.Fprintf(w, "device %d (cart %s): %v\n", k.Number, k.Cart, err)
			return rep, err
		}
	}
	return rep, nil
}
