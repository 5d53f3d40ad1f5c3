// Package ledger is the sole authority over staff credentials and device
// lending state. Every mutation runs in one store transaction and is paired
// with exactly one history entry.
package ledger

import (
	"cart_ledger/db"

	"golang.org/x/crypto/bcrypt"
)

const SchemaVersion = 2

// Capabilities describes optional behavior of this ledger so callers never
// have to probe for it.
type Capabilities struct {
	SchemaVersion  int  `json:"schemaVersion"`
	BorrowerGroup  bool `json:"borrowerGroup"`
	Maintenance    bool `json:"maintenance"`
	ImplicitCreate bool `json:"implicitCreate"`
}

// Caller is the authenticated identity acting on the ledger.
type Caller struct {
	AccountID uint   `json:"id"`
	Handle    string `json:"handle"`
	Name      string `json:"name"`
	IsAdmin   bool   `json:"isAdmin"`
}

type Ledger struct {
	repo           *db.Repo
	hashCost       int
	implicitCreate bool

	// 未知账号也按同样的 cost 比对一次
	dummyHash []byte
}

type Option func(*Ledger)

// WithHashCost sets the bcrypt cost for new credentials.
func WithHashCost(cost int) Option {
	return func(l *Ledger) { l.hashCost = cost }
}

// WithStrictInventory makes LoanAsset reject devices that were never registered.
func WithStrictInventory() Option {
	return func(l *Ledger) { l.implicitCreate = false }
}

func New(repo *db.Repo, opts ...Option) *Ledger {
	l := &Ledger{
		repo:           repo,
		hashCost:       bcrypt.DefaultCost,
		implicitCreate: true,
	}
	for _, o := range opts {
		o(l)
	}
	l.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-secret"), l.hashCost)
	return l
}

func (l *Ledger) Capabilities() Capabilities {
	return Capabilities{
		SchemaVersion:  SchemaVersion,
		BorrowerGroup:  true,
		Maintenance:    true,
		ImplicitCreate: l.implicitCreate,
	}
}
