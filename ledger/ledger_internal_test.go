package ledger

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestNew_DummyHashUsesConfiguredCost(t *testing.T) {
	for _, cost := range []int{bcrypt.MinCost, bcrypt.MinCost + 2, bcrypt.DefaultCost} {
		l := New(nil, WithHashCost(cost))
		got, err := bcrypt.Cost(l.dummyHash)
		if err != nil {
			t.Fatalf("cost %d: dummy hash invalid: %v", cost, err)
		}
		if got != cost {
			t.Errorf("dummy hash cost = %d, want %d", got, cost)
		}
	}

	got, err := bcrypt.Cost(New(nil).dummyHash)
	if err != nil || got != bcrypt.DefaultCost {
		t.Errorf("default dummy hash cost = %d (%v), want %d", got, err, bcrypt.DefaultCost)
	}
}

func TestNormalizeHandle(t *testing.T) {
	for in, want := range map[string]string{
		"ana":    "ana",
		" Ana ":  "ana",
		"ADMIN":  "admin",
		"\tT1\n": "t1",
	} {
		if got := NormalizeHandle(in); got != want {
			t.Errorf("NormalizeHandle(%q) = %q, want %q", in, got, want)
		}
	}
}
