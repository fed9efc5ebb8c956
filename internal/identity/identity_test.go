package identity

import (
	"strings"
	"testing"
)

func TestStoreID_Deterministic(t *testing.T) {
	a := StoreID("Mercadona", "Calle Mayor 5", "", "")
	b := StoreID("Mercadona", "Calle Mayor 5", "", "")

	if a != b {
		t.Errorf("repeated calls disagree: %q vs %q", a, b)
	}
	if len(a) != storeIDLen {
		t.Errorf("id length = %d, want %d", len(a), storeIDLen)
	}
}

func TestStoreID_CaseInsensitive(t *testing.T) {
	a := StoreID("Mercadona", "Calle Mayor 5", "", "")
	b := StoreID("MERCADONA", "calle mayor 5", "", "")

	if a != b {
		t.Errorf("case variations disagree: %q vs %q", a, b)
	}
}

func TestStoreID_DistinctAddresses(t *testing.T) {
	a := StoreID("Mercadona", "Calle Mayor 5", "", "")
	b := StoreID("Mercadona", "Calle Mayor 6", "", "")

	if a == b {
		t.Errorf("distinct addresses share id %q", a)
	}
}

func TestStoreID_FallbackKeyWhenAddressAbsent(t *testing.T) {
	// Without an address, city and zipcode must participate in the key.
	a := StoreID("Alimerka", "", "Gijón", "33201")
	b := StoreID("Alimerka", "", "Gijón", "33202")

	if a == b {
		t.Errorf("distinct zipcodes share id %q under the fallback key", a)
	}

	// And the fallback must itself be stable.
	if a != StoreID("ALIMERKA", "", "gijón", "33201") {
		t.Error("fallback key is not case-insensitive")
	}
}

func TestLegacyStoreID_DeterministicBase36(t *testing.T) {
	a := LegacyStoreID("Mercadona", "Calle Mayor 5", "", "")
	b := LegacyStoreID("Mercadona", "Calle Mayor 5", "", "")

	if a != b {
		t.Errorf("repeated calls disagree: %q vs %q", a, b)
	}
	if a == "" {
		t.Fatal("legacy id is empty")
	}
	for _, ch := range a {
		if !strings.ContainsRune("0123456789abcdefghijklmnopqrstuvwxyz", ch) {
			t.Errorf("legacy id %q contains non-base36 character %q", a, ch)
		}
	}
}

func TestNewID_NeverEmpty(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if id == "" {
			t.Fatal("NewID returned empty string")
		}
		if seen[id] {
			t.Fatalf("NewID returned duplicate %q", id)
		}
		seen[id] = true
	}
}

func TestNewID_FallbackChain(t *testing.T) {
	// Providers that fail must be skipped until one succeeds.
	failing := func() (string, error) { return "", errStub }
	ok := func() (string, error) { return "from-fallback", nil }

	orig := providers
	defer func() { providers = orig }()
	providers = []provider{failing, failing, ok}

	if got := NewID(); got != "from-fallback" {
		t.Errorf("NewID = %q, want %q", got, "from-fallback")
	}
}

var errStub = errNoEntropy{}

type errNoEntropy struct{}

func (errNoEntropy) Error() string { return "entropy source unavailable" }
