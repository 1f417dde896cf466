package testsupport

import (
	"testing"

	"vpack/internal/config"
	"vpack/internal/store"
)

// MustOpenStore opens an event store in the config's data directory and
// closes it when the test finishes.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}
