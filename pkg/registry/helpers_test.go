package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fulmenhq/omniscript/pkg/cache"
)

const (
	testHubURL  = "https://hub.test"
	testQuayURL = "https://quay.test"
)

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("Failed to load fixture %s: %v", name, err)
	}
	return string(data)
}

func newTestStore(t *testing.T) *cache.Store {
	t.Helper()
	return cache.NewStore(cache.Options{
		Root: filepath.Join(t.TempDir(), "cache", "python"),
		TTL:  time.Hour,
	})
}

func newTestSearcher(t *testing.T, mock *MockHTTPFetcher, oci TagSource) *Searcher {
	t.Helper()
	return NewSearcher(Options{
		HTTP:         mock,
		Cache:        newTestStore(t),
		DockerHubURL: testHubURL,
		QuayURL:      testQuayURL,
		OCI:          oci,
		DisableOCI:   oci == nil,
	})
}
