package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingAdapter is a canned adapter that logs call order
type recordingAdapter struct {
	id      string
	results []ImageResult
	log     *[]string
}

func (r *recordingAdapter) ID() string       { return r.id }
func (r *recordingAdapter) Registry() string { return r.id + ".example" }
func (r *recordingAdapter) Search(term string, limit int) []ImageResult {
	*r.log = append(*r.log, r.id)
	return r.results
}

func TestSearcher_SearchAll(t *testing.T) {
	mock := NewMockHTTPFetcher()
	mock.AddResponse(hubNginxURL, 200, loadFixture(t, "dockerhub_search_nginx.json"))
	mock.AddResponse(quayNginxURL, 200, loadFixture(t, "quay_search_nginx.json"))

	s := newTestSearcher(t, mock, nil)
	all := s.SearchAll("nginx", 10)

	require.Len(t, all, 2)
	assert.Len(t, all["docker_hub"], 3)
	assert.Len(t, all["quay"], 3)
}

func TestSearcher_SearchAllMemoizesEmptyResults(t *testing.T) {
	mock := NewMockHTTPFetcher()
	mock.AddResponse(hubNginxURL, 200, `{"results": []}`)
	mock.AddResponse(quayNginxURL, 200, `{"results": []}`)

	s := newTestSearcher(t, mock, nil)
	s.SearchAll("nginx", 10)
	all := s.SearchAll("nginx", 10)

	assert.Empty(t, all["docker_hub"])
	assert.Empty(t, all["quay"])
	assert.Equal(t, 1, mock.Calls(hubNginxURL))
	assert.Equal(t, 1, mock.Calls(quayNginxURL))
}

func TestSearcher_PartialFailureIsolation(t *testing.T) {
	mock := NewMockHTTPFetcher()
	mock.AddError(hubNginxURL, errors.New("i/o timeout"))
	mock.AddResponse(quayNginxURL, 200, loadFixture(t, "quay_search_nginx.json"))

	all := newTestSearcher(t, mock, nil).SearchAll("nginx", 10)

	require.Contains(t, all, "docker_hub")
	assert.NotNil(t, all["docker_hub"])
	assert.Empty(t, all["docker_hub"])
	assert.Len(t, all["quay"], 3)
}

func TestSearcher_SearchAllRunsInDeclaredOrder(t *testing.T) {
	var calls []string
	a := &recordingAdapter{id: "alpha", log: &calls, results: []ImageResult{{Name: "a"}}}
	b := &recordingAdapter{id: "beta", log: &calls}
	c := &recordingAdapter{id: "gamma", log: &calls, results: []ImageResult{{Name: "c"}}}

	s := NewSearcherWithAdapters(nil, a, b, c)
	all := s.SearchAll("x", 5)

	assert.Equal(t, []string{"alpha", "beta", "gamma"}, calls)
	assert.Equal(t, []ImageResult{}, all["beta"], "nil results become an empty slice")
	assert.Empty(t, s.Tags("anything", 5))
	assert.Nil(t, s.Cache())
}

func TestSearcher_AdapterFor(t *testing.T) {
	s := newTestSearcher(t, NewMockHTTPFetcher(), nil)

	for _, name := range []string{"docker", "docker_hub", "docker.io", "DOCKER"} {
		a, err := s.AdapterFor(name)
		require.NoError(t, err, name)
		assert.Equal(t, "docker_hub", a.ID())
	}
	for _, name := range []string{"quay", "quay.io"} {
		a, err := s.AdapterFor(name)
		require.NoError(t, err, name)
		assert.Equal(t, "quay", a.ID())
	}

	_, err := s.AdapterFor("ghcr")
	assert.ErrorIs(t, err, ErrUnknownRegistry)

	_, err = s.Search("all", "nginx", 10)
	assert.ErrorIs(t, err, ErrUnknownRegistry, "\"all\" is a caller-level choice, not an adapter")

	ids := []string{}
	for _, a := range s.Adapters() {
		ids = append(ids, a.ID())
	}
	assert.Equal(t, []string{"docker_hub", "quay"}, ids)
}

func TestSearcher_SearchSingleRegistry(t *testing.T) {
	mock := NewMockHTTPFetcher()
	mock.AddResponse(quayNginxURL, 200, loadFixture(t, "quay_search_nginx.json"))

	results, err := newTestSearcher(t, mock, nil).Search("quay", "nginx", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0, mock.Calls(hubNginxURL))
}

func TestSearcher_BestTag(t *testing.T) {
	mock := NewMockHTTPFetcher()
	mock.AddResponse(hubNginxTagsURL, 200, loadFixture(t, "dockerhub_tags_library_nginx.json"))

	s := newTestSearcher(t, mock, nil)
	assert.Equal(t, "1.27.3", s.BestTag("nginx"))

	// Unreachable image falls back to latest
	assert.Equal(t, "latest", s.BestTag("does-not-exist"))
}

func TestSearcher_SharedCacheAcrossInstances(t *testing.T) {
	mock := NewMockHTTPFetcher()
	mock.AddResponse(hubNginxURL, 200, loadFixture(t, "dockerhub_search_nginx.json"))
	store := newTestStore(t)

	opts := Options{HTTP: mock, Cache: store, DockerHubURL: testHubURL, QuayURL: testQuayURL, DisableOCI: true}
	NewSearcher(opts).SearchAll("nginx", 10)
	NewSearcher(opts).SearchAll("nginx", 10)

	assert.Equal(t, 1, mock.Calls(hubNginxURL))
	assert.Same(t, store, NewSearcher(opts).Cache())
}
