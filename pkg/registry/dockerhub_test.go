package registry

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hubNginxURL = testHubURL + "/v2/search/repositories/?query=nginx&page_size=10"

func TestDockerHub_Search_Mapping(t *testing.T) {
	mock := NewMockHTTPFetcher()
	mock.AddResponse(hubNginxURL, 200, loadFixture(t, "dockerhub_search_nginx.json"))

	hub := NewDockerHub(testHubURL, NewFetcher(mock, ""), newTestStore(t))
	results := hub.Search("nginx", 10)

	require.Len(t, results, 3)

	assert.Equal(t, ImageResult{
		Name:        "nginx",
		Registry:    "docker.io",
		Description: "Official build of Nginx.",
		Stars:       20512,
		Pulls:       1000000000,
		Official:    true,
		LatestTag:   "latest",
	}, results[0])

	assert.Len(t, []rune(results[1].Description), MaxDescriptionLen, "long descriptions are truncated")
	assert.True(t, strings.HasPrefix(results[1].Description, "NGINX and  NGINX Plus"))

	// Record without short_description, star_count or is_official
	assert.Equal(t, "someone/nginx-bare", results[2].Name)
	assert.Equal(t, "", results[2].Description)
	assert.Equal(t, 0, results[2].Stars)
	assert.Equal(t, 42, results[2].Pulls)
	assert.False(t, results[2].Official)
}

func TestDockerHub_Search_Memoized(t *testing.T) {
	mock := NewMockHTTPFetcher()
	mock.AddResponse(hubNginxURL, 200, loadFixture(t, "dockerhub_search_nginx.json"))

	store := newTestStore(t)
	hub := NewDockerHub(testHubURL, NewFetcher(mock, ""), store)

	first := hub.Search("nginx", 10)
	second := hub.Search("nginx", 10)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, mock.Calls(hubNginxURL), "second search must be served from cache")
	assert.Equal(t, 1, store.Stats().Hits)

	// A different limit is a different key
	mock.AddResponse(testHubURL+"/v2/search/repositories/?query=nginx&page_size=5", 200, `{"results": []}`)
	assert.Empty(t, hub.Search("nginx", 5))
}

func TestDockerHub_Search_DegradesToEmpty(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *MockHTTPFetcher)
	}{
		{"network error", func(m *MockHTTPFetcher) { m.AddError(hubNginxURL, errors.New("timeout")) }},
		{"http error", func(m *MockHTTPFetcher) { m.AddResponse(hubNginxURL, 500, "oops") }},
		{"missing results field", func(m *MockHTTPFetcher) { m.AddResponse(hubNginxURL, 200, `{"count": 0}`) }},
		{"invalid json", func(m *MockHTTPFetcher) { m.AddResponse(hubNginxURL, 200, `{"results": [`) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockHTTPFetcher()
			tt.setup(mock)
			store := newTestStore(t)
			hub := NewDockerHub(testHubURL, NewFetcher(mock, ""), store)

			results := hub.Search("nginx", 10)
			assert.NotNil(t, results)
			assert.Empty(t, results)
			assert.Equal(t, 0, store.Stats().Writes, "failures are never cached")
		})
	}
}

func TestDockerHub_Search_EncodesTerm(t *testing.T) {
	mock := NewMockHTTPFetcher()
	encoded := testHubURL + "/v2/search/repositories/?query=bitnami/redis%20cluster%26x&page_size=3"
	mock.AddResponse(encoded, 200, `{"results": [{"repo_name": "bitnami/redis-cluster"}]}`)

	hub := NewDockerHub(testHubURL, NewFetcher(mock, ""), newTestStore(t))
	results := hub.Search("bitnami/redis cluster&x", 3)

	require.Len(t, results, 1)
	assert.Equal(t, "bitnami/redis-cluster", results[0].Name)
}

func TestDockerHub_EmptyResultIsMemoized(t *testing.T) {
	mock := NewMockHTTPFetcher()
	mock.AddResponse(hubNginxURL, 200, `{"results": []}`)

	store := newTestStore(t)
	hub := NewDockerHub(testHubURL, NewFetcher(mock, ""), store)

	first := hub.Search("nginx", 10)
	second := hub.Search("nginx", 10)
	assert.NotNil(t, first)
	assert.NotNil(t, second)
	assert.Empty(t, second)
	assert.Equal(t, 1, mock.Calls(hubNginxURL), "a cached empty list is a hit")
	assert.Equal(t, 1, store.Stats().Hits)
}

func TestDockerHub_NilStoreDisablesCache(t *testing.T) {
	mock := NewMockHTTPFetcher()
	mock.AddResponse(hubNginxURL, 200, loadFixture(t, "dockerhub_search_nginx.json"))

	hub := NewDockerHub(testHubURL, NewFetcher(mock, ""), nil)
	hub.Search("nginx", 10)
	hub.Search("nginx", 10)

	assert.Equal(t, 2, mock.Calls(hubNginxURL))
	assert.Equal(t, "docker_hub", hub.ID())
	assert.Equal(t, "docker.io", hub.Registry())
}
