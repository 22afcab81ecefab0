package registry

import (
	"fmt"
	"strings"

	"github.com/fulmenhq/omniscript/pkg/cache"
	"github.com/fulmenhq/omniscript/pkg/logger"
)

// DefaultDockerHubURL is the Docker Hub API base
const DefaultDockerHubURL = "https://hub.docker.com"

// DockerHub searches hub.docker.com
type DockerHub struct {
	baseURL string
	fetcher *Fetcher
	cache   *cache.Store
}

// NewDockerHub creates the Docker Hub adapter. An empty baseURL means DefaultDockerHubURL.
func NewDockerHub(baseURL string, fetcher *Fetcher, store *cache.Store) *DockerHub {
	if baseURL == "" {
		baseURL = DefaultDockerHubURL
	}
	if store == nil {
		store = cache.NewStore(cache.Options{Disabled: true})
	}
	return &DockerHub{
		baseURL: strings.TrimRight(baseURL, "/"),
		fetcher: fetcher,
		cache:   store,
	}
}

func (d *DockerHub) ID() string       { return "docker_hub" }
func (d *DockerHub) Registry() string { return DockerHubRegistry }

// dockerHubSearchResponse matches /v2/search/repositories. Results is a
// pointer so a body without the field can be told apart from an empty list.
type dockerHubSearchResponse struct {
	Results *[]dockerHubRepo `json:"results"`
}

type dockerHubRepo struct {
	RepoName         string  `json:"repo_name"`
	ShortDescription *string `json:"short_description"`
	StarCount        int     `json:"star_count"`
	PullCount        int     `json:"pull_count"`
	IsOfficial       bool    `json:"is_official"`
}

// Search queries Docker Hub, passing limit as the server-side page size
func (d *DockerHub) Search(term string, limit int) []ImageResult {
	key := searchCacheKey("dockerhub", term, limit)

	var cached []ImageResult
	if d.cache.Read(key, &cached) {
		return cached
	}

	searchURL := fmt.Sprintf("%s/v2/search/repositories/?query=%s&page_size=%d",
		d.baseURL, quoteTerm(term), limit)

	var resp dockerHubSearchResponse
	if !d.fetcher.GetJSON(searchURL, nil, &resp) || resp.Results == nil {
		return []ImageResult{}
	}

	results := make([]ImageResult, 0, len(*resp.Results))
	for _, item := range *resp.Results {
		description := ""
		if item.ShortDescription != nil {
			description = *item.ShortDescription
		}
		results = append(results, newImageResult(
			item.RepoName, d.Registry(), description,
			item.StarCount, item.PullCount, item.IsOfficial,
		))
	}

	if err := d.cache.Write(key, results); err != nil {
		logger.Warn("Failed to cache search results", logger.String("key", key), logger.Err(err))
	}
	return results
}
