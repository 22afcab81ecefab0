package registry

import (
	"fmt"
	"strings"

	"github.com/fulmenhq/omniscript/pkg/cache"
	"github.com/fulmenhq/omniscript/pkg/logger"
)

// DefaultQuayURL is the Quay API base
const DefaultQuayURL = "https://quay.io"

// Quay searches quay.io. Its find endpoint has no page-size parameter, so
// results are capped client-side and stars and pulls are always zero.
type Quay struct {
	baseURL string
	fetcher *Fetcher
	cache   *cache.Store
}

// NewQuay creates the Quay adapter. An empty baseURL means DefaultQuayURL.
func NewQuay(baseURL string, fetcher *Fetcher, store *cache.Store) *Quay {
	if baseURL == "" {
		baseURL = DefaultQuayURL
	}
	if store == nil {
		store = cache.NewStore(cache.Options{Disabled: true})
	}
	return &Quay{
		baseURL: strings.TrimRight(baseURL, "/"),
		fetcher: fetcher,
		cache:   store,
	}
}

func (q *Quay) ID() string       { return "quay" }
func (q *Quay) Registry() string { return QuayRegistry }

type quaySearchResponse struct {
	Results *[]quayRepo `json:"results"`
}

type quayRepo struct {
	Namespace   *quayNamespace `json:"namespace"`
	Name        string         `json:"name"`
	Description *string        `json:"description"`
}

type quayNamespace struct {
	Name string `json:"name"`
}

// Search queries the first page of Quay's repository finder
func (q *Quay) Search(term string, limit int) []ImageResult {
	key := searchCacheKey("quay", term, limit)

	var cached []ImageResult
	if q.cache.Read(key, &cached) {
		return cached
	}

	searchURL := fmt.Sprintf("%s/api/v1/find/repositories?query=%s&page=1",
		q.baseURL, quoteTerm(term))

	var resp quaySearchResponse
	if !q.fetcher.GetJSON(searchURL, nil, &resp) || resp.Results == nil {
		return []ImageResult{}
	}

	items := capResults(*resp.Results, limit)
	results := make([]ImageResult, 0, len(items))
	for _, item := range items {
		namespace := ""
		if item.Namespace != nil {
			namespace = item.Namespace.Name
		}
		description := ""
		if item.Description != nil {
			description = *item.Description
		}
		results = append(results, newImageResult(
			fmt.Sprintf("quay.io/%s/%s", namespace, item.Name),
			q.Registry(), description, 0, 0, false,
		))
	}

	if err := q.cache.Write(key, results); err != nil {
		logger.Warn("Failed to cache search results", logger.String("key", key), logger.Err(err))
	}
	return results
}
