package registry

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Registry origin identifiers carried by ImageResult.Registry
const (
	DockerHubRegistry = "docker.io"
	QuayRegistry      = "quay.io"
)

// MaxDescriptionLen is the rune limit for ImageResult.Description
const MaxDescriptionLen = 100

// DefaultTag is reported when no better tag is known
const DefaultTag = "latest"

// ImageResult is one search hit normalized across registries
type ImageResult struct {
	Name        string `json:"name" yaml:"name"`
	Registry    string `json:"registry" yaml:"registry"`
	Description string `json:"description" yaml:"description"`
	Stars       int    `json:"stars" yaml:"stars"`
	Pulls       int    `json:"pulls" yaml:"pulls"`
	Official    bool   `json:"official" yaml:"official"`
	LatestTag   string `json:"latest_tag" yaml:"latest_tag"`
}

// newImageResult applies the field defaults and limits shared by every adapter
func newImageResult(name, registry, description string, stars, pulls int, official bool) ImageResult {
	return ImageResult{
		Name:        name,
		Registry:    registry,
		Description: truncateRunes(description, MaxDescriptionLen),
		Stars:       nonNegative(stars),
		Pulls:       nonNegative(pulls),
		Official:    official,
		LatestTag:   DefaultTag,
	}
}

// Adapter searches one registry backend and maps its response shape into
// ImageResult values. Search never fails: an unreachable backend or an
// unexpected payload yields an empty slice.
type Adapter interface {
	// ID is the stable key used in SearchAll results, e.g. "docker_hub"
	ID() string
	// Registry is the origin id stamped on each result, e.g. "docker.io"
	Registry() string
	Search(term string, limit int) []ImageResult
}

// searchCacheKey namespaces a search by adapter so that the same term never
// collides across registries or with tag lookups.
func searchCacheKey(prefix, term string, limit int) string {
	return fmt.Sprintf("%s_%s_%d", prefix, term, limit)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	var b strings.Builder
	i := 0
	for _, r := range s {
		if i == n {
			break
		}
		b.WriteRune(r)
		i++
	}
	return b.String()
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// capResults trims results to limit. A negative limit leaves them untouched.
func capResults[T any](items []T, limit int) []T {
	if limit >= 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// quoteTerm percent-encodes a search term for a query string. Spaces become
// %20 and slashes are kept, so "bitnami/redis" stays readable in the URL.
func quoteTerm(term string) string {
	q := url.QueryEscape(term)
	q = strings.ReplaceAll(q, "+", "%20")
	return strings.ReplaceAll(q, "%2F", "/")
}
