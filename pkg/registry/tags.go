package registry

import (
	"fmt"
	"strings"

	"github.com/fulmenhq/omniscript/pkg/cache"
	"github.com/fulmenhq/omniscript/pkg/logger"
)

// TagSource lists up to limit tags for a fully-qualified repository such as
// "quay.io/prometheus/prometheus", reading a single page
type TagSource interface {
	ListTags(repository string, limit int) ([]string, error)
}

// TagLister fetches the tag list of an image. Plain Docker Hub names go to the
// Hub API; names that start with a registry host go to TagSource when set.
type TagLister struct {
	hubURL  string
	fetcher *Fetcher
	cache   *cache.Store
	oci     TagSource
}

// NewTagLister creates a TagLister. oci may be nil, in which case
// registry-qualified names are sent to Docker Hub like any other.
func NewTagLister(hubURL string, fetcher *Fetcher, store *cache.Store, oci TagSource) *TagLister {
	if hubURL == "" {
		hubURL = DefaultDockerHubURL
	}
	if store == nil {
		store = cache.NewStore(cache.Options{Disabled: true})
	}
	return &TagLister{
		hubURL:  strings.TrimRight(hubURL, "/"),
		fetcher: fetcher,
		cache:   store,
		oci:     oci,
	}
}

type dockerHubTagsResponse struct {
	Results *[]dockerHubTag `json:"results"`
}

type dockerHubTag struct {
	Name *string `json:"name"`
}

// Tags returns up to limit tags in the order the backend reports them
func (l *TagLister) Tags(image string, limit int) []string {
	image = NormalizeImage(image)
	key := tagsCacheKey(image, limit)

	var cached []string
	if l.cache.Read(key, &cached) {
		return cached
	}

	var tags []string
	var ok bool
	if l.oci != nil && hasRegistryHost(image) {
		tags, ok = l.listOCI(image, limit)
	} else {
		tags, ok = l.listHub(image, limit)
	}
	if !ok {
		return []string{}
	}

	if err := l.cache.Write(key, tags); err != nil {
		logger.Warn("Failed to cache tags", logger.String("key", key), logger.Err(err))
	}
	return tags
}

func (l *TagLister) listHub(image string, limit int) ([]string, bool) {
	tagsURL := fmt.Sprintf("%s/v2/repositories/%s/tags?page_size=%d", l.hubURL, image, limit)

	var resp dockerHubTagsResponse
	if !l.fetcher.GetJSON(tagsURL, nil, &resp) || resp.Results == nil {
		return nil, false
	}

	tags := make([]string, 0, len(*resp.Results))
	for _, t := range *resp.Results {
		if t.Name == nil {
			continue
		}
		tags = append(tags, *t.Name)
	}
	return tags, true
}

func (l *TagLister) listOCI(image string, limit int) ([]string, bool) {
	tags, err := l.oci.ListTags(image, limit)
	if err != nil {
		logger.Warn("Error listing tags", logger.String("repository", image), logger.Err(err))
		return nil, false
	}
	if tags == nil {
		tags = []string{}
	}
	return capResults(tags, limit), true
}

// NormalizeImage places single-segment names under the "library" namespace,
// which is where Docker Hub keeps official images.
func NormalizeImage(image string) string {
	if !strings.Contains(image, "/") {
		return "library/" + image
	}
	return image
}

func tagsCacheKey(image string, limit int) string {
	return fmt.Sprintf("tags_%s_%d", strings.ReplaceAll(image, "/", "_"), limit)
}

// hasRegistryHost applies the Docker reference rule: a first path segment
// containing "." or ":", or equal to "localhost", names a registry.
func hasRegistryHost(image string) bool {
	first, _, found := strings.Cut(image, "/")
	if !found {
		return false
	}
	return strings.ContainsAny(first, ".:") || first == "localhost"
}
