package registry

import (
	"fmt"
	"strings"
	"time"

	"github.com/fulmenhq/omniscript/pkg/cache"
	"github.com/fulmenhq/omniscript/pkg/logger"
)

// Default result limits used by the CLI
const (
	DefaultSearchLimit = 10
	DefaultTagLimit    = 50
)

// Options wires a Searcher. Zero values fall back to production defaults.
type Options struct {
	// HTTP overrides the transport; tests pass a MockHTTPFetcher
	HTTP      HTTPFetcher
	Timeout   time.Duration
	UserAgent string
	Cache     *cache.Store

	DockerHubURL string
	QuayURL      string

	// OCI lists tags for registry-qualified names. Nil selects an anonymous
	// OCITagLister; set DisableOCI to send every name to Docker Hub.
	OCI        TagSource
	DisableOCI bool
}

// Searcher fans queries out to every adapter and resolves image tags
type Searcher struct {
	adapters []Adapter
	tags     *TagLister
	cache    *cache.Store
}

// NewSearcher builds the Docker Hub and Quay adapters, in that order, plus the
// tag lister, all sharing one fetcher and one cache store.
func NewSearcher(opts Options) *Searcher {
	httpFetcher := opts.HTTP
	if httpFetcher == nil {
		httpFetcher = NewRealHTTPFetcher(NewHTTPClient(opts.Timeout))
	}
	fetcher := NewFetcher(httpFetcher, opts.UserAgent)

	store := opts.Cache
	if store == nil {
		store = cache.NewStore(cache.Options{Disabled: true})
	}

	oci := opts.OCI
	if oci == nil && !opts.DisableOCI {
		oci = NewOCITagLister(opts.Timeout, fetcher.UserAgent())
	}
	if opts.DisableOCI {
		oci = nil
	}

	return &Searcher{
		adapters: []Adapter{
			NewDockerHub(opts.DockerHubURL, fetcher, store),
			NewQuay(opts.QuayURL, fetcher, store),
		},
		tags:  NewTagLister(opts.DockerHubURL, fetcher, store, oci),
		cache: store,
	}
}

// NewSearcherWithAdapters builds a Searcher over an explicit adapter list
func NewSearcherWithAdapters(tags *TagLister, adapters ...Adapter) *Searcher {
	return &Searcher{adapters: adapters, tags: tags}
}

// Adapters returns the adapters in their declared order
func (s *Searcher) Adapters() []Adapter {
	out := make([]Adapter, len(s.adapters))
	copy(out, s.adapters)
	return out
}

// Cache returns the store shared by the adapters, nil for hand-built Searchers
func (s *Searcher) Cache() *cache.Store { return s.cache }

// AdapterFor finds an adapter by its ID ("docker_hub"), its registry
// ("docker.io") or the short form of its ID ("docker").
func (s *Searcher) AdapterFor(name string) (Adapter, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, a := range s.adapters {
		short, _, _ := strings.Cut(a.ID(), "_")
		if want == a.ID() || want == a.Registry() || want == short {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRegistry, name)
}

// Search runs a single adapter by name
func (s *Searcher) Search(registryName, term string, limit int) ([]ImageResult, error) {
	a, err := s.AdapterFor(registryName)
	if err != nil {
		return nil, err
	}
	return a.Search(term, limit), nil
}

// SearchAll queries every adapter one after another and keys the results by
// adapter ID. An adapter that finds nothing gets an empty slice.
func (s *Searcher) SearchAll(term string, limit int) map[string][]ImageResult {
	out := make(map[string][]ImageResult, len(s.adapters))
	for _, a := range s.adapters {
		results := a.Search(term, limit)
		if results == nil {
			results = []ImageResult{}
		}
		logger.Debug("registry search complete",
			logger.String("registry", a.ID()),
			logger.String("term", term),
			logger.Int("results", len(results)))
		out[a.ID()] = results
	}
	return out
}

// Tags lists up to limit tags for image
func (s *Searcher) Tags(image string, limit int) []string {
	if s.tags == nil {
		return []string{}
	}
	return s.tags.Tags(image, limit)
}

// BestTag returns the most recent release tag of image, see BestTag
func (s *Searcher) BestTag(image string) string {
	return BestTag(s.Tags(image, DefaultTagLimit))
}
