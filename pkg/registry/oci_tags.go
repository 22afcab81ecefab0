package registry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
)

// OCITagLister lists tags through the OCI distribution API with anonymous
// access. Loopback and private-range registries are reached over plain HTTP.
type OCITagLister struct {
	timeout   time.Duration
	userAgent string
	transport http.RoundTripper
}

// NewOCITagLister creates a lister bounded by timeout per request
func NewOCITagLister(timeout time.Duration, userAgent string) *OCITagLister {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &OCITagLister{timeout: timeout, userAgent: userAgent}
}

// WithTransport overrides the HTTP transport, e.g. for proxies or tests
func (o *OCITagLister) WithTransport(rt http.RoundTripper) *OCITagLister {
	o.transport = rt
	return o
}

// ListTags returns the first page of the repository's tags, asking the
// registry for at most limit entries. Registries may ignore the page size, so
// callers still cap the result. A limit below 1 leaves the size to the registry.
func (o *OCITagLister) ListTags(repository string, limit int) ([]string, error) {
	repo, err := name.NewRepository(repository)
	if err != nil {
		return nil, fmt.Errorf("invalid repository %q: %w", repository, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	opts := []remote.Option{
		remote.WithContext(ctx),
		remote.WithAuth(authn.Anonymous),
		remote.WithUserAgent(o.userAgent),
	}
	if limit > 0 {
		opts = append(opts, remote.WithPageSize(limit))
	}
	if o.transport != nil {
		opts = append(opts, remote.WithTransport(o.transport))
	}

	puller, err := remote.NewPuller(opts...)
	if err != nil {
		return nil, fmt.Errorf("list tags for %s: %w", repo.Name(), err)
	}
	lister, err := puller.Lister(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("list tags for %s: %w", repo.Name(), err)
	}
	page, err := lister.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags for %s: %w", repo.Name(), err)
	}
	if page == nil {
		return []string{}, nil
	}
	return page.Tags, nil
}
