package runforge

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"maps"
	"net/url"

	"github.com/runforge-io/runforge-client/internal/constants"
)

// PageRequester issues one list request and returns the raw JSON body. The
// HTTP transport implements it; pages hold one so they can fetch their
// successor against the same endpoint.
type PageRequester interface {
	RequestPage(ctx context.Context, path string, opts *PageOptions) ([]byte, error)
}

// PageOptions are the request options a page was fetched with. Each page
// keeps its own copy; advancing builds a fresh copy for the next fetch so no
// nested structure is ever shared across pages.
type PageOptions struct {
	Query   url.Values
	Headers map[string]string
}

// Clone deep-copies the options.
func (o *PageOptions) Clone() *PageOptions {
	if o == nil {
		return &PageOptions{}
	}

	cloned := &PageOptions{}

	if o.Query != nil {
		cloned.Query = url.Values{}
		for key, values := range o.Query {
			cloned.Query[key] = append([]string(nil), values...)
		}
	}

	if o.Headers != nil {
		cloned.Headers = maps.Clone(o.Headers)
	}

	return cloned
}

// nextPageOptions builds the options for fetching the page named by nextURL.
// The query component is replaced wholesale by the query string parsed out of
// nextURL; every other field carries forward from the previous options.
func nextPageOptions(prev *PageOptions, nextURL string) (*PageOptions, error) {
	parsed, err := url.Parse(nextURL)
	if err != nil {
		return nil, fmt.Errorf("parsing next page URL %q: %w", nextURL, err)
	}

	opts := prev.Clone()
	opts.Query = parsed.Query()

	return opts, nil
}

// offsetEnvelope is the wire shape of an offset-paginated list response.
type offsetEnvelope[T any] struct {
	Results     []T     `json:"results"`
	Next        *string `json:"next"`
	Previous    *string `json:"previous"`
	TotalCount  int     `json:"total_count"`
	CurrentPage int     `json:"current_page"`
}

// cursorEnvelope is the wire shape of a cursor-paginated list response. It
// carries no absolute position, only opaque next/previous cursor URLs.
type cursorEnvelope[T any] struct {
	Results  []T     `json:"results"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

// Page is one immutable batch of an offset-paginated result set, of raw item
// type T exposed as view type V.
//
// A transform attached at construction converts each raw result into the view
// type and is carried forward to every page fetched through NextPage, so a
// decoration chosen at the first fetch holds across the whole traversal. A
// nil transform on a Page[T, T] exposes results as-is.
type Page[T, V any] struct {
	requester PageRequester
	path      string
	opts      *PageOptions
	env       offsetEnvelope[T]
	transform func(T) V
}

// NewPage decodes body as an offset-paginated list response and wraps it in a
// Page that exposes raw results unchanged.
func NewPage[T any](requester PageRequester, path string, opts *PageOptions, body []byte) (*Page[T, T], error) {
	return NewPageWithTransform[T, T](requester, path, opts, body, nil)
}

// NewPageWithTransform decodes body as an offset-paginated list response and
// wraps it in a Page whose items are produced by transform.
func NewPageWithTransform[T, V any](requester PageRequester, path string, opts *PageOptions, body []byte, transform func(T) V) (*Page[T, V], error) {
	var env offsetEnvelope[T]

	err := json.Unmarshal(body, &env)
	if err != nil {
		return nil, fmt.Errorf("parsing list response: %w", err)
	}

	return &Page[T, V]{
		requester: requester,
		path:      path,
		opts:      opts.Clone(),
		env:       env,
		transform: transform,
	}, nil
}

// Items applies the page's transform to every raw result, in server order.
// Pure: no I/O, callable any number of times.
func (p *Page[T, V]) Items() []V {
	return transformItems(p.env.Results, p.transform)
}

// HasNextPage reports whether the server provided a next page URL.
func (p *Page[T, V]) HasNextPage() bool {
	return p.env.Next != nil && *p.env.Next != ""
}

// TotalCount returns the server-reported total number of results.
func (p *Page[T, V]) TotalCount() int {
	return p.env.TotalCount
}

// CurrentPageNumber returns the absolute page number, defaulting to 1 when
// the server omits it.
func (p *Page[T, V]) CurrentPageNumber() int {
	if p.env.CurrentPage == 0 {
		return constants.FirstPageNumber
	}

	return p.env.CurrentPage
}

// NextPage fetches the next page. It returns nil without issuing any request
// when there is no next page. The new page carries the same requester, path,
// and transform; its options follow the query-replacement rule of
// nextPageOptions. Requester errors propagate unchanged.
func (p *Page[T, V]) NextPage(ctx context.Context) (*Page[T, V], error) {
	if !p.HasNextPage() {
		return nil, nil //nolint:nilnil // absence of a next page is not an error
	}

	opts, err := nextPageOptions(p.opts, *p.env.Next)
	if err != nil {
		return nil, err
	}

	body, err := p.requester.RequestPage(ctx, p.path, opts)
	if err != nil {
		return nil, err
	}

	return NewPageWithTransform[T, V](p.requester, p.path, opts, body, p.transform)
}

// All returns a lazy traversal over every item of this page and all its
// successors, in server order. The next page is fetched only after the
// current one is fully drained, and never after the consumer breaks out of
// the loop. The sequence is forward-only and not restartable once consumed.
func (p *Page[T, V]) All(ctx context.Context) iter.Seq2[V, error] {
	return func(yield func(V, error) bool) {
		current := p
		for current != nil {
			for _, item := range current.Items() {
				if !yield(item, nil) {
					return
				}
			}

			next, err := current.NextPage(ctx)
			if err != nil {
				var zero V

				yield(zero, err)

				return
			}

			current = next
		}
	}
}

// CursorPage is one immutable batch of a cursor-paginated result set. Its
// contract matches Page except that cursor pagination has no absolute page
// number, so there is no CurrentPageNumber or TotalCount.
type CursorPage[T, V any] struct {
	requester PageRequester
	path      string
	opts      *PageOptions
	env       cursorEnvelope[T]
	transform func(T) V
}

// NewCursorPage decodes body as a cursor-paginated list response and wraps it
// in a CursorPage that exposes raw results unchanged.
func NewCursorPage[T any](requester PageRequester, path string, opts *PageOptions, body []byte) (*CursorPage[T, T], error) {
	return NewCursorPageWithTransform[T, T](requester, path, opts, body, nil)
}

// NewCursorPageWithTransform decodes body as a cursor-paginated list response
// and wraps it in a CursorPage whose items are produced by transform.
func NewCursorPageWithTransform[T, V any](requester PageRequester, path string, opts *PageOptions, body []byte, transform func(T) V) (*CursorPage[T, V], error) {
	var env cursorEnvelope[T]

	err := json.Unmarshal(body, &env)
	if err != nil {
		return nil, fmt.Errorf("parsing list response: %w", err)
	}

	return &CursorPage[T, V]{
		requester: requester,
		path:      path,
		opts:      opts.Clone(),
		env:       env,
		transform: transform,
	}, nil
}

// Items applies the page's transform to every raw result, in server order.
func (p *CursorPage[T, V]) Items() []V {
	return transformItems(p.env.Results, p.transform)
}

// HasNextPage reports whether the server provided a next cursor URL.
func (p *CursorPage[T, V]) HasNextPage() bool {
	return p.env.Next != nil && *p.env.Next != ""
}

// NextPage fetches the next page. Semantics match Page.NextPage.
func (p *CursorPage[T, V]) NextPage(ctx context.Context) (*CursorPage[T, V], error) {
	if !p.HasNextPage() {
		return nil, nil //nolint:nilnil // absence of a next page is not an error
	}

	opts, err := nextPageOptions(p.opts, *p.env.Next)
	if err != nil {
		return nil, err
	}

	body, err := p.requester.RequestPage(ctx, p.path, opts)
	if err != nil {
		return nil, err
	}

	return NewCursorPageWithTransform[T, V](p.requester, p.path, opts, body, p.transform)
}

// All returns a lazy traversal over every item of this page and all its
// successors. Semantics match Page.All.
func (p *CursorPage[T, V]) All(ctx context.Context) iter.Seq2[V, error] {
	return func(yield func(V, error) bool) {
		current := p
		for current != nil {
			for _, item := range current.Items() {
				if !yield(item, nil) {
					return
				}
			}

			next, err := current.NextPage(ctx)
			if err != nil {
				var zero V

				yield(zero, err)

				return
			}

			current = next
		}
	}
}

// transformItems applies transform elementwise, preserving order. A nil
// transform reinterprets raw items as view items; that is only reachable
// through the identity constructors, where T and V are the same type.
func transformItems[T, V any](results []T, transform func(T) V) []V {
	items := make([]V, 0, len(results))

	for _, raw := range results {
		if transform != nil {
			items = append(items, transform(raw))

			continue
		}

		items = append(items, any(raw).(V))
	}

	return items
}
