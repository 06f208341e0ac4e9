package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/kosher-appstore/appstore-server/internal/httpclient"
)

const (
	// DefaultMetadataTimeout bounds every page or API call made while resolving metadata
	DefaultMetadataTimeout = 10 * time.Second

	// DefaultVerifyTimeout bounds VerifyURL
	DefaultVerifyTimeout = 5 * time.Second

	shortDescriptionLimit = 200
)

// remote carries what every provider needs to talk to its source
type remote struct {
	kind            Kind
	base            *url.URL
	client          *httpclient.Client
	metadataTimeout time.Duration
	verifyTimeout   time.Duration
}

func newRemote(kind Kind, baseURL string, client *httpclient.Client, opts *factoryOptions) (*remote, error) {
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL for %s source: %w", kind, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL for %s source: %q must be absolute", kind, baseURL)
	}
	return &remote{
		kind:            kind,
		base:            base,
		client:          client,
		metadataTimeout: opts.metadataTimeout,
		verifyTimeout:   opts.verifyTimeout,
	}, nil
}

// endpoint joins path onto the base URL and attaches query
func (r *remote) endpoint(path string, query url.Values) string {
	u := *r.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	u.RawPath = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// resolve turns an href found in a page into an absolute URL
func (r *remote) resolve(pageURL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	page, err := url.Parse(pageURL)
	if err != nil {
		page = r.base
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	return page.ResolveReference(ref).String(), true
}

// get fetches rawURL within the metadata timeout. Non-2xx answers become
// ErrNotFound; everything else that fails is returned as is.
func (r *remote) get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.metadataTimeout)
	defer cancel()

	body, err := r.client.GetBody(ctx, rawURL, accept)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			slog.DebugContext(ctx, "Source returned non-success status",
				"kind", r.kind, "status", httpErr.StatusCode)
			return nil, fmt.Errorf("%w: HTTP %d", ErrNotFound, httpErr.StatusCode)
		}
		slog.WarnContext(ctx, "Source request failed", "kind", r.kind, "error", err)
		return nil, err
	}
	return body, nil
}

// document fetches and parses an HTML page
func (r *remote) document(ctx context.Context, rawURL string) (*goquery.Document, error) {
	body, err := r.get(ctx, rawURL, "text/html")
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, r.drift(ctx, "unparseable page", err)
	}
	return doc, nil
}

// drift logs an expected markup mismatch and returns ErrNotFound
func (r *remote) drift(ctx context.Context, what string, cause error) error {
	if cause != nil {
		slog.DebugContext(ctx, "Source markup drift", "kind", r.kind, "what", what, "error", cause)
		return fmt.Errorf("%w: %s: %v", ErrNotFound, what, cause)
	}
	slog.DebugContext(ctx, "Source markup drift", "kind", r.kind, "what", what)
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

// VerifyURL issues a HEAD request to an allow-listed URL and reports a 2xx answer
func (r *remote) VerifyURL(ctx context.Context, rawURL string) bool {
	if !r.client.Allowed(rawURL) {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, r.verifyTimeout)
	defer cancel()

	status, err := r.client.Head(ctx, rawURL)
	if err != nil {
		slog.DebugContext(ctx, "URL verification failed", "kind", r.kind, "error", err)
		return false
	}
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

// firstText returns the trimmed text of the first non-empty match among selectors
func firstText(doc *goquery.Selection, selectors ...string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// firstAttr returns the first non-empty attribute value among selectors
func firstAttr(doc *goquery.Selection, attr string, selectors ...string) string {
	for _, sel := range selectors {
		if v, ok := doc.Find(sel).First().Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
