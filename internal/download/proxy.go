// Package download implements the capability-token download proxy: it
// verifies a token, re-validates the stored binary URL against the domain
// allow-list, streams the binary from its origin and records audit events.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	"github.com/kosher-appstore/appstore-server/internal/api/common"
	"github.com/kosher-appstore/appstore-server/internal/httpclient"
	"github.com/kosher-appstore/appstore-server/internal/otel"
	"github.com/kosher-appstore/appstore-server/internal/store"
	"github.com/kosher-appstore/appstore-server/internal/telemetry"
	"github.com/kosher-appstore/appstore-server/internal/token"
)

const (
	// ContentTypeAPK is the media type of every proxied binary
	ContentTypeAPK = "application/vnd.android.package-archive"

	// DefaultOriginTimeout bounds the wait for origin headers and any stall while streaming
	DefaultOriginTimeout = 60 * time.Second

	// DefaultBufferSize is the size of the copy buffer used per stream
	DefaultBufferSize = 32 * 1024

	// TokenParam is the chi URL parameter holding the token
	TokenParam = "token"

	contentDisposition = `attachment; filename="app.apk"`
)

// ErrDomainNotWhitelisted is recorded when a stored URL fails the allow-list at serve time
var ErrDomainNotWhitelisted = errors.New("domain not whitelisted")

// Metric outcomes
const (
	outcomeSuccess      = "success"
	outcomeUnauthorized = "unauthorized"
	outcomeNotFound     = "not_found"
	outcomeForbidden    = "forbidden"
	outcomeBusy         = "busy"
	outcomeOriginError  = "origin_error"
	outcomeAborted      = "aborted"
	outcomeStoreError   = "store_error"
)

// TokenVerifier checks download tokens
type TokenVerifier interface {
	Verify(tok string) (*token.Payload, error)
}

// URLValidator is the domain allow-list
type URLValidator interface {
	IsAllowed(rawURL string) bool
}

// Origin opens a streaming GET to an allow-listed URL
type Origin interface {
	Open(ctx context.Context, rawURL string, idle time.Duration) (*http.Response, error)
}

// Store is the part of store.Store the proxy reads and writes
type Store interface {
	GetSourceVersion(ctx context.Context, appVersionID, appSourceID string) (*store.SourceVersion, error)
	AppendDownloadEvent(ctx context.Context, event *store.DownloadEvent) error
	UpdateInstallStatus(ctx context.Context, deviceID, appID, appVersionID, status string) error
}

// Proxy serves GET /downloads/{token}. It keeps no per-request state between
// calls and is safe for concurrent use.
type Proxy struct {
	tokens    TokenVerifier
	store     Store
	validator URLValidator
	origin    Origin

	originTimeout time.Duration
	bufferSize    int
	slots         *semaphore.Weighted
	buffers       sync.Pool

	metrics *telemetry.DownloadMetrics
	tracer  trace.Tracer
}

// Option configures a Proxy
type Option func(*Proxy)

// WithOriginTimeout overrides DefaultOriginTimeout
func WithOriginTimeout(d time.Duration) Option {
	return func(p *Proxy) {
		if d > 0 {
			p.originTimeout = d
		}
	}
}

// WithBufferSize overrides DefaultBufferSize
func WithBufferSize(n int) Option {
	return func(p *Proxy) {
		if n > 0 {
			p.bufferSize = n
		}
	}
}

// WithMaxConcurrent caps simultaneous streams. Requests over the cap wait
// up to the origin timeout for a slot, then get a 503. Zero leaves streams
// unbounded.
func WithMaxConcurrent(n int) Option {
	return func(p *Proxy) {
		if n > 0 {
			p.slots = semaphore.NewWeighted(int64(n))
		} else {
			p.slots = nil
		}
	}
}

// WithMetrics records stream counts, bytes and outcomes
func WithMetrics(m *telemetry.DownloadMetrics) Option {
	return func(p *Proxy) {
		p.metrics = m
	}
}

// WithTracer wraps each request in a span
func WithTracer(t trace.Tracer) Option {
	return func(p *Proxy) {
		p.tracer = t
	}
}

// NewProxy creates a Proxy
func NewProxy(tokens TokenVerifier, st Store, validator URLValidator, origin Origin, opts ...Option) *Proxy {
	p := &Proxy{
		tokens:        tokens,
		store:         st,
		validator:     validator,
		origin:        origin,
		originTimeout: DefaultOriginTimeout,
		bufferSize:    DefaultBufferSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	size := p.bufferSize
	p.buffers.New = func() any {
		buf := make([]byte, size)
		return &buf
	}
	return p
}

// ServeHTTP runs one download through verify, lookup, validate and stream
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.StartSpan(r.Context(), p.tracer, "download.Proxy.ServeHTTP")
	defer span.End()

	payload, err := p.tokens.Verify(chi.URLParam(r, TokenParam))
	if err != nil {
		slog.DebugContext(ctx, "Rejected download token", "error", err)
		p.metrics.RecordOutcome(ctx, outcomeUnauthorized)
		common.WriteErrorResponse(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}

	span.SetAttributes(
		otel.AttrDeviceID.String(payload.DeviceID),
		otel.AttrAppID.String(payload.AppID),
		otel.AttrSourceID.String(payload.AppSourceID),
	)

	// Audit writes outlive a client that hangs up mid-stream.
	audit := context.WithoutCancel(ctx)

	link, err := p.store.GetSourceVersion(ctx, payload.AppVersionID, payload.AppSourceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			p.fail(audit, payload, "Source version not found", outcomeNotFound)
			common.WriteErrorResponse(w, "Download source not found", http.StatusNotFound)
			return
		}
		otel.RecordError(span, err)
		p.fail(audit, payload, err.Error(), outcomeStoreError)
		common.WriteErrorResponse(w, "Failed to download APK", http.StatusInternalServerError)
		return
	}

	if !p.validator.IsAllowed(link.DownloadURL) {
		slog.WarnContext(ctx, "Stored download URL rejected by allow-list",
			"app_id", payload.AppID, "source_id", payload.AppSourceID)
		p.fail(audit, payload, ErrDomainNotWhitelisted.Error(), outcomeForbidden)
		common.WriteErrorResponse(w, "Invalid download source", http.StatusForbidden)
		return
	}

	if p.slots != nil {
		waitCtx, cancel := context.WithTimeout(ctx, p.originTimeout)
		err := p.slots.Acquire(waitCtx, 1)
		cancel()
		if err != nil {
			p.fail(audit, payload, fmt.Sprintf("waiting for a download slot: %v", err), outcomeBusy)
			common.WriteErrorResponse(w, "Too many concurrent downloads", http.StatusServiceUnavailable)
			return
		}
		defer p.slots.Release(1)
	}

	p.metrics.StreamStarted(ctx)
	written, committed, err := p.stream(ctx, w, link.DownloadURL)
	p.metrics.StreamFinished(ctx, written)

	if err != nil {
		otel.RecordError(span, err)
		slog.WarnContext(ctx, "Download failed",
			"app_id", payload.AppID, "source_id", payload.AppSourceID,
			"bytes_sent", written, "headers_sent", committed, "error", err)

		switch {
		case committed:
			p.fail(audit, payload, describe(err), outcomeAborted)
			// Headers are out; the only honest signal left is a broken connection.
			panic(http.ErrAbortHandler)
		case errors.Is(err, httpclient.ErrHostNotAllowed):
			p.fail(audit, payload, fmt.Sprintf("%s: %v", ErrDomainNotWhitelisted, err), outcomeForbidden)
			common.WriteErrorResponse(w, "Invalid download source", http.StatusForbidden)
		default:
			p.fail(audit, payload, describe(err), outcomeOriginError)
			common.WriteErrorResponse(w, "Failed to download APK", http.StatusInternalServerError)
		}
		return
	}

	p.record(audit, payload, store.EventSuccess, "")
	if err := p.store.UpdateInstallStatus(audit, payload.DeviceID, payload.AppID, payload.AppVersionID,
		store.InstallDelivered); err != nil {
		slog.ErrorContext(ctx, "Failed to update install status", "app_id", payload.AppID, "error", err)
	}
	p.metrics.RecordOutcome(ctx, outcomeSuccess)
	slog.InfoContext(ctx, "Download delivered",
		"app_id", payload.AppID, "source_id", payload.AppSourceID, "bytes", written)
}

// stream copies the origin body to w through a pooled buffer, flushing the
// headers and every chunk. Each read is issued only after the previous chunk
// was written, so the origin is read no faster than the client drains.
// committed reports whether response headers were already sent.
func (p *Proxy) stream(ctx context.Context, w http.ResponseWriter, rawURL string) (written int64, committed bool, err error) {
	resp, err := p.origin.Open(ctx, rawURL, p.originTimeout)
	if err != nil {
		return 0, false, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	h := w.Header()
	h.Set("Content-Type", ContentTypeAPK)
	h.Set("Content-Disposition", contentDisposition)
	if resp.ContentLength >= 0 {
		h.Set("Content-Length", strconv.FormatInt(resp.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)
	rc := http.NewResponseController(w)
	if err := flush(rc); err != nil {
		return 0, true, fmt.Errorf("client connection lost: %w", err)
	}

	bufp := p.buffers.Get().(*[]byte)
	defer p.buffers.Put(bufp)
	buf := *bufp

	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			m, writeErr := w.Write(buf[:n])
			written += int64(m)
			if writeErr == nil {
				writeErr = flush(rc)
			}
			if writeErr != nil {
				return written, true, fmt.Errorf("client connection lost: %w", writeErr)
			}
		}
		if errors.Is(readErr, io.EOF) {
			return written, true, nil
		}
		if readErr != nil {
			return written, true, fmt.Errorf("origin stream interrupted: %w", readErr)
		}
	}
}

// flush pushes buffered bytes to the client. Writers that cannot flush are
// left to their own buffering.
func flush(rc *http.ResponseController) error {
	if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}

func (p *Proxy) fail(ctx context.Context, payload *token.Payload, message, outcome string) {
	p.record(ctx, payload, store.EventFailure, message)
	p.metrics.RecordOutcome(ctx, outcome)
}

func (p *Proxy) record(ctx context.Context, payload *token.Payload, typ store.EventType, message string) {
	event := &store.DownloadEvent{
		DeviceID:     payload.DeviceID,
		AppID:        payload.AppID,
		AppVersionID: payload.AppVersionID,
		AppSourceID:  payload.AppSourceID,
		Type:         typ,
		ErrorMessage: message,
	}
	if err := p.store.AppendDownloadEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to record download event",
			"event_type", typ, "app_id", payload.AppID, "error", err)
	}
}

// describe turns an origin failure into the text stored on the audit event
func describe(err error) string {
	var httpErr *httpclient.HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Sprintf("Source returned %d", httpErr.StatusCode)
	}
	return err.Error()
}
