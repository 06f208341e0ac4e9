package sources

import (
	"fmt"
	"time"

	"github.com/kosher-appstore/appstore-server/internal/httpclient"
)

// DefaultPlayStoreURL is used by KindPlayStore sources without a base URL
const DefaultPlayStoreURL = "https://play.google.com"

// factoryOptions holds settings shared by every provider the factory creates
type factoryOptions struct {
	metadataTimeout time.Duration
	verifyTimeout   time.Duration
	playStoreURL    string
}

// FactoryOption configures a Factory
type FactoryOption func(*factoryOptions)

// WithMetadataTimeout bounds each metadata request
func WithMetadataTimeout(d time.Duration) FactoryOption {
	return func(o *factoryOptions) {
		if d > 0 {
			o.metadataTimeout = d
		}
	}
}

// WithVerifyTimeout bounds each VerifyURL call
func WithVerifyTimeout(d time.Duration) FactoryOption {
	return func(o *factoryOptions) {
		if d > 0 {
			o.verifyTimeout = d
		}
	}
}

// WithPlayStoreURL sets the catalog base used by KindPlayStore sources with no base URL
func WithPlayStoreURL(u string) FactoryOption {
	return func(o *factoryOptions) {
		if u != "" {
			o.playStoreURL = u
		}
	}
}

// defaultFactory is the default implementation of Factory
type defaultFactory struct {
	client *httpclient.Client
	opts   factoryOptions
}

var _ Factory = (*defaultFactory)(nil)

// NewFactory creates a Factory whose providers share client
func NewFactory(client *httpclient.Client, opts ...FactoryOption) Factory {
	f := &defaultFactory{
		client: client,
		opts: factoryOptions{
			metadataTimeout: DefaultMetadataTimeout,
			verifyTimeout:   DefaultVerifyTimeout,
			playStoreURL:    DefaultPlayStoreURL,
		},
	}
	for _, opt := range opts {
		opt(&f.opts)
	}
	return f
}

// CreateProvider creates the provider for the source's kind
func (f *defaultFactory) CreateProvider(source Descriptor) (Provider, error) {
	switch source.Kind {
	case KindPlayStore:
		base := source.BaseURL
		if base == "" {
			base = f.opts.playStoreURL
		}
		return newPlayStoreProvider(base, f.client, &f.opts)
	case KindAPKMirror:
		return newAPKMirrorProvider(source.BaseURL, f.client, &f.opts)
	case KindAPKPure:
		return newAPKPureProvider(source.BaseURL, f.client, &f.opts)
	case KindCustom:
		return newCustomProvider(source.BaseURL, f.client, &f.opts)
	default:
		return nil, fmt.Errorf("unsupported source kind: %s", source.Kind)
	}
}
