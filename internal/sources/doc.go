// Package sources discovers app metadata and binary download URLs from
// external catalogs and mirrors.
//
// Each external catalog is described by a Descriptor whose Kind selects one
// Provider implementation through the Factory:
//   - KindPlayStore: catalog page scraping, metadata only; never yields a URL
//   - KindAPKMirror: HTML scraping of an APKMirror-style site
//   - KindAPKPure: HTML scraping of an APKPure-style site
//   - KindCustom: a two-endpoint JSON API on an operator-controlled mirror
//
// Every outbound request goes through httpclient.Client, which rejects hosts
// outside the domain allow-list before dialing. Providers report "nothing
// here" (missing pages, markup drift, unparseable bodies) as ErrNotFound and
// reserve other errors for transport faults.
package sources
