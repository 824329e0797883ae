// Package pkg provides the core libraries for latentscope.
//
// # Overview
//
// latentscope explores the latent space of a sentence variational
// autoencoder whose latent code is discrete: [latent.Dims] dimensions, each
// taking one of [latent.Levels] values. For every training sentence the
// dataset holds a precomputed reconstruction tree, so any latent vector
// can be decoded by walking the tree without running the model.
//
// # Architecture
//
// The data flow through latentscope:
//
//	data directory (local path or URL)
//	         ↓
//	    [source] package (fetch, retry, persistent cache)
//	         ↓
//	    [recon] package (one fetch per asset, pending/loaded/unavailable)
//	         ↓
//	    [explorer] package (sample + vector state, frame loop)
//	         ↓
//	    host: terminal (internal/tui) or HTTP (internal/server)
//
// # Main Packages
//
// [latent] - Latent vectors: validation, random draws, parsing.
//
// [dataset] - The defaults table and reconstruction trees, with their JSON
// layouts and the end-of-sequence normalization.
//
// [geometry] - The layout engine. A pure function from viewport width to
// the position of every element, in a wide or a narrow arrangement.
//
// [source] - Reads assets from a data directory. Remote assets are retried
// on transient failures and written through to a [cache.Cache].
//
// [recon] - The reconstruction cache. [recon.Store] serves a single event
// loop; [recon.Shared] deduplicates concurrent callers for the server.
//
// [explorer] - The widget controller. Hosts supply a toolkit (canvas,
// sliders, buttons) and an executor for blocking work.
//
// [treeviz] - Exports a reconstruction tree as Graphviz DOT or SVG.
//
// ## Infrastructure
//
// [cache] - Byte caches for fetched assets: file, redis, mongo and null
// backends.
//
// [httputil] - Retry with exponential backoff.
//
// [observability] - Hooks for fetch, cache and HTTP events, implemented by
// the server's Prometheus metrics.
//
// [errors] - Coded errors and input validation.
//
// # Quick Start
//
//	client, _ := source.New("https://example.com/vae/", source.Options{})
//	shared := recon.NewShared(client)
//	text, _ := shared.Reconstruction(ctx, 42, latent.Vector{0, 1, 2, 0, 1})
//
// [latent]: https://pkg.go.dev/github.com/matzehuels/latentscope/pkg/latent
// [dataset]: https://pkg.go.dev/github.com/matzehuels/latentscope/pkg/dataset
// [geometry]: https://pkg.go.dev/github.com/matzehuels/latentscope/pkg/geometry
// [source]: https://pkg.go.dev/github.com/matzehuels/latentscope/pkg/source
// [recon]: https://pkg.go.dev/github.com/matzehuels/latentscope/pkg/recon
// [explorer]: https://pkg.go.dev/github.com/matzehuels/latentscope/pkg/explorer
// [treeviz]: https://pkg.go.dev/github.com/matzehuels/latentscope/pkg/treeviz
// [cache]: https://pkg.go.dev/github.com/matzehuels/latentscope/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/matzehuels/latentscope/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/latentscope/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/latentscope/pkg/errors
package pkg
