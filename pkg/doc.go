// Package pkg provides the libraries behind artframe, a digital art frame
// that shows open-access museum paintings on e-paper panels.
//
// # Overview
//
// The work is split between two programs that share nothing but a cache
// directory:
//
//  1. [fetcher] mirrors a museum catalog into the cache through [museum].
//  2. [pipeline] picks a cached artwork, composes it with [render] and
//     hands the canvas to a [display].
//
// Supporting packages:
//
//   - [store]: the flat cache directory (catalog, records, images)
//   - [config]: TOML configuration passed explicitly to each component
//   - [errors]: coded errors shared by every package
//   - [httputil]: retry with classified transient failures
//   - [fonts]: caption font loading with an embedded fallback
//   - [observability]: optional hooks for metrics
//
// # Data Flow
//
//	museum API
//	     ↓
//	[fetcher] → cache dir (collection.json, <id>.json, <id>.<ext>)
//	                 ↓
//	           [pipeline] select → load → [render] compose
//	                 ↓
//	           [display] inky | quote0 | file | web
//
// # Quick Start
//
//	st, _ := store.Open("/var/lib/artframe", config.DefaultCatalogFile)
//	d, _ := display.Open(cfg.Display, logger)
//	defer d.Close()
//
//	opts, _ := pipeline.OptionsFromConfig(cfg.Paint)
//	result, err := pipeline.NewRunner(st, d, logger).Execute(ctx, opts)
package pkg
