// Package pkg provides the core libraries for starscape star-field synthesis.
//
// # Overview
//
// Starscape turns a seed into a three-dimensional star field: a coherent-noise
// density field, the star-forming clusters in its dense regions, and a stellar
// population placed in proportion to the density and evolved to its age. The
// pkg directory is organized into these areas:
//
//  1. Domain: [grid], [noise], [cluster], [population], [stellar]
//  2. Orchestration: [pipeline] (field → cluster → stars → age)
//  3. Output: [catalog] (JSON and MongoDB) and [render] (PNG images)
//  4. Infrastructure: [cache], [rng], [errors], [observability], [buildinfo]
//
// # Architecture
//
// The data flow of a run:
//
//	Seed + Options
//	     ↓
//	[noise] package (chunked simplex noise, normalized to [0, 1])
//	     ↓
//	[cluster] package (threshold windows, label dense regions, sample ages)
//	     ↓
//	[population] package (rejection-sample positions, draw classes and ages)
//	     ↓
//	[stellar] package (resolve each star on its evolutionary track)
//	     ↓
//	catalog.json, PNG images, MongoDB documents
//
// # Quick Start
//
//	import "github.com/matzehuels/starscape/pkg/pipeline"
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	opts := pipeline.DefaultOptions()
//	opts.Seed = 42
//	res, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    return err
//	}
//	for _, s := range res.Stars {
//	    fmt.Println(s.Class, s.Pos, s.Luminosity)
//	}
//
// # Reproducibility
//
// Every randomized stage draws from its own stream derived from the seed, so
// a seed and a set of options always give the same field, clusters and stars.
package pkg
