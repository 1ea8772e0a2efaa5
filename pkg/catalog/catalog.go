// Package catalog exports finished star populations.
//
// A [Catalog] is the durable record of one run: the run id, the resolved
// options (so the run can be repeated), the cluster ages and every star. It
// is written as a JSON document, and can additionally be pushed to MongoDB
// with [MongoSink]. [Summarize] reduces a population to the counts and
// statistics shown by the CLI.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/matzehuels/starscape/pkg/buildinfo"
	serr "github.com/matzehuels/starscape/pkg/errors"
	"github.com/matzehuels/starscape/pkg/pipeline"
	"github.com/matzehuels/starscape/pkg/stellar"
)

// FileName is the catalog file written into an output directory.
const FileName = "catalog.json"

// Catalog is the exported result of a run.
type Catalog struct {
	RunID       string           `json:"run_id"`
	CreatedAt   time.Time        `json:"created_at"`
	Version     string           `json:"version"`
	Options     pipeline.Options `json:"options"`
	Clusters    int              `json:"clusters"`
	ClusterAges []uint64         `json:"cluster_ages"`
	Stars       []stellar.Star   `json:"stars"`
}

// FromResult builds a catalog from a pipeline result.
func FromResult(res *pipeline.Result) *Catalog {
	return &Catalog{
		RunID:       res.RunID,
		CreatedAt:   time.Now().UTC(),
		Version:     buildinfo.Version,
		Options:     res.Options,
		Clusters:    res.ClusterCount,
		ClusterAges: res.ClusterAges,
		Stars:       res.Stars,
	}
}

// Write encodes the catalog as indented JSON.
func Write(w io.Writer, c *Catalog) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return nil
}

// Read decodes a catalog written by Write.
func Read(r io.Reader) (*Catalog, error) {
	var c Catalog
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, serr.Wrap(serr.ErrCodeInvalidInput, err, "decode catalog")
	}
	return &c, nil
}

// Save writes the catalog to path.
func Save(path string, c *Catalog) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create catalog: %w", err)
	}
	if err := Write(f, c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load reads the catalog at path.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, serr.Wrap(serr.ErrCodeNotFound, err, "catalog %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Read(f)
}
