package cli

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/matzehuels/starscape/pkg/grid"
	"github.com/matzehuels/starscape/pkg/pipeline"
	"github.com/matzehuels/starscape/pkg/render"
)

// Image file names written by --render.
const (
	fileDensity  = "density.png"
	fileClusters = "clusters.png"
	fileStars    = "stars.png"
	fileHR       = "hr.png"
)

// imageOptions controls the images written by --render.
type imageOptions struct {
	Scale    int     // pixels per voxel
	Exposure float64 // star field flux multiplier
	Distance float64 // viewing distance along axis 0; 0 takes the maximum projection
}

// renderImages writes the density projection, the cluster map, the star
// field and the HR diagram into dir. It returns the paths written so far.
func renderImages(dir string, res *pipeline.Result, view imageOptions) ([]string, error) {
	var paths []string
	stars := render.StarFieldOptions{Scale: view.Scale, Exposure: view.Exposure, Distance: view.Distance}

	images := []struct {
		name string
		img  image.Image
	}{
		{fileDensity, render.Scale(render.Projection(res.Field, view.Distance), view.Scale)},
		{fileClusters, render.Scale(render.ClusterImage(res.Labels), view.Scale)},
		{fileStars, render.StarField(res.Stars, grid.Dims(res.Options.Grid), stars)},
	}
	for _, im := range images {
		path := filepath.Join(dir, im.name)
		if err := render.SavePNG(path, im.img); err != nil {
			return paths, fmt.Errorf("write %s: %w", im.name, err)
		}
		paths = append(paths, path)
	}

	if len(res.Stars) == 0 {
		return paths, nil
	}
	var buf bytes.Buffer
	if err := render.HRDiagram(&buf, res.Stars); err != nil {
		return paths, fmt.Errorf("render HR diagram: %w", err)
	}
	path := filepath.Join(dir, fileHR)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return paths, fmt.Errorf("write %s: %w", fileHR, err)
	}
	return append(paths, path), nil
}
