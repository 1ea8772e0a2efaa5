// Package render turns pipeline outputs into images.
//
// # Overview
//
// Four views are provided:
//
//   - [Projection]: grayscale view of the density field along axis 0
//   - [ClusterImage]: one color per cluster label
//   - [StarField]: the stars as they would appear from in front of the grid
//   - [HRDiagram]: a Hertzsprung-Russell scatter plot of the population
//
// Grid views map axis 2 to image x and axis 1 to image y, so a grid of
// {D0, D1, D2} gives a D2 x D1 image before scaling. [Scale] enlarges with
// nearest-neighbor sampling to keep voxel edges sharp.
//
//	img := render.Projection(result.Field, 0)
//	err := render.SavePNG("density.png", render.Scale(img, 4))
package render
