package hk

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/mat"
)

// DefaultWeights returns the weights (Ps, PpPs, PpSs+PsPs) = (0.5, 0.5, 0).
func DefaultWeights() []float64 {
	return []float64{0.5, 0.5, 0.0}
}

// Weighted reduces stack layers to one surface: at every cell the dot
// product of the layer values with weights. NaN in any layer propagates to
// the cell, including layers with weight 0.
func Weighted(layers []*mat.Dense, weights []float64) (*mat.Dense, error) {
	if len(layers) == 0 {
		return nil, ErrNoLayers
	}
	if len(layers) != len(weights) {
		return nil, fmt.Errorf("%w: %d layers, %d weights", ErrWeightMismatch, len(layers), len(weights))
	}

	rows, cols := layers[0].Dims()
	for i, layer := range layers[1:] {
		if r, c := layer.Dims(); r != rows || c != cols {
			return nil, fmt.Errorf("%w: layer 0 is %dx%d, layer %d is %dx%d", ErrShapeMismatch, rows, cols, i+1, r, c)
		}
	}

	out := make([]float64, rows*cols)
	scaled := make([]float64, rows*cols)
	for i, layer := range layers {
		vecmath.ScaleBlock(scaled, denseData(layer), weights[i])
		vecmath.AddBlockInPlace(out, scaled)
	}
	return mat.NewDense(rows, cols, out), nil
}
