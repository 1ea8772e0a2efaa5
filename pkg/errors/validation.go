package errors

import (
	"math"
)

// ValidateDims validates a three-axis extent such as a grid or chunk size.
// Every axis must be strictly positive.
func ValidateDims(name string, dims [3]int) error {
	for axis, n := range dims {
		if n <= 0 {
			return New(ErrCodeInvalidGrid, "%s axis %d must be positive, got %d", name, axis, n)
		}
	}
	return nil
}

// ValidateDivisible checks that grid is an integer multiple of chunk on every axis.
// Chunks are placed by direct index, so a remainder would leave voxels unfilled.
func ValidateDivisible(grid, chunk [3]int) error {
	if err := ValidateDims("grid", grid); err != nil {
		return err
	}
	if err := ValidateDims("chunk", chunk); err != nil {
		return err
	}
	for axis := range grid {
		if grid[axis]%chunk[axis] != 0 {
			return New(ErrCodeInvalidGrid,
				"grid size %v is not a multiple of chunk size %v on axis %d", grid, chunk, axis)
		}
	}
	return nil
}

// ValidateUnitInterval checks that v lies in [0, 1].
func ValidateUnitInterval(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return New(ErrCodeInvalidConfig, "%s must be in [0, 1], got %g", name, v)
	}
	return nil
}

// ValidatePositive checks that v is a finite number greater than zero.
func ValidatePositive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return New(ErrCodeInvalidConfig, "%s must be positive, got %g", name, v)
	}
	return nil
}

// ValidateNonNegative checks that n is zero or greater.
func ValidateNonNegative(name string, n int) error {
	if n < 0 {
		return New(ErrCodeInvalidConfig, "%s cannot be negative, got %d", name, n)
	}
	return nil
}
