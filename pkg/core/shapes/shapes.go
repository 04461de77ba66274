// Copyright 2025-2026 The NDKit Authors. SPDX-License-Identifier: Apache-2.0

// Package shapes defines Shape, the combination of a DType and per-axis dimensions
// that describes a buffer.
//
// ## Glossary
//
//   - Rank: number of axes (dimensions) of a buffer.
//   - Axis: the index of a dimension on a multidimensional buffer, 0-based. We refer
//     to a dimension index as "axis" (plural axes), and to its size as its dimension.
//   - Dimension: the size of a buffer in one of its axes.
//   - DType: the data type of the unit element of a buffer, see pkg/core/dtypes.
//   - Scalar: a shape with no axes (rank 0), holding a single value of the DType.
//
// Example: the multi-dimensional array [][]int32{{0, 1, 2}, {3, 4, 5}} has shape
// (Int32)[2 3]: rank 2, axis 0 has dimension 2, axis 1 has dimension 3. It could
// be created with shapes.Make(dtypes.Int32, 2, 3).
//
// Following the convention of the array libraries this engine is modeled on, the
// rank is limited to MaxRank (4) axes. Axes may have dimension 0, in which case
// the shape is explicitly empty (size 0); negative dimensions are invalid.
package shapes

import (
	"encoding/gob"
	"fmt"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/ndkit/ndkit/pkg/core/dtypes"
	"github.com/pkg/errors"
)

// MaxRank is the largest number of axes a shape can have, matching the
// four-dimension convention of the modeled array libraries.
const MaxRank = 4

// Shape represents the shape of a buffer: its element DType and the dimension of
// each of its axes.
//
// Use Make to create a new Shape. Shape is a value type: it is cheap to copy, and
// its methods don't mutate it.
type Shape struct {
	DType      dtypes.DType
	Dimensions []int
}

// Make returns a Shape with the given dtype and dimensions.
//
// It panics if any dimension is negative, if there are more than MaxRank
// dimensions, or if the dtype is invalid. Zero dimensions are allowed and yield
// an explicitly empty shape (Size() == 0).
func Make(dtype dtypes.DType, dimensions ...int) Shape {
	if !dtype.IsSupported() {
		exceptions.Panicf("shapes.Make(%s): invalid dtype", dtype)
	}
	if len(dimensions) > MaxRank {
		exceptions.Panicf("shapes.Make(%s, %v): rank %d exceeds the maximum of %d axes",
			dtype, dimensions, len(dimensions), MaxRank)
	}
	s := Shape{DType: dtype, Dimensions: slices.Clone(dimensions)}
	for _, dim := range dimensions {
		if dim < 0 {
			exceptions.Panicf("shapes.Make(%s): cannot create a shape with a negative dimension, got %v", dtype, dimensions)
		}
	}
	return s
}

// Scalar returns a scalar (rank-0) Shape for the given generic type.
func Scalar[T dtypes.Supported]() Shape {
	return Shape{DType: dtypes.FromGenericsType[T]()}
}

// Invalid returns an invalid shape: Invalid().Ok() == false.
func Invalid() Shape {
	return Shape{DType: dtypes.InvalidDType}
}

// Ok returns whether this is a valid Shape. The zero value Shape{} is invalid.
func (s Shape) Ok() bool { return s.DType != dtypes.InvalidDType }

// Rank of the shape, that is, its number of axes.
func (s Shape) Rank() int { return len(s.Dimensions) }

// IsScalar returns whether the shape represents a scalar: rank 0, a single value.
func (s Shape) IsScalar() bool { return s.Ok() && s.Rank() == 0 }

// IsZeroSize returns whether any of the axes has dimension 0, in which case the
// shape holds no data.
func (s Shape) IsZeroSize() bool {
	return slices.Contains(s.Dimensions, 0)
}

// Dim returns the dimension of the given axis. axis can be negative, in which
// case it counts from the end -- axis=-1 refers to the last axis.
// It panics for an out-of-bounds axis.
func (s Shape) Dim(axis int) int {
	adjustedAxis := axis
	if adjustedAxis < 0 {
		adjustedAxis += s.Rank()
	}
	if adjustedAxis < 0 || adjustedAxis >= s.Rank() {
		exceptions.Panicf("Shape.Dim(%d) out-of-bounds for rank %d (shape=%s)", axis, s.Rank(), s)
	}
	return s.Dimensions[adjustedAxis]
}

// Shape returns a shallow copy of itself. It implements the HasShape interface.
func (s Shape) Shape() Shape { return s }

// String implements fmt.Stringer, pretty-printing the shape.
func (s Shape) String() string {
	if s.Rank() == 0 {
		return fmt.Sprintf("(%s)", s.DType)
	}
	return fmt.Sprintf("(%s)%v", s.DType, s.Dimensions)
}

// Size returns the number of elements of DType stored for this shape: the
// product of all dimensions.
func (s Shape) Size() (size int) {
	size = 1
	for _, d := range s.Dimensions {
		size *= d
	}
	return
}

// Memory returns the number of bytes needed to store an array of the given shape.
func (s Shape) Memory() uintptr {
	return s.DType.Memory() * uintptr(s.Size())
}

// Strides returns the row-major strides for each axis: the distance in flat
// elements between consecutive values along that axis.
func (s Shape) Strides() []int {
	rank := s.Rank()
	if rank == 0 {
		return nil
	}
	strides := make([]int, rank)
	currentStride := 1
	for axis := rank - 1; axis >= 0; axis-- {
		strides[axis] = currentStride
		currentStride *= s.Dimensions[axis]
	}
	return strides
}

// Equal compares two shapes for equality: dtype and dimensions are compared.
func (s Shape) Equal(s2 Shape) bool {
	if s.DType != s2.DType {
		return false
	}
	return s.EqualDimensions(s2)
}

// EqualDimensions compares two shapes for equality of dimensions only. DTypes
// can be different.
func (s Shape) EqualDimensions(s2 Shape) bool {
	if s.Rank() != s2.Rank() {
		return false
	}
	if s.IsScalar() {
		return true
	}
	return slices.Equal(s.Dimensions, s2.Dimensions)
}

// Clone returns a deep copy of the shape.
func (s Shape) Clone() Shape {
	return Shape{DType: s.DType, Dimensions: slices.Clone(s.Dimensions)}
}

// GobSerialize the shape in binary format.
func (s Shape) GobSerialize(encoder *gob.Encoder) (err error) {
	enc := func(e any) {
		if err != nil {
			return
		}
		err = encoder.Encode(e)
		if err != nil {
			err = errors.Wrapf(err, "failed to serialize Shape %s", s)
		}
	}
	enc(s.DType)
	enc(s.Dimensions)
	return
}

// GobDeserialize a Shape. Returns the new Shape or an error.
func GobDeserialize(decoder *gob.Decoder) (s Shape, err error) {
	dec := func(data any) {
		if err != nil {
			return
		}
		err = decoder.Decode(data)
		if err != nil {
			err = errors.Wrapf(err, "failed to deserialize Shape")
		}
	}
	dec(&s.DType)
	dec(&s.Dimensions)
	return
}

// HasShape is an interface for anything that owns a Shape -- buffers implement it,
// and Shape itself trivially implements it.
type HasShape interface {
	Shape() Shape
}
