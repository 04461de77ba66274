// Copyright 2025-2026 The NDKit Authors. SPDX-License-Identifier: Apache-2.0

// Package buffers implements Buffer, an owned, contiguous multi-dimensional array
// of a fixed scalar element type.
//
// A Buffer is defined by its shape (a dtype plus the dimension of each axis, see
// pkg/core/shapes) and its content, stored as a flat (1D) slice of the Go type
// corresponding to the dtype, in row-major order.
//
// There are various ways to construct a Buffer from local data:
//
//   - FromShape(shape): a buffer of the given shape filled with zero values.
//   - FromScalarAndDimensions[T](value, dimensions...): a buffer with the given
//     dimensions filled with a scalar value; the dtype is inferred from T.
//   - FromFlatDataAndDimensions[T](data, dimensions...): a buffer with the given
//     dimensions, with the flattened values copied from data.
//
// A Buffer is exclusively owned by its creator until it is handed to a consumer.
// Engine operations (pkg/core/engine) only read their inputs and return freshly
// allocated buffers -- with the exception of explicitly named in-place variants,
// which require the caller to be the sole owner. Buffers perform no internal
// locking; concurrent mutation of a shared buffer is a caller bug.
package buffers

import (
	"math"
	"math/cmplx"
	"reflect"

	"github.com/gomlx/exceptions"
	"github.com/ndkit/ndkit/pkg/core/dtypes"
	"github.com/ndkit/ndkit/pkg/core/dtypes/bfloat16"
	"github.com/ndkit/ndkit/pkg/core/shapes"
	"github.com/ndkit/ndkit/pkg/support/xslices"
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// Buffer represents a multidimensional array (from scalar with 0 dimensions up to
// shapes.MaxRank dimensions), defined by its shape and its flat contents.
//
// See the package documentation for construction and the ownership contract.
type Buffer struct {
	// shape of the buffer. Immutable during the buffer's lifetime.
	shape shapes.Shape

	// flat holds the actual data: a []T where T is the Go type for shape.DType.
	flat any
}

// FromShape returns a Buffer with the given shape, with the data initialized
// with zeros.
func FromShape(shape shapes.Shape) *Buffer {
	if !shape.Ok() {
		panic(errors.New("buffers.FromShape: invalid shape"))
	}
	size := shape.Size()
	flatV := reflect.MakeSlice(reflect.SliceOf(shape.DType.GoType()), size, size)
	return &Buffer{shape: shape.Clone(), flat: flatV.Interface()}
}

// FromScalar creates a scalar (rank-0) buffer with the given value.
// The dtype is inferred from the value.
func FromScalar[T dtypes.Supported](value T) *Buffer {
	return FromScalarAndDimensions(value)
}

// FromScalarAndDimensions creates a buffer with the given dimensions, filled with
// the given scalar value replicated everywhere. The dtype is inferred from the value.
func FromScalarAndDimensions[T dtypes.Supported](value T, dimensions ...int) *Buffer {
	dtype := dtypes.FromGenericsType[T]()
	b := FromShape(shapes.Make(dtype, dimensions...))
	MutableFlatData(b, func(flat []T) {
		xslices.FillSlice(flat, value)
	})
	return b
}

// FromFlatDataAndDimensions creates a buffer with the given dimensions, with the
// flattened values copied over from data. The dtype is inferred from the data type.
func FromFlatDataAndDimensions[T dtypes.Supported](data []T, dimensions ...int) *Buffer {
	dtype := dtypes.FromGenericsType[T]()
	shape := shapes.Make(dtype, dimensions...)
	if len(data) != shape.Size() {
		exceptions.Panicf("buffers.FromFlatDataAndDimensions(%s): got %d values, shape requires %d",
			shape, len(data), shape.Size())
	}
	b := FromShape(shape)
	MutableFlatData(b, func(flat []T) {
		copy(flat, data)
	})
	return b
}

// Shape of the buffer, including its DType.
func (b *Buffer) Shape() shapes.Shape { return b.shape }

// DType is a shortcut to Buffer.Shape().DType.
func (b *Buffer) DType() dtypes.DType { return b.shape.DType }

// Rank is a shortcut to Buffer.Shape().Rank().
func (b *Buffer) Rank() int { return b.shape.Rank() }

// IsScalar is a shortcut to Buffer.Shape().IsScalar().
func (b *Buffer) IsScalar() bool { return b.shape.IsScalar() }

// Size returns the number of elements in the buffer.
func (b *Buffer) Size() int { return b.shape.Size() }

// Memory returns the number of bytes used to store the buffer data.
func (b *Buffer) Memory() uintptr { return b.shape.Memory() }

// LayoutStrides returns the strides for each axis, handy when addressing the
// flat data directly.
func (b *Buffer) LayoutStrides() []int { return b.shape.Strides() }

// AssertValid panics if the buffer is nil or if its shape is invalid.
func (b *Buffer) AssertValid() {
	if b == nil {
		panic(errors.New("Buffer is nil"))
	}
	if !b.shape.Ok() {
		panic(errors.New("Buffer shape is invalid"))
	}
	if b.flat == nil {
		panic(errors.New("Buffer has no storage associated"))
	}
}

// ConstFlatData calls accessFn with the flattened data as a slice of the Go type
// corresponding to the DType. Even scalar buffers have a flat representation of
// one element.
//
// The slice is the actual buffer data (not a copy), owned by the buffer: it must
// not be changed inside accessFn. See MutableFlatData for write access.
func (b *Buffer) ConstFlatData(accessFn func(flat any)) {
	b.AssertValid()
	accessFn(b.flat)
}

// ConstFlatData is the generics version of Buffer.ConstFlatData. It panics if T
// doesn't match the buffer's dtype.
func ConstFlatData[T dtypes.Supported](b *Buffer, accessFn func(flat []T)) {
	if b.shape.DType != dtypes.FromGenericsType[T]() {
		var v T
		exceptions.Panicf("buffers.ConstFlatData[%T] is incompatible with buffer's dtype %s", v, b.shape.DType)
	}
	b.ConstFlatData(func(anyFlat any) {
		accessFn(anyFlat.([]T))
	})
}

// MutableFlatData calls accessFn with the flat data slice, whose contents may be
// changed until accessFn returns. The caller must be the exclusive owner of the
// buffer.
func (b *Buffer) MutableFlatData(accessFn func(flat any)) {
	b.AssertValid()
	accessFn(b.flat)
}

// MutableFlatData is the generics version of Buffer.MutableFlatData. It panics if
// T doesn't match the buffer's dtype.
func MutableFlatData[T dtypes.Supported](b *Buffer, accessFn func(flat []T)) {
	if b.shape.DType != dtypes.FromGenericsType[T]() {
		var v T
		exceptions.Panicf("buffers.MutableFlatData[%T] is incompatible with buffer's dtype %s", v, b.shape.DType)
	}
	b.MutableFlatData(func(anyFlat any) {
		accessFn(anyFlat.([]T))
	})
}

// FlatData returns the actual flat data slice of the buffer, without copying.
//
// The slice is owned by the buffer: mutating it mutates the buffer, and the usual
// exclusive-ownership contract applies. This is the accessor engine kernels use;
// most callers are better served by ConstFlatData/MutableFlatData.
//
// It panics if T doesn't match the buffer's dtype.
func FlatData[T dtypes.Supported](b *Buffer) []T {
	b.AssertValid()
	if b.shape.DType != dtypes.FromGenericsType[T]() {
		var v T
		exceptions.Panicf("buffers.FlatData[%T] is incompatible with buffer's dtype %s", v, b.shape.DType)
	}
	return b.flat.([]T)
}

// AssignFlatData copies the values in fromFlat to the storage of the buffer.
// It panics if the dtype is incompatible or the size is wrong.
func AssignFlatData[T dtypes.Supported](toBuffer *Buffer, fromFlat []T) {
	MutableFlatData(toBuffer, func(toFlat []T) {
		if len(toFlat) != len(fromFlat) {
			var v T
			exceptions.Panicf("buffers.AssignFlatData[%T] trying to store %d values into shape %s, which requires %d values",
				v, len(fromFlat), toBuffer.Shape(), toBuffer.Shape().Size())
		}
		copy(toFlat, fromFlat)
	})
}

// CopyFlatData returns a copy of the flat data of the buffer.
// It panics if T doesn't match the buffer's dtype.
func CopyFlatData[T dtypes.Supported](b *Buffer) []T {
	var flatCopy []T
	ConstFlatData(b, func(flat []T) {
		flatCopy = xslices.Copy(flat)
	})
	return flatCopy
}

// ToScalar returns the value of a scalar (or one-element) buffer.
// It panics if T doesn't match the buffer's dtype or if the buffer has more than
// one element.
func ToScalar[T dtypes.Supported](b *Buffer) T {
	b.AssertValid()
	if b.shape.DType != dtypes.FromGenericsType[T]() {
		var v T
		exceptions.Panicf("buffers.ToScalar[%T] is incompatible with buffer's dtype %s", v, b.shape.DType)
	}
	if b.Size() != 1 {
		var v T
		exceptions.Panicf("buffers.ToScalar[%T] requires a one-element buffer, got shape %s", v, b.shape)
	}
	return b.flat.([]T)[0]
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	b.AssertValid()
	clone := FromShape(b.shape)
	reflect.Copy(reflect.ValueOf(clone.flat), reflect.ValueOf(b.flat))
	return clone
}

// Equal checks whether b == other: same shape (dtype included) and same values.
// If they are the same pointer they are trivially equal. It panics if either is
// invalid.
//
// Slow implementation, fine for small buffers: it compares element by element
// through reflection.
func (b *Buffer) Equal(other *Buffer) bool {
	b.AssertValid()
	other.AssertValid()
	if b == other {
		return true
	}
	if !b.shape.Equal(other.shape) {
		return false
	}
	equal := true
	b.ConstFlatData(func(flat0 any) {
		other.ConstFlatData(func(flat1 any) {
			v0 := reflect.ValueOf(flat0)
			v1 := reflect.ValueOf(flat1)
			for ii := 0; ii < v0.Len(); ii++ {
				if !v0.Index(ii).Equal(v1.Index(ii)) {
					equal = false
					return
				}
			}
		})
	})
	return equal
}

// InDelta checks whether Abs(b - other) <= delta for every element. Shapes must
// match. It panics if either buffer is invalid, or if the dtype is not a float
// or complex type.
func (b *Buffer) InDelta(other *Buffer, delta float64) bool {
	b.AssertValid()
	other.AssertValid()
	if b == other {
		return true
	}
	if !b.shape.Equal(other.shape) {
		return false
	}
	if !b.DType().IsFloat() && !b.DType().IsComplex() {
		exceptions.Panicf("Buffer.InDelta only works for float and complex dtypes, got %s", b.DType())
	}
	if b.shape.IsZeroSize() {
		return true
	}
	inDelta := true
	b.ConstFlatData(func(flat0 any) {
		other.ConstFlatData(func(flat1 any) {
			v0 := reflect.ValueOf(flat0)
			v1 := reflect.ValueOf(flat1)
			for ii := 0; ii < v0.Len(); ii++ {
				if elementDelta(v0.Index(ii), v1.Index(ii)) > delta {
					inDelta = false
					return
				}
			}
		})
	})
	return inDelta
}

// elementDelta returns |a-b| for one element pair of a float or complex
// buffer. Complex elements compare by the magnitude of their difference, so a
// deviation on either component is caught.
func elementDelta(a, b reflect.Value) float64 {
	switch v := a.Interface().(type) {
	case complex64:
		return cmplx.Abs(complex128(v) - complex128(b.Interface().(complex64)))
	case complex128:
		return cmplx.Abs(v - b.Interface().(complex128))
	default:
		return math.Abs(toFloat64(a) - toFloat64(b))
	}
}

// toFloat64 converts one element of a float buffer to float64 for delta
// comparisons.
func toFloat64(v reflect.Value) float64 {
	switch value := v.Interface().(type) {
	case float16.Float16:
		return float64(value.Float32())
	case bfloat16.BFloat16:
		return float64(value.Float32())
	default:
		return v.Convert(reflect.TypeOf(float64(0))).Float()
	}
}
