// Copyright 2025-2026 The NDKit Authors. SPDX-License-Identifier: Apache-2.0

package engine

import (
	"math"
	"math/cmplx"

	"github.com/ndkit/ndkit/pkg/core/buffers"
	"github.com/ndkit/ndkit/pkg/core/dtypes"
)

// unaryKind selects the element function of the shared unary kernel.
type unaryKind int

const (
	uopNeg unaryKind = iota
	uopAbs
	uopSign
	uopFloor
	uopCeil
	uopRound
)

// Neg returns -x element-wise. Numeric dtypes only, complex included; unsigned
// integers negate modulo 2^bits.
func Neg(x *buffers.Buffer) (*buffers.Buffer, error) {
	x.AssertValid()
	dtype := x.DType()
	switch {
	case dtype.IsComplex():
		out := buffers.FromShape(x.Shape().Clone())
		if dtype == dtypes.Complex64 {
			mapFlat(buffers.FlatData[complex64](x), buffers.FlatData[complex64](out), func(v complex64) complex64 { return -v })
		} else {
			mapFlat(buffers.FlatData[complex128](x), buffers.FlatData[complex128](out), func(v complex128) complex128 { return -v })
		}
		return out, nil
	case dtype.IsOrdered() || dtype.IsFloat16():
		return unaryNumeric("Neg", uopNeg, x)
	}
	return nil, errUnsupportedDType("Neg", dtype)
}

// Abs returns |x| element-wise. For complex dtypes the result is the magnitude,
// with the matching real dtype (Complex64 yields Float32); otherwise the dtype
// is preserved, unsigned integers being returned as they are.
func Abs(x *buffers.Buffer) (*buffers.Buffer, error) {
	x.AssertValid()
	dtype := x.DType()
	switch {
	case dtype.IsComplex():
		shape := x.Shape().Clone()
		shape.DType = dtype.RealDType()
		out := buffers.FromShape(shape)
		if dtype == dtypes.Complex64 {
			mapFlat(buffers.FlatData[complex64](x), buffers.FlatData[float32](out),
				func(v complex64) float32 { return float32(cmplx.Abs(complex128(v))) })
		} else {
			mapFlat(buffers.FlatData[complex128](x), buffers.FlatData[float64](out), cmplx.Abs)
		}
		return out, nil
	case dtype.IsOrdered() || dtype.IsFloat16():
		return unaryNumeric("Abs", uopAbs, x)
	}
	return nil, errUnsupportedDType("Abs", dtype)
}

// Sign returns -1, 0 or +1 element-wise with x's dtype. NaN maps to 0.
// Ordered dtypes only.
func Sign(x *buffers.Buffer) (*buffers.Buffer, error) {
	x.AssertValid()
	if !x.DType().IsOrdered() {
		return nil, errUnsupportedDType("Sign", x.DType())
	}
	return unaryNumeric("Sign", uopSign, x)
}

// Floor rounds each element toward negative infinity. Integer buffers are
// returned as a copy; float dtypes only otherwise.
func Floor(x *buffers.Buffer) (*buffers.Buffer, error) {
	return roundingOp("Floor", uopFloor, x)
}

// Ceil rounds each element toward positive infinity. See Floor.
func Ceil(x *buffers.Buffer) (*buffers.Buffer, error) {
	return roundingOp("Ceil", uopCeil, x)
}

// Round rounds each element to the nearest integer, halves away from zero.
// See Floor.
func Round(x *buffers.Buffer) (*buffers.Buffer, error) {
	return roundingOp("Round", uopRound, x)
}

func roundingOp(opName string, op unaryKind, x *buffers.Buffer) (*buffers.Buffer, error) {
	x.AssertValid()
	dtype := x.DType()
	if dtype.IsInt() {
		// Already integral.
		return x.Clone(), nil
	}
	if !dtype.IsFloat() {
		return nil, errUnsupportedDType(opName, dtype)
	}
	return unaryNumeric(opName, op, x)
}

// Not returns the logical negation of a Bool buffer.
func Not(x *buffers.Buffer) (*buffers.Buffer, error) {
	x.AssertValid()
	if x.DType() != dtypes.Bool {
		return nil, errUnsupportedDType("Not", x.DType())
	}
	out := buffers.FromShape(x.Shape().Clone())
	mapFlat(buffers.FlatData[bool](x), buffers.FlatData[bool](out), func(v bool) bool { return !v })
	return out, nil
}

// IsNaN returns a Bool buffer marking the NaN elements of x. A complex element
// is NaN when either component is. Dtypes without NaN yield all false.
func IsNaN(x *buffers.Buffer) (*buffers.Buffer, error) {
	x.AssertValid()
	if x.DType().IsFloat16() {
		return IsNaN(toFloat32(x))
	}
	shape := x.Shape().Clone()
	shape.DType = dtypes.Bool
	out := buffers.FromShape(shape)
	outFlat := buffers.FlatData[bool](out)
	if err := dispatchComparable("IsNaN", x, func(kernel comparableKernel) {
		kernel.isNaN(outFlat)
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// IsZero returns a Bool buffer marking the zero elements of x. For floats both
// zeros qualify; a complex element is zero when both components are.
func IsZero(x *buffers.Buffer) (*buffers.Buffer, error) {
	x.AssertValid()
	if x.DType().IsFloat16() {
		// Via float32, where negative zero compares equal to zero.
		return IsZero(toFloat32(x))
	}
	shape := x.Shape().Clone()
	shape.DType = dtypes.Bool
	out := buffers.FromShape(shape)
	outFlat := buffers.FlatData[bool](out)
	if err := dispatchComparable("IsZero", x, func(kernel comparableKernel) {
		kernel.isZero(outFlat)
	}); err != nil {
		return nil, err
	}
	return out, nil
}

func mapFlat[T, O any](src []T, dst []O, fn func(T) O) {
	for ii, v := range src {
		dst[ii] = fn(v)
	}
}

// unaryNumeric applies op to every element, preserving shape and dtype. Float16
// and BFloat16 compute on the float32 image. The caller has validated the
// op/dtype pairing.
func unaryNumeric(opName string, op unaryKind, x *buffers.Buffer) (*buffers.Buffer, error) {
	dtype := x.DType()
	if dtype.IsFloat16() {
		out, err := unaryNumeric(opName, op, toFloat32(x))
		if err != nil {
			return nil, err
		}
		return fromFloat32(out, dtype), nil
	}
	out := buffers.FromShape(x.Shape().Clone())
	switch dtype {
	case dtypes.Int8:
		unaryNumericFlat(op, buffers.FlatData[int8](x), buffers.FlatData[int8](out))
	case dtypes.Int16:
		unaryNumericFlat(op, buffers.FlatData[int16](x), buffers.FlatData[int16](out))
	case dtypes.Int32:
		unaryNumericFlat(op, buffers.FlatData[int32](x), buffers.FlatData[int32](out))
	case dtypes.Int64:
		unaryNumericFlat(op, buffers.FlatData[int64](x), buffers.FlatData[int64](out))
	case dtypes.Uint8:
		unaryNumericFlat(op, buffers.FlatData[uint8](x), buffers.FlatData[uint8](out))
	case dtypes.Uint16:
		unaryNumericFlat(op, buffers.FlatData[uint16](x), buffers.FlatData[uint16](out))
	case dtypes.Uint32:
		unaryNumericFlat(op, buffers.FlatData[uint32](x), buffers.FlatData[uint32](out))
	case dtypes.Uint64:
		unaryNumericFlat(op, buffers.FlatData[uint64](x), buffers.FlatData[uint64](out))
	case dtypes.Float32:
		unaryNumericFlat(op, buffers.FlatData[float32](x), buffers.FlatData[float32](out))
	case dtypes.Float64:
		unaryNumericFlat(op, buffers.FlatData[float64](x), buffers.FlatData[float64](out))
	default:
		return nil, errUnsupportedDType(opName, dtype)
	}
	return out, nil
}

func unaryNumericFlat[T dtypes.NumberNotComplex](op unaryKind, src, dst []T) {
	var zero T
	switch op {
	case uopNeg:
		mapFlat(src, dst, func(v T) T { return -v })
	case uopAbs:
		mapFlat(src, dst, func(v T) T {
			if v < zero {
				return -v
			}
			return v
		})
	case uopSign:
		one := T(1)
		mapFlat(src, dst, func(v T) T {
			if v > zero {
				return one
			}
			if v < zero {
				return zero - one
			}
			return zero
		})
	case uopFloor:
		mapFlat(src, dst, func(v T) T { return T(math.Floor(float64(v))) })
	case uopCeil:
		mapFlat(src, dst, func(v T) T { return T(math.Ceil(float64(v))) })
	case uopRound:
		mapFlat(src, dst, func(v T) T { return T(math.Round(float64(v))) })
	}
}
