// Copyright 2025-2026 The NDKit Authors. SPDX-License-Identifier: Apache-2.0

package engine

import (
	"github.com/ndkit/ndkit/pkg/core/buffers"
	"github.com/ndkit/ndkit/pkg/core/dtypes"
)

// binaryKind selects the element function of the shared binary kernel.
type binaryKind int

const (
	bopAdd binaryKind = iota
	bopSub
	bopMul
	bopDiv
	bopMin
	bopMax
)

// Binary operations require operands of the same dtype and identical
// dimensions; there is no broadcasting. Results are freshly allocated with the
// operands' shape.

// Add returns a + b element-wise. Numeric dtypes, complex included.
func Add(a, b *buffers.Buffer) (*buffers.Buffer, error) {
	return binaryArith("Add", bopAdd, a, b)
}

// Sub returns a - b element-wise. Numeric dtypes, complex included.
func Sub(a, b *buffers.Buffer) (*buffers.Buffer, error) {
	return binaryArith("Sub", bopSub, a, b)
}

// Mul returns a * b element-wise. Numeric dtypes, complex included.
func Mul(a, b *buffers.Buffer) (*buffers.Buffer, error) {
	return binaryArith("Mul", bopMul, a, b)
}

// Div returns a / b element-wise. Numeric dtypes, complex included. Integer
// division by zero yields 0 instead of faulting; float division follows IEEE
// (Inf, NaN).
func Div(a, b *buffers.Buffer) (*buffers.Buffer, error) {
	return binaryArith("Div", bopDiv, a, b)
}

// Minof returns the element-wise smaller of a and b. Ordered dtypes only.
func Minof(a, b *buffers.Buffer) (*buffers.Buffer, error) {
	return binaryOrdered("Minof", bopMin, a, b)
}

// Maxof returns the element-wise larger of a and b. Ordered dtypes only.
func Maxof(a, b *buffers.Buffer) (*buffers.Buffer, error) {
	return binaryOrdered("Maxof", bopMax, a, b)
}

// Eq returns a == b element-wise as a Bool buffer. Every dtype is accepted;
// float comparison follows IEEE, so NaN != NaN and -0 == +0.
func Eq(a, b *buffers.Buffer) (*buffers.Buffer, error) {
	if err := checkSameShape("Eq", a, b); err != nil {
		return nil, err
	}
	if a.DType().IsFloat16() {
		return Eq(toFloat32(a), toFloat32(b))
	}
	shape := a.Shape().Clone()
	shape.DType = dtypes.Bool
	out := buffers.FromShape(shape)
	outFlat := buffers.FlatData[bool](out)
	if err := eqDispatch("Eq", a, b, outFlat); err != nil {
		return nil, err
	}
	return out, nil
}

// Lt returns a < b element-wise as a Bool buffer. Ordered dtypes only; any
// comparison involving NaN is false.
func Lt(a, b *buffers.Buffer) (*buffers.Buffer, error) {
	return compareOrdered("Lt", a, b, false)
}

// Gt returns a > b element-wise as a Bool buffer. See Lt.
func Gt(a, b *buffers.Buffer) (*buffers.Buffer, error) {
	return compareOrdered("Gt", a, b, true)
}

func binaryArith(opName string, op binaryKind, a, b *buffers.Buffer) (*buffers.Buffer, error) {
	if err := checkSameShape(opName, a, b); err != nil {
		return nil, err
	}
	dtype := a.DType()
	if dtype.IsComplex() {
		out := buffers.FromShape(a.Shape().Clone())
		if dtype == dtypes.Complex64 {
			binaryComplexFlat(op, buffers.FlatData[complex64](a), buffers.FlatData[complex64](b), buffers.FlatData[complex64](out))
		} else {
			binaryComplexFlat(op, buffers.FlatData[complex128](a), buffers.FlatData[complex128](b), buffers.FlatData[complex128](out))
		}
		return out, nil
	}
	return binaryOrdered(opName, op, a, b)
}

func binaryOrdered(opName string, op binaryKind, a, b *buffers.Buffer) (*buffers.Buffer, error) {
	if err := checkSameShape(opName, a, b); err != nil {
		return nil, err
	}
	dtype := a.DType()
	if dtype.IsFloat16() {
		out, err := binaryOrdered(opName, op, toFloat32(a), toFloat32(b))
		if err != nil {
			return nil, err
		}
		return fromFloat32(out, dtype), nil
	}
	if !dtype.IsOrdered() {
		return nil, errUnsupportedDType(opName, dtype)
	}
	out := buffers.FromShape(a.Shape().Clone())
	switch dtype {
	case dtypes.Int8:
		binaryNumericFlat(op, buffers.FlatData[int8](a), buffers.FlatData[int8](b), buffers.FlatData[int8](out), true)
	case dtypes.Int16:
		binaryNumericFlat(op, buffers.FlatData[int16](a), buffers.FlatData[int16](b), buffers.FlatData[int16](out), true)
	case dtypes.Int32:
		binaryNumericFlat(op, buffers.FlatData[int32](a), buffers.FlatData[int32](b), buffers.FlatData[int32](out), true)
	case dtypes.Int64:
		binaryNumericFlat(op, buffers.FlatData[int64](a), buffers.FlatData[int64](b), buffers.FlatData[int64](out), true)
	case dtypes.Uint8:
		binaryNumericFlat(op, buffers.FlatData[uint8](a), buffers.FlatData[uint8](b), buffers.FlatData[uint8](out), true)
	case dtypes.Uint16:
		binaryNumericFlat(op, buffers.FlatData[uint16](a), buffers.FlatData[uint16](b), buffers.FlatData[uint16](out), true)
	case dtypes.Uint32:
		binaryNumericFlat(op, buffers.FlatData[uint32](a), buffers.FlatData[uint32](b), buffers.FlatData[uint32](out), true)
	case dtypes.Uint64:
		binaryNumericFlat(op, buffers.FlatData[uint64](a), buffers.FlatData[uint64](b), buffers.FlatData[uint64](out), true)
	case dtypes.Float32:
		binaryNumericFlat(op, buffers.FlatData[float32](a), buffers.FlatData[float32](b), buffers.FlatData[float32](out), false)
	case dtypes.Float64:
		binaryNumericFlat(op, buffers.FlatData[float64](a), buffers.FlatData[float64](b), buffers.FlatData[float64](out), false)
	default:
		return nil, errUnsupportedDType(opName, dtype)
	}
	return out, nil
}

func compareOrdered(opName string, a, b *buffers.Buffer, greater bool) (*buffers.Buffer, error) {
	if err := checkSameShape(opName, a, b); err != nil {
		return nil, err
	}
	if a.DType().IsFloat16() {
		return compareOrdered(opName, toFloat32(a), toFloat32(b), greater)
	}
	if !a.DType().IsOrdered() {
		return nil, errUnsupportedDType(opName, a.DType())
	}
	shape := a.Shape().Clone()
	shape.DType = dtypes.Bool
	out := buffers.FromShape(shape)
	outFlat := buffers.FlatData[bool](out)
	switch a.DType() {
	case dtypes.Int8:
		compareFlat(buffers.FlatData[int8](a), buffers.FlatData[int8](b), outFlat, greater)
	case dtypes.Int16:
		compareFlat(buffers.FlatData[int16](a), buffers.FlatData[int16](b), outFlat, greater)
	case dtypes.Int32:
		compareFlat(buffers.FlatData[int32](a), buffers.FlatData[int32](b), outFlat, greater)
	case dtypes.Int64:
		compareFlat(buffers.FlatData[int64](a), buffers.FlatData[int64](b), outFlat, greater)
	case dtypes.Uint8:
		compareFlat(buffers.FlatData[uint8](a), buffers.FlatData[uint8](b), outFlat, greater)
	case dtypes.Uint16:
		compareFlat(buffers.FlatData[uint16](a), buffers.FlatData[uint16](b), outFlat, greater)
	case dtypes.Uint32:
		compareFlat(buffers.FlatData[uint32](a), buffers.FlatData[uint32](b), outFlat, greater)
	case dtypes.Uint64:
		compareFlat(buffers.FlatData[uint64](a), buffers.FlatData[uint64](b), outFlat, greater)
	case dtypes.Float32:
		compareFlat(buffers.FlatData[float32](a), buffers.FlatData[float32](b), outFlat, greater)
	case dtypes.Float64:
		compareFlat(buffers.FlatData[float64](a), buffers.FlatData[float64](b), outFlat, greater)
	default:
		return nil, errUnsupportedDType(opName, a.DType())
	}
	return out, nil
}

// binaryNumericFlat computes dst = a (op) b element-wise. guardDiv is set for
// integer dtypes, where division by zero yields 0 instead of a runtime fault.
func binaryNumericFlat[T dtypes.NumberNotComplex](op binaryKind, a, b, dst []T, guardDiv bool) {
	switch op {
	case bopAdd:
		for ii := range dst {
			dst[ii] = a[ii] + b[ii]
		}
	case bopSub:
		for ii := range dst {
			dst[ii] = a[ii] - b[ii]
		}
	case bopMul:
		for ii := range dst {
			dst[ii] = a[ii] * b[ii]
		}
	case bopDiv:
		if guardDiv {
			var zero T
			for ii := range dst {
				if b[ii] == zero {
					dst[ii] = zero
				} else {
					dst[ii] = a[ii] / b[ii]
				}
			}
		} else {
			for ii := range dst {
				dst[ii] = a[ii] / b[ii]
			}
		}
	case bopMin:
		for ii := range dst {
			if b[ii] < a[ii] {
				dst[ii] = b[ii]
			} else {
				dst[ii] = a[ii]
			}
		}
	case bopMax:
		for ii := range dst {
			if b[ii] > a[ii] {
				dst[ii] = b[ii]
			} else {
				dst[ii] = a[ii]
			}
		}
	}
}

// binaryComplexFlat handles the complex dtypes. The caller guarantees op is one
// of the four arithmetic kinds.
func binaryComplexFlat[T goComplex](op binaryKind, a, b, dst []T) {
	switch op {
	case bopAdd:
		for ii := range dst {
			dst[ii] = a[ii] + b[ii]
		}
	case bopSub:
		for ii := range dst {
			dst[ii] = a[ii] - b[ii]
		}
	case bopMul:
		for ii := range dst {
			dst[ii] = a[ii] * b[ii]
		}
	case bopDiv:
		for ii := range dst {
			dst[ii] = a[ii] / b[ii]
		}
	}
}

func compareFlat[T dtypes.NumberNotComplex](a, b []T, dst []bool, greater bool) {
	if greater {
		for ii := range dst {
			dst[ii] = a[ii] > b[ii]
		}
	} else {
		for ii := range dst {
			dst[ii] = a[ii] < b[ii]
		}
	}
}

func eqDispatch(opName string, a, b *buffers.Buffer, dst []bool) error {
	switch a.DType() {
	case dtypes.Bool:
		eqFlat(buffers.FlatData[bool](a), buffers.FlatData[bool](b), dst)
	case dtypes.Int8:
		eqFlat(buffers.FlatData[int8](a), buffers.FlatData[int8](b), dst)
	case dtypes.Int16:
		eqFlat(buffers.FlatData[int16](a), buffers.FlatData[int16](b), dst)
	case dtypes.Int32:
		eqFlat(buffers.FlatData[int32](a), buffers.FlatData[int32](b), dst)
	case dtypes.Int64:
		eqFlat(buffers.FlatData[int64](a), buffers.FlatData[int64](b), dst)
	case dtypes.Uint8:
		eqFlat(buffers.FlatData[uint8](a), buffers.FlatData[uint8](b), dst)
	case dtypes.Uint16:
		eqFlat(buffers.FlatData[uint16](a), buffers.FlatData[uint16](b), dst)
	case dtypes.Uint32:
		eqFlat(buffers.FlatData[uint32](a), buffers.FlatData[uint32](b), dst)
	case dtypes.Uint64:
		eqFlat(buffers.FlatData[uint64](a), buffers.FlatData[uint64](b), dst)
	case dtypes.Float32:
		eqFlat(buffers.FlatData[float32](a), buffers.FlatData[float32](b), dst)
	case dtypes.Float64:
		eqFlat(buffers.FlatData[float64](a), buffers.FlatData[float64](b), dst)
	case dtypes.Complex64:
		eqFlat(buffers.FlatData[complex64](a), buffers.FlatData[complex64](b), dst)
	case dtypes.Complex128:
		eqFlat(buffers.FlatData[complex128](a), buffers.FlatData[complex128](b), dst)
	default:
		return errUnsupportedDType(opName, a.DType())
	}
	return nil
}

func eqFlat[T comparable](a, b []T, dst []bool) {
	for ii := range dst {
		dst[ii] = a[ii] == b[ii]
	}
}
