// Copyright 2025-2026 The NDKit Authors. SPDX-License-Identifier: Apache-2.0

package engine

import (
	"github.com/ndkit/ndkit/pkg/core/buffers"
	"github.com/ndkit/ndkit/pkg/core/dtypes"
)

// ReduceOp identifies the combining operation of a reduction or scan.
type ReduceOp int

const (
	// OpAdd sums elements. Identity 0. Defined for all numeric dtypes,
	// complex included.
	OpAdd ReduceOp = iota

	// OpMultiply multiplies elements. Identity 1. Defined for all numeric
	// dtypes, complex included.
	OpMultiply

	// OpMin keeps the smallest element. Defined for ordered dtypes only.
	OpMin

	// OpMax keeps the largest element. Defined for ordered dtypes only.
	OpMax

	// OpAnd is the logical conjunction. Identity true. Bool only.
	OpAnd

	// OpOr is the logical disjunction. Identity false. Bool only.
	OpOr
)

// String implements fmt.Stringer.
func (op ReduceOp) String() string {
	switch op {
	case OpAdd:
		return "Add"
	case OpMultiply:
		return "Multiply"
	case OpMin:
		return "Min"
	case OpMax:
		return "Max"
	case OpAnd:
		return "And"
	case OpOr:
		return "Or"
	}
	return "InvalidReduceOp"
}

// goComplex constrains to the native Go complex types.
type goComplex interface {
	complex64 | complex128
}

// supportsDType returns whether the reduce op is defined for the dtype: OpAnd/OpOr
// are Bool only, OpMin/OpMax need an ordered dtype, OpAdd/OpMultiply any numeric
// dtype (complex included).
func (op ReduceOp) supportsDType(dtype dtypes.DType) bool {
	switch op {
	case OpAnd, OpOr:
		return dtype == dtypes.Bool
	case OpMin, OpMax:
		return dtype.IsOrdered()
	case OpAdd, OpMultiply:
		return dtype.IsOrdered() || dtype.IsComplex()
	}
	return false
}

// Reduce applies op along the given axis of x, returning a buffer of the same
// rank with dimension 1 at the reduced axis (keep-dims convention).
//
// OpAdd and OpMultiply on a zero-size axis yield the op's identity; OpMin and
// OpMax return ErrEmptyInput instead, they have no identity on finite integer
// ranges that callers would want. See also Sum, Product, Min and Max.
func Reduce(x *buffers.Buffer, axis int, op ReduceOp) (*buffers.Buffer, error) {
	if err := checkAxis(x, axis); err != nil {
		return nil, err
	}
	dtype := x.DType()
	if !op.supportsDType(dtype) {
		return nil, errUnsupportedDType("Reduce"+op.String(), dtype)
	}
	if (op == OpMin || op == OpMax) && x.Shape().Dimensions[axis] == 0 {
		return nil, errEmptyInput("Reduce" + op.String())
	}
	if dtype.IsFloat16() {
		out, err := Reduce(toFloat32(x), axis, op)
		if err != nil {
			return nil, err
		}
		return fromFloat32(out, dtype), nil
	}

	out := buffers.FromShape(reducedShape(x.Shape(), axis))
	outer, axisDim, inner := axisExtents(x.Shape(), axis)
	numLines := outer * inner
	switch dtype {
	case dtypes.Bool:
		reduceBoolLines(op, buffers.FlatData[bool](x), buffers.FlatData[bool](out), axisDim, inner, numLines)
	case dtypes.Int8:
		reduceNumericLines(op, buffers.FlatData[int8](x), buffers.FlatData[int8](out), axisDim, inner, numLines)
	case dtypes.Int16:
		reduceNumericLines(op, buffers.FlatData[int16](x), buffers.FlatData[int16](out), axisDim, inner, numLines)
	case dtypes.Int32:
		reduceNumericLines(op, buffers.FlatData[int32](x), buffers.FlatData[int32](out), axisDim, inner, numLines)
	case dtypes.Int64:
		reduceNumericLines(op, buffers.FlatData[int64](x), buffers.FlatData[int64](out), axisDim, inner, numLines)
	case dtypes.Uint8:
		reduceNumericLines(op, buffers.FlatData[uint8](x), buffers.FlatData[uint8](out), axisDim, inner, numLines)
	case dtypes.Uint16:
		reduceNumericLines(op, buffers.FlatData[uint16](x), buffers.FlatData[uint16](out), axisDim, inner, numLines)
	case dtypes.Uint32:
		reduceNumericLines(op, buffers.FlatData[uint32](x), buffers.FlatData[uint32](out), axisDim, inner, numLines)
	case dtypes.Uint64:
		reduceNumericLines(op, buffers.FlatData[uint64](x), buffers.FlatData[uint64](out), axisDim, inner, numLines)
	case dtypes.Float32:
		reduceNumericLines(op, buffers.FlatData[float32](x), buffers.FlatData[float32](out), axisDim, inner, numLines)
	case dtypes.Float64:
		reduceNumericLines(op, buffers.FlatData[float64](x), buffers.FlatData[float64](out), axisDim, inner, numLines)
	case dtypes.Complex64:
		reduceComplexLines(op, buffers.FlatData[complex64](x), buffers.FlatData[complex64](out), axisDim, inner, numLines)
	case dtypes.Complex128:
		reduceComplexLines(op, buffers.FlatData[complex128](x), buffers.FlatData[complex128](out), axisDim, inner, numLines)
	default:
		return nil, errUnsupportedDType("Reduce"+op.String(), dtype)
	}
	return out, nil
}

// Sum reduces with OpAdd along the given axis. See Reduce.
func Sum(x *buffers.Buffer, axis int) (*buffers.Buffer, error) {
	return Reduce(x, axis, OpAdd)
}

// Product reduces with OpMultiply along the given axis. See Reduce.
func Product(x *buffers.Buffer, axis int) (*buffers.Buffer, error) {
	return Reduce(x, axis, OpMultiply)
}

// Min reduces with OpMin along the given axis. See Reduce.
func Min(x *buffers.Buffer, axis int) (*buffers.Buffer, error) {
	return Reduce(x, axis, OpMin)
}

// Max reduces with OpMax along the given axis. See Reduce.
func Max(x *buffers.Buffer, axis int) (*buffers.Buffer, error) {
	return Reduce(x, axis, OpMax)
}

// SumNaN sums along the given axis, substituting NaN elements with the given
// value first. For complex dtypes an element with NaN on either component is
// replaced by complex(substitute, 0). Integer dtypes have no NaN, so SumNaN is
// equivalent to Sum.
func SumNaN(x *buffers.Buffer, axis int, substitute float64) (*buffers.Buffer, error) {
	return reduceNaN(x, axis, OpAdd, substitute)
}

// ProductNaN multiplies along the given axis, substituting NaN elements with the
// given value first. See SumNaN.
func ProductNaN(x *buffers.Buffer, axis int, substitute float64) (*buffers.Buffer, error) {
	return reduceNaN(x, axis, OpMultiply, substitute)
}

func reduceNaN(x *buffers.Buffer, axis int, op ReduceOp, substitute float64) (*buffers.Buffer, error) {
	if err := checkAxis(x, axis); err != nil {
		return nil, err
	}
	dtype := x.DType()
	if !op.supportsDType(dtype) {
		return nil, errUnsupportedDType("Reduce"+op.String()+"NaN", dtype)
	}
	if dtype.IsInt() {
		// No NaN to substitute.
		return Reduce(x, axis, op)
	}
	if dtype.IsFloat16() {
		out, err := reduceNaN(toFloat32(x), axis, op, substitute)
		if err != nil {
			return nil, err
		}
		return fromFloat32(out, dtype), nil
	}

	out := buffers.FromShape(reducedShape(x.Shape(), axis))
	outer, axisDim, inner := axisExtents(x.Shape(), axis)
	numLines := outer * inner
	switch dtype {
	case dtypes.Float32:
		reduceNaNLines(op, buffers.FlatData[float32](x), buffers.FlatData[float32](out), axisDim, inner, numLines, float32(substitute))
	case dtypes.Float64:
		reduceNaNLines(op, buffers.FlatData[float64](x), buffers.FlatData[float64](out), axisDim, inner, numLines, substitute)
	case dtypes.Complex64:
		reduceNaNLines(op, buffers.FlatData[complex64](x), buffers.FlatData[complex64](out), axisDim, inner, numLines, complex64(complex(substitute, 0)))
	case dtypes.Complex128:
		reduceNaNLines(op, buffers.FlatData[complex128](x), buffers.FlatData[complex128](out), axisDim, inner, numLines, complex(substitute, 0))
	default:
		return nil, errUnsupportedDType("Reduce"+op.String()+"NaN", dtype)
	}
	return out, nil
}

// Count returns the number of nonzero elements along the given axis, as a Uint32
// buffer of the keep-dims reduced shape. Bool counts true values; float counts
// include NaN (NaN is nonzero); complex elements count when any component is
// nonzero.
func Count(x *buffers.Buffer, axis int) (*buffers.Buffer, error) {
	if err := checkAxis(x, axis); err != nil {
		return nil, err
	}
	if x.DType().IsFloat16() {
		return Count(toFloat32(x), axis)
	}
	shape := reducedShape(x.Shape(), axis)
	shape.DType = dtypes.Uint32
	out := buffers.FromShape(shape)
	outFlat := buffers.FlatData[uint32](out)
	outer, axisDim, inner := axisExtents(x.Shape(), axis)
	numLines := outer * inner
	if err := dispatchComparable("Count", x, func(kernel comparableKernel) {
		kernel.count(outFlat, axisDim, inner, numLines)
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// All returns whether all elements along the given axis are nonzero, as a Bool
// buffer of the keep-dims reduced shape. A zero-size axis yields true.
func All(x *buffers.Buffer, axis int) (*buffers.Buffer, error) {
	return reducePredicate("All", x, axis, true)
}

// Any returns whether any element along the given axis is nonzero, as a Bool
// buffer of the keep-dims reduced shape. A zero-size axis yields false.
func Any(x *buffers.Buffer, axis int) (*buffers.Buffer, error) {
	return reducePredicate("Any", x, axis, false)
}

func reducePredicate(opName string, x *buffers.Buffer, axis int, wantAll bool) (*buffers.Buffer, error) {
	if err := checkAxis(x, axis); err != nil {
		return nil, err
	}
	if x.DType().IsFloat16() {
		return reducePredicate(opName, toFloat32(x), axis, wantAll)
	}
	shape := reducedShape(x.Shape(), axis)
	shape.DType = dtypes.Bool
	out := buffers.FromShape(shape)
	outFlat := buffers.FlatData[bool](out)
	outer, axisDim, inner := axisExtents(x.Shape(), axis)
	numLines := outer * inner
	if err := dispatchComparable(opName, x, func(kernel comparableKernel) {
		kernel.predicate(outFlat, axisDim, inner, numLines, wantAll)
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// ReduceAll applies op over all elements of x, returning the result as a
// (real, imaginary) float64 pair -- imaginary is 0 for non-complex dtypes.
//
// OpMin and OpMax on a zero-size buffer return ErrEmptyInput; OpAdd and
// OpMultiply yield their identity. Integer results are converted to float64,
// which may round values beyond 2^53.
func ReduceAll(x *buffers.Buffer, op ReduceOp) (re, im float64, err error) {
	x.AssertValid()
	dtype := x.DType()
	if !op.supportsDType(dtype) {
		return 0, 0, errUnsupportedDType("Reduce"+op.String()+"All", dtype)
	}
	if (op == OpMin || op == OpMax) && x.Shape().IsZeroSize() {
		return 0, 0, errEmptyInput("Reduce" + op.String() + "All")
	}
	if dtype.IsFloat16() {
		return ReduceAll(toFloat32(x), op)
	}

	switch dtype {
	case dtypes.Bool:
		re = boolToFloat(reduceAllBool(op, buffers.FlatData[bool](x)))
	case dtypes.Int8:
		re = float64(reduceAllNumeric(op, buffers.FlatData[int8](x)))
	case dtypes.Int16:
		re = float64(reduceAllNumeric(op, buffers.FlatData[int16](x)))
	case dtypes.Int32:
		re = float64(reduceAllNumeric(op, buffers.FlatData[int32](x)))
	case dtypes.Int64:
		re = float64(reduceAllNumeric(op, buffers.FlatData[int64](x)))
	case dtypes.Uint8:
		re = float64(reduceAllNumeric(op, buffers.FlatData[uint8](x)))
	case dtypes.Uint16:
		re = float64(reduceAllNumeric(op, buffers.FlatData[uint16](x)))
	case dtypes.Uint32:
		re = float64(reduceAllNumeric(op, buffers.FlatData[uint32](x)))
	case dtypes.Uint64:
		re = float64(reduceAllNumeric(op, buffers.FlatData[uint64](x)))
	case dtypes.Float32:
		re = float64(reduceAllNumeric(op, buffers.FlatData[float32](x)))
	case dtypes.Float64:
		re = reduceAllNumeric(op, buffers.FlatData[float64](x))
	case dtypes.Complex64:
		value := reduceAllComplex(op, buffers.FlatData[complex64](x))
		re, im = float64(real(value)), float64(imag(value))
	case dtypes.Complex128:
		value := reduceAllComplex(op, buffers.FlatData[complex128](x))
		re, im = real(value), imag(value)
	default:
		return 0, 0, errUnsupportedDType("Reduce"+op.String()+"All", dtype)
	}
	return
}

// SumAll reduces all elements of x with OpAdd. See ReduceAll.
func SumAll(x *buffers.Buffer) (re, im float64, err error) { return ReduceAll(x, OpAdd) }

// ProductAll reduces all elements of x with OpMultiply. See ReduceAll.
func ProductAll(x *buffers.Buffer) (re, im float64, err error) { return ReduceAll(x, OpMultiply) }

// MinAll returns the smallest element of x. See ReduceAll.
func MinAll(x *buffers.Buffer) (re, im float64, err error) { return ReduceAll(x, OpMin) }

// MaxAll returns the largest element of x. See ReduceAll.
func MaxAll(x *buffers.Buffer) (re, im float64, err error) { return ReduceAll(x, OpMax) }

// CountAll returns the number of nonzero elements of x. See Count for what
// counts as nonzero per dtype.
func CountAll(x *buffers.Buffer) (int64, error) {
	x.AssertValid()
	if x.DType().IsFloat16() {
		return CountAll(toFloat32(x))
	}
	var count int64
	err := dispatchComparable("CountAll", x, func(kernel comparableKernel) {
		count = kernel.countAll()
	})
	return count, err
}

// AllAll returns whether every element of x is nonzero. True on empty buffers.
func AllAll(x *buffers.Buffer) (bool, error) {
	count, err := CountAll(x)
	if err != nil {
		return false, err
	}
	return count == int64(x.Size()), nil
}

// AnyAll returns whether any element of x is nonzero. False on empty buffers.
func AnyAll(x *buffers.Buffer) (bool, error) {
	count, err := CountAll(x)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Where returns the flat (row-major) indices of the nonzero elements of x, in
// increasing order, as a rank-1 Uint32 buffer. See Count for what counts as
// nonzero per dtype.
func Where(x *buffers.Buffer) (*buffers.Buffer, error) {
	x.AssertValid()
	if x.DType().IsFloat16() {
		return Where(toFloat32(x))
	}
	var indices []uint32
	if err := dispatchComparable("Where", x, func(kernel comparableKernel) {
		indices = kernel.where()
	}); err != nil {
		return nil, err
	}
	return buffers.FromFlatDataAndDimensions(indices, len(indices)), nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// reduceNumericLines reduces each of the numLines independent lines of x into one
// element of out. Line L starts at flat position lineStart(L, axisDim, inner) and
// walks axisDim elements with stride inner.
//
// OpMin and OpMax seed from the line's first element (the caller guarantees
// axisDim >= 1), so for float lines whose first element is NaN the NaN wins; in
// any other position NaN loses every comparison and is skipped.
func reduceNumericLines[T dtypes.NumberNotComplex](op ReduceOp, x, out []T, axisDim, inner, numLines int) {
	switch op {
	case OpAdd:
		parallelFor(numLines, axisDim, func(line int) {
			pos := lineStart(line, axisDim, inner)
			var acc T
			for _i := 0; _i < axisDim; _i++ {
				acc += x[pos]
				pos += inner
			}
			out[line] = acc
		})
	case OpMultiply:
		parallelFor(numLines, axisDim, func(line int) {
			pos := lineStart(line, axisDim, inner)
			acc := T(1)
			for _i := 0; _i < axisDim; _i++ {
				acc *= x[pos]
				pos += inner
			}
			out[line] = acc
		})
	case OpMin:
		parallelFor(numLines, axisDim, func(line int) {
			pos := lineStart(line, axisDim, inner)
			acc := x[pos]
			pos += inner
			for _i := 0; _i < axisDim - 1; _i++ {
				if v := x[pos]; v < acc {
					acc = v
				}
				pos += inner
			}
			out[line] = acc
		})
	case OpMax:
		parallelFor(numLines, axisDim, func(line int) {
			pos := lineStart(line, axisDim, inner)
			acc := x[pos]
			pos += inner
			for _i := 0; _i < axisDim - 1; _i++ {
				if v := x[pos]; v > acc {
					acc = v
				}
				pos += inner
			}
			out[line] = acc
		})
	}
}

// reduceComplexLines is the complex counterpart of reduceNumericLines. The caller
// guarantees op is OpAdd or OpMultiply.
func reduceComplexLines[T goComplex](op ReduceOp, x, out []T, axisDim, inner, numLines int) {
	mul := op == OpMultiply
	parallelFor(numLines, axisDim, func(line int) {
		pos := lineStart(line, axisDim, inner)
		var acc T
		if mul {
			acc = 1
		}
		for _i := 0; _i < axisDim; _i++ {
			if mul {
				acc *= x[pos]
			} else {
				acc += x[pos]
			}
			pos += inner
		}
		out[line] = acc
	})
}

// reduceNaNLines adds or multiplies lines, substituting NaN elements first.
// The NaN test v != v covers floats and complex alike (a complex is NaN when
// either component is), and never fires for other types.
func reduceNaNLines[T dtypes.Number](op ReduceOp, x, out []T, axisDim, inner, numLines int, substitute T) {
	mul := op == OpMultiply
	parallelFor(numLines, axisDim, func(line int) {
		pos := lineStart(line, axisDim, inner)
		var acc T
		if mul {
			acc = 1
		}
		for _i := 0; _i < axisDim; _i++ {
			v := x[pos]
			if v != v {
				v = substitute
			}
			if mul {
				acc *= v
			} else {
				acc += v
			}
			pos += inner
		}
		out[line] = acc
	})
}

// reduceBoolLines reduces Bool lines with OpAnd or OpOr, short-circuiting.
func reduceBoolLines(op ReduceOp, x, out []bool, axisDim, inner, numLines int) {
	wantAll := op == OpAnd
	parallelFor(numLines, axisDim, func(line int) {
		pos := lineStart(line, axisDim, inner)
		acc := wantAll
		for _i := 0; _i < axisDim; _i++ {
			if x[pos] != wantAll {
				acc = !wantAll
				break
			}
			pos += inner
		}
		out[line] = acc
	})
}

// reduceAllNumeric reduces the whole flat slice to a single value. It runs
// serially: a fixed combination order keeps float results deterministic.
// The caller guarantees len(flat) >= 1 for OpMin/OpMax.
func reduceAllNumeric[T dtypes.NumberNotComplex](op ReduceOp, flat []T) T {
	var out [1]T
	reduceNumericLines(op, flat, out[:], len(flat), 1, 1)
	return out[0]
}

func reduceAllComplex[T goComplex](op ReduceOp, flat []T) T {
	var out [1]T
	reduceComplexLines(op, flat, out[:], len(flat), 1, 1)
	return out[0]
}

func reduceAllBool(op ReduceOp, flat []bool) bool {
	var out [1]bool
	reduceBoolLines(op, flat, out[:], len(flat), 1, 1)
	return out[0]
}

// comparableKernel bundles the equality-based kernels (Count, All, Any, Where,
// IsZero, IsNaN) for one concrete element type, so their per-dtype dispatch is
// written once.
type comparableKernel interface {
	count(out []uint32, axisDim, inner, numLines int)
	predicate(out []bool, axisDim, inner, numLines int, wantAll bool)
	countAll() int64
	where() []uint32
	isZero(out []bool)
	isNaN(out []bool)
}

type comparableLines[T comparable] struct {
	flat []T
}

func (k comparableLines[T]) count(out []uint32, axisDim, inner, numLines int) {
	var zero T
	parallelFor(numLines, axisDim, func(line int) {
		pos := lineStart(line, axisDim, inner)
		var n uint32
		for _i := 0; _i < axisDim; _i++ {
			if k.flat[pos] != zero {
				n++
			}
			pos += inner
		}
		out[line] = n
	})
}

func (k comparableLines[T]) predicate(out []bool, axisDim, inner, numLines int, wantAll bool) {
	var zero T
	parallelFor(numLines, axisDim, func(line int) {
		pos := lineStart(line, axisDim, inner)
		acc := wantAll
		for _i := 0; _i < axisDim; _i++ {
			if (k.flat[pos] != zero) != wantAll {
				acc = !wantAll
				break
			}
			pos += inner
		}
		out[line] = acc
	})
}

func (k comparableLines[T]) countAll() int64 {
	var zero T
	var n int64
	for _, v := range k.flat {
		if v != zero {
			n++
		}
	}
	return n
}

func (k comparableLines[T]) isZero(out []bool) {
	var zero T
	for ii, v := range k.flat {
		out[ii] = v == zero
	}
}

// isNaN relies on v != v, which only ever fires for float and complex values.
func (k comparableLines[T]) isNaN(out []bool) {
	for ii, v := range k.flat {
		out[ii] = v != v
	}
}

func (k comparableLines[T]) where() []uint32 {
	var zero T
	indices := make([]uint32, 0, len(k.flat)/4+1)
	for ii, v := range k.flat {
		if v != zero {
			indices = append(indices, uint32(ii))
		}
	}
	return indices
}

// dispatchComparable resolves x's dtype to a comparableKernel and hands it to fn.
// Float16 and BFloat16 are not dispatched here: their raw bits make negative zero
// look nonzero, so callers route them through toFloat32 first.
func dispatchComparable(opName string, x *buffers.Buffer, fn func(kernel comparableKernel)) error {
	switch x.DType() {
	case dtypes.Bool:
		fn(comparableLines[bool]{buffers.FlatData[bool](x)})
	case dtypes.Int8:
		fn(comparableLines[int8]{buffers.FlatData[int8](x)})
	case dtypes.Int16:
		fn(comparableLines[int16]{buffers.FlatData[int16](x)})
	case dtypes.Int32:
		fn(comparableLines[int32]{buffers.FlatData[int32](x)})
	case dtypes.Int64:
		fn(comparableLines[int64]{buffers.FlatData[int64](x)})
	case dtypes.Uint8:
		fn(comparableLines[uint8]{buffers.FlatData[uint8](x)})
	case dtypes.Uint16:
		fn(comparableLines[uint16]{buffers.FlatData[uint16](x)})
	case dtypes.Uint32:
		fn(comparableLines[uint32]{buffers.FlatData[uint32](x)})
	case dtypes.Uint64:
		fn(comparableLines[uint64]{buffers.FlatData[uint64](x)})
	case dtypes.Float32:
		fn(comparableLines[float32]{buffers.FlatData[float32](x)})
	case dtypes.Float64:
		fn(comparableLines[float64]{buffers.FlatData[float64](x)})
	case dtypes.Complex64:
		fn(comparableLines[complex64]{buffers.FlatData[complex64](x)})
	case dtypes.Complex128:
		fn(comparableLines[complex128]{buffers.FlatData[complex128](x)})
	default:
		return errUnsupportedDType(opName, x.DType())
	}
	return nil
}
