// Copyright 2025-2026 The NDKit Authors. SPDX-License-Identifier: Apache-2.0

package engine

import (
	"github.com/ndkit/ndkit/pkg/core/buffers"
	"github.com/ndkit/ndkit/pkg/core/dtypes"
)

// Scan computes the running reduction of op along the given axis, returning a
// buffer of the same shape and dtype as x.
//
// Inclusive (inclusive=true): out[k] combines x[0..k] of the line. Exclusive
// (inclusive=false): out[k] combines x[0..k-1], so out[0] is the op's identity
// (0 for OpAdd, 1 for OpMultiply, the dtype's highest value for OpMin, lowest
// for OpMax, true for OpAnd, false for OpOr).
//
// The op/dtype compatibility rules are those of Reduce.
func Scan(x *buffers.Buffer, axis int, op ReduceOp, inclusive bool) (*buffers.Buffer, error) {
	if err := checkAxis(x, axis); err != nil {
		return nil, err
	}
	if !op.supportsDType(x.DType()) {
		return nil, errUnsupportedDType("Scan"+op.String(), x.DType())
	}
	return scanWithBoundaries(x, axis, op, inclusive, nil)
}

// ScanByKey is Scan with segments: the running reduction restarts whenever the
// key changes from the previous position along the axis. Keys must be an integer
// dtype buffer with the same dimensions as x. At segment starts an exclusive
// scan yields the op's identity, as if the segment were a fresh line.
func ScanByKey(keys, x *buffers.Buffer, axis int, op ReduceOp, inclusive bool) (*buffers.Buffer, error) {
	if err := checkAxis(x, axis); err != nil {
		return nil, err
	}
	if !op.supportsDType(x.DType()) {
		return nil, errUnsupportedDType("ScanByKey"+op.String(), x.DType())
	}
	if !keys.DType().IsInt() {
		return nil, errUnsupportedDType("ScanByKey keys", keys.DType())
	}
	if !keys.Shape().EqualDimensions(x.Shape()) {
		return nil, errShapeMismatch("ScanByKey", keys.Shape(), x.Shape())
	}

	outer, axisDim, inner := axisExtents(x.Shape(), axis)
	numLines := outer * inner
	var boundaries []bool
	switch keys.DType() {
	case dtypes.Int8:
		boundaries = scanBoundaries(buffers.FlatData[int8](keys), axisDim, inner, numLines)
	case dtypes.Int16:
		boundaries = scanBoundaries(buffers.FlatData[int16](keys), axisDim, inner, numLines)
	case dtypes.Int32:
		boundaries = scanBoundaries(buffers.FlatData[int32](keys), axisDim, inner, numLines)
	case dtypes.Int64:
		boundaries = scanBoundaries(buffers.FlatData[int64](keys), axisDim, inner, numLines)
	case dtypes.Uint8:
		boundaries = scanBoundaries(buffers.FlatData[uint8](keys), axisDim, inner, numLines)
	case dtypes.Uint16:
		boundaries = scanBoundaries(buffers.FlatData[uint16](keys), axisDim, inner, numLines)
	case dtypes.Uint32:
		boundaries = scanBoundaries(buffers.FlatData[uint32](keys), axisDim, inner, numLines)
	case dtypes.Uint64:
		boundaries = scanBoundaries(buffers.FlatData[uint64](keys), axisDim, inner, numLines)
	}
	return scanWithBoundaries(x, axis, op, inclusive, boundaries)
}

// scanWithBoundaries runs the scan proper. boundaries marks flat positions where
// the running value resets to the identity (nil for an unsegmented scan); it is
// precomputed once so the value kernels stay independent of the key dtype.
func scanWithBoundaries(x *buffers.Buffer, axis int, op ReduceOp, inclusive bool, boundaries []bool) (*buffers.Buffer, error) {
	dtype := x.DType()
	if dtype.IsFloat16() {
		out, err := scanWithBoundaries(toFloat32(x), axis, op, inclusive, boundaries)
		if err != nil {
			return nil, err
		}
		return fromFloat32(out, dtype), nil
	}

	out := buffers.FromShape(x.Shape().Clone())
	outer, axisDim, inner := axisExtents(x.Shape(), axis)
	numLines := outer * inner
	switch dtype {
	case dtypes.Bool:
		scanLines(buffers.FlatData[bool](x), buffers.FlatData[bool](out), axisDim, inner, numLines,
			op == OpAnd, boolCombine(op), inclusive, boundaries)
	case dtypes.Int8:
		scanNumericLines(op, buffers.FlatData[int8](x), buffers.FlatData[int8](out), axisDim, inner, numLines, inclusive, boundaries)
	case dtypes.Int16:
		scanNumericLines(op, buffers.FlatData[int16](x), buffers.FlatData[int16](out), axisDim, inner, numLines, inclusive, boundaries)
	case dtypes.Int32:
		scanNumericLines(op, buffers.FlatData[int32](x), buffers.FlatData[int32](out), axisDim, inner, numLines, inclusive, boundaries)
	case dtypes.Int64:
		scanNumericLines(op, buffers.FlatData[int64](x), buffers.FlatData[int64](out), axisDim, inner, numLines, inclusive, boundaries)
	case dtypes.Uint8:
		scanNumericLines(op, buffers.FlatData[uint8](x), buffers.FlatData[uint8](out), axisDim, inner, numLines, inclusive, boundaries)
	case dtypes.Uint16:
		scanNumericLines(op, buffers.FlatData[uint16](x), buffers.FlatData[uint16](out), axisDim, inner, numLines, inclusive, boundaries)
	case dtypes.Uint32:
		scanNumericLines(op, buffers.FlatData[uint32](x), buffers.FlatData[uint32](out), axisDim, inner, numLines, inclusive, boundaries)
	case dtypes.Uint64:
		scanNumericLines(op, buffers.FlatData[uint64](x), buffers.FlatData[uint64](out), axisDim, inner, numLines, inclusive, boundaries)
	case dtypes.Float32:
		scanNumericLines(op, buffers.FlatData[float32](x), buffers.FlatData[float32](out), axisDim, inner, numLines, inclusive, boundaries)
	case dtypes.Float64:
		scanNumericLines(op, buffers.FlatData[float64](x), buffers.FlatData[float64](out), axisDim, inner, numLines, inclusive, boundaries)
	case dtypes.Complex64:
		scanComplexLines(op, buffers.FlatData[complex64](x), buffers.FlatData[complex64](out), axisDim, inner, numLines, inclusive, boundaries)
	case dtypes.Complex128:
		scanComplexLines(op, buffers.FlatData[complex128](x), buffers.FlatData[complex128](out), axisDim, inner, numLines, inclusive, boundaries)
	default:
		return nil, errUnsupportedDType("Scan"+op.String(), dtype)
	}
	return out, nil
}

// scanBoundaries marks the flat positions that start a new segment: the first
// element of each line and every position whose key differs from the previous
// one along the axis.
func scanBoundaries[K comparable](keys []K, axisDim, inner, numLines int) []bool {
	boundaries := make([]bool, len(keys))
	if axisDim == 0 {
		// Lines are empty, there is no first element to seed.
		return boundaries
	}
	parallelFor(numLines, axisDim, func(line int) {
		pos := lineStart(line, axisDim, inner)
		boundaries[pos] = true
		prev := keys[pos]
		pos += inner
		for k := 1; k < axisDim; k++ {
			v := keys[pos]
			if v != prev {
				boundaries[pos] = true
			}
			prev = v
			pos += inner
		}
	})
	return boundaries
}

// scanLines is the shared scan loop. Walking a line, the accumulator resets to
// identity at every boundary position; inclusive scans store the accumulator
// after combining the current element, exclusive scans before.
func scanLines[T any](x, out []T, axisDim, inner, numLines int, identity T, combine func(a, b T) T, inclusive bool, boundaries []bool) {
	parallelFor(numLines, axisDim, func(line int) {
		pos := lineStart(line, axisDim, inner)
		acc := identity
		for _i := 0; _i < axisDim; _i++ {
			if boundaries != nil && boundaries[pos] {
				acc = identity
			}
			if inclusive {
				acc = combine(acc, x[pos])
				out[pos] = acc
			} else {
				out[pos] = acc
				acc = combine(acc, x[pos])
			}
			pos += inner
		}
	})
}

func scanNumericLines[T dtypes.NumberNotComplex](op ReduceOp, x, out []T, axisDim, inner, numLines int, inclusive bool, boundaries []bool) {
	var identity T
	var combine func(a, b T) T
	switch op {
	case OpAdd:
		combine = func(a, b T) T { return a + b }
	case OpMultiply:
		identity = 1
		combine = func(a, b T) T { return a * b }
	case OpMin:
		identity = dtypes.FromGenericsType[T]().HighestValue().(T)
		combine = func(a, b T) T {
			if b < a {
				return b
			}
			return a
		}
	case OpMax:
		identity = dtypes.FromGenericsType[T]().LowestValue().(T)
		combine = func(a, b T) T {
			if b > a {
				return b
			}
			return a
		}
	}
	scanLines(x, out, axisDim, inner, numLines, identity, combine, inclusive, boundaries)
}

// scanComplexLines handles the complex dtypes. The caller guarantees op is OpAdd
// or OpMultiply.
func scanComplexLines[T goComplex](op ReduceOp, x, out []T, axisDim, inner, numLines int, inclusive bool, boundaries []bool) {
	var identity T
	var combine func(a, b T) T
	if op == OpMultiply {
		identity = 1
		combine = func(a, b T) T { return a * b }
	} else {
		combine = func(a, b T) T { return a + b }
	}
	scanLines(x, out, axisDim, inner, numLines, identity, combine, inclusive, boundaries)
}

func boolCombine(op ReduceOp) func(a, b bool) bool {
	if op == OpAnd {
		return func(a, b bool) bool { return a && b }
	}
	return func(a, b bool) bool { return a || b }
}
