// Copyright 2025-2026 The NDKit Authors. SPDX-License-Identifier: Apache-2.0

package engine

import (
	"cmp"
	"slices"

	"github.com/ndkit/ndkit/pkg/core/buffers"
	"github.com/ndkit/ndkit/pkg/core/dtypes"
	"github.com/ndkit/ndkit/pkg/core/dtypes/bfloat16"
	"github.com/x448/float16"
)

// Sort returns x with each line along the given axis sorted, in ascending
// order when ascending is true and descending otherwise. The sort is stable:
// equal elements keep their original relative order, which makes SortWithIndex
// and SortByKey deterministic.
//
// Ordered dtypes only. NaN sorts before every other value ascending (hence
// after, descending).
func Sort(x *buffers.Buffer, axis int, ascending bool) (*buffers.Buffer, error) {
	if err := checkAxis(x, axis); err != nil {
		return nil, err
	}
	if !x.DType().IsOrdered() {
		return nil, errUnsupportedDType("Sort", x.DType())
	}
	return sortValues(x, axis, nil, ascending)
}

// SortWithIndex is Sort returning also the permutation applied: indices has the
// same dimensions as x, with dtype Uint32, and indices[..., k, ...] is the
// position on the axis the k-th sorted element came from.
func SortWithIndex(x *buffers.Buffer, axis int, ascending bool) (values, indices *buffers.Buffer, err error) {
	if err = checkAxis(x, axis); err != nil {
		return
	}
	if !x.DType().IsOrdered() {
		err = errUnsupportedDType("SortWithIndex", x.DType())
		return
	}
	indicesShape := x.Shape().Clone()
	indicesShape.DType = dtypes.Uint32
	indices = buffers.FromShape(indicesShape)
	values, err = sortValues(x, axis, buffers.FlatData[uint32](indices), ascending)
	if err != nil {
		indices = nil
	}
	return
}

// SortByKey sorts keys along the given axis and reorders values by the same
// permutation. Keys must be an ordered dtype; values can be any dtype with the
// same dimensions. Stability makes the result deterministic under repeated keys.
func SortByKey(keys, values *buffers.Buffer, axis int, ascending bool) (sortedKeys, sortedValues *buffers.Buffer, err error) {
	if err = checkAxis(keys, axis); err != nil {
		return
	}
	if !keys.DType().IsOrdered() {
		err = errUnsupportedDType("SortByKey keys", keys.DType())
		return
	}
	if !keys.Shape().EqualDimensions(values.Shape()) {
		err = errShapeMismatch("SortByKey", keys.Shape(), values.Shape())
		return
	}

	perm := make([]uint32, keys.Size())
	sortedKeys, err = sortValues(keys, axis, perm, ascending)
	if err != nil {
		return
	}
	sortedValues = buffers.FromShape(values.Shape().Clone())
	outer, axisDim, inner := axisExtents(values.Shape(), axis)
	err = gatherDispatch("SortByKey", values, sortedValues, perm, axisDim, inner, outer*inner)
	if err != nil {
		sortedKeys, sortedValues = nil, nil
	}
	return
}

// sortValues sorts x along axis into a fresh buffer. When perm is non-nil it
// receives, per flat position, the axis position the sorted element came from.
// The caller has validated axis and dtype.
func sortValues(x *buffers.Buffer, axis int, perm []uint32, ascending bool) (*buffers.Buffer, error) {
	dtype := x.DType()
	if dtype.IsFloat16() {
		// Sorting on the float32 image is order-preserving, and the roundtrip
		// back to 16 bits is exact.
		out, err := sortValues(toFloat32(x), axis, perm, ascending)
		if err != nil {
			return nil, err
		}
		return fromFloat32(out, dtype), nil
	}

	out := buffers.FromShape(x.Shape().Clone())
	outer, axisDim, inner := axisExtents(x.Shape(), axis)
	numLines := outer * inner
	switch dtype {
	case dtypes.Int8:
		sortLines(buffers.FlatData[int8](x), buffers.FlatData[int8](out), perm, axisDim, inner, numLines, ascending)
	case dtypes.Int16:
		sortLines(buffers.FlatData[int16](x), buffers.FlatData[int16](out), perm, axisDim, inner, numLines, ascending)
	case dtypes.Int32:
		sortLines(buffers.FlatData[int32](x), buffers.FlatData[int32](out), perm, axisDim, inner, numLines, ascending)
	case dtypes.Int64:
		sortLines(buffers.FlatData[int64](x), buffers.FlatData[int64](out), perm, axisDim, inner, numLines, ascending)
	case dtypes.Uint8:
		sortLines(buffers.FlatData[uint8](x), buffers.FlatData[uint8](out), perm, axisDim, inner, numLines, ascending)
	case dtypes.Uint16:
		sortLines(buffers.FlatData[uint16](x), buffers.FlatData[uint16](out), perm, axisDim, inner, numLines, ascending)
	case dtypes.Uint32:
		sortLines(buffers.FlatData[uint32](x), buffers.FlatData[uint32](out), perm, axisDim, inner, numLines, ascending)
	case dtypes.Uint64:
		sortLines(buffers.FlatData[uint64](x), buffers.FlatData[uint64](out), perm, axisDim, inner, numLines, ascending)
	case dtypes.Float32:
		sortLines(buffers.FlatData[float32](x), buffers.FlatData[float32](out), perm, axisDim, inner, numLines, ascending)
	case dtypes.Float64:
		sortLines(buffers.FlatData[float64](x), buffers.FlatData[float64](out), perm, axisDim, inner, numLines, ascending)
	default:
		return nil, errUnsupportedDType("Sort", dtype)
	}
	return out, nil
}

// sortLines sorts each line by indirection: an index permutation is stably
// sorted comparing the line's values, then values (and optionally the
// permutation itself) are written out. Lines are strided, so each is gathered
// into a scratch slice first.
//
// cmp.Compare orders NaN below every other value, including -Inf.
func sortLines[T cmp.Ordered](x, out []T, perm []uint32, axisDim, inner, numLines int, ascending bool) {
	// Sorting costs more than the axisDim element visits of other kernels;
	// inflate the per-task cost so parallelism kicks in sooner.
	parallelFor(numLines, 4*axisDim, func(line int) {
		start := lineStart(line, axisDim, inner)
		scratch := make([]T, axisDim)
		order := make([]uint32, axisDim)
		pos := start
		for k := range scratch {
			scratch[k] = x[pos]
			order[k] = uint32(k)
			pos += inner
		}
		slices.SortStableFunc(order, func(a, b uint32) int {
			c := cmp.Compare(scratch[a], scratch[b])
			if !ascending {
				c = -c
			}
			return c
		})
		pos = start
		for k := range scratch {
			out[pos] = scratch[order[k]]
			if perm != nil {
				perm[pos] = order[k]
			}
			pos += inner
		}
	})
}

// gatherLines reorders each line of src into dst following perm, which holds for
// every flat position the source position on the axis (as produced by
// sortLines).
func gatherLines[V any](src, dst []V, perm []uint32, axisDim, inner, numLines int) {
	parallelFor(numLines, axisDim, func(line int) {
		start := lineStart(line, axisDim, inner)
		pos := start
		for _i := 0; _i < axisDim; _i++ {
			dst[pos] = src[start+int(perm[pos])*inner]
			pos += inner
		}
	})
}

// gatherDispatch moves elements only, so every dtype is accepted, half floats
// and complex included.
func gatherDispatch(opName string, src, dst *buffers.Buffer, perm []uint32, axisDim, inner, numLines int) error {
	switch src.DType() {
	case dtypes.Bool:
		gatherLines(buffers.FlatData[bool](src), buffers.FlatData[bool](dst), perm, axisDim, inner, numLines)
	case dtypes.Int8:
		gatherLines(buffers.FlatData[int8](src), buffers.FlatData[int8](dst), perm, axisDim, inner, numLines)
	case dtypes.Int16:
		gatherLines(buffers.FlatData[int16](src), buffers.FlatData[int16](dst), perm, axisDim, inner, numLines)
	case dtypes.Int32:
		gatherLines(buffers.FlatData[int32](src), buffers.FlatData[int32](dst), perm, axisDim, inner, numLines)
	case dtypes.Int64:
		gatherLines(buffers.FlatData[int64](src), buffers.FlatData[int64](dst), perm, axisDim, inner, numLines)
	case dtypes.Uint8:
		gatherLines(buffers.FlatData[uint8](src), buffers.FlatData[uint8](dst), perm, axisDim, inner, numLines)
	case dtypes.Uint16:
		gatherLines(buffers.FlatData[uint16](src), buffers.FlatData[uint16](dst), perm, axisDim, inner, numLines)
	case dtypes.Uint32:
		gatherLines(buffers.FlatData[uint32](src), buffers.FlatData[uint32](dst), perm, axisDim, inner, numLines)
	case dtypes.Uint64:
		gatherLines(buffers.FlatData[uint64](src), buffers.FlatData[uint64](dst), perm, axisDim, inner, numLines)
	case dtypes.Float16:
		gatherLines(buffers.FlatData[float16.Float16](src), buffers.FlatData[float16.Float16](dst), perm, axisDim, inner, numLines)
	case dtypes.BFloat16:
		gatherLines(buffers.FlatData[bfloat16.BFloat16](src), buffers.FlatData[bfloat16.BFloat16](dst), perm, axisDim, inner, numLines)
	case dtypes.Float32:
		gatherLines(buffers.FlatData[float32](src), buffers.FlatData[float32](dst), perm, axisDim, inner, numLines)
	case dtypes.Float64:
		gatherLines(buffers.FlatData[float64](src), buffers.FlatData[float64](dst), perm, axisDim, inner, numLines)
	case dtypes.Complex64:
		gatherLines(buffers.FlatData[complex64](src), buffers.FlatData[complex64](dst), perm, axisDim, inner, numLines)
	case dtypes.Complex128:
		gatherLines(buffers.FlatData[complex128](src), buffers.FlatData[complex128](dst), perm, axisDim, inner, numLines)
	default:
		return errUnsupportedDType(opName, src.DType())
	}
	return nil
}
