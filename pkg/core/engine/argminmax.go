// Copyright 2025-2026 The NDKit Authors. SPDX-License-Identifier: Apache-2.0

package engine

import (
	"github.com/ndkit/ndkit/pkg/core/buffers"
	"github.com/ndkit/ndkit/pkg/core/dtypes"
)

// ArgMin returns, for each line along the given axis, the smallest element and
// its position on the axis. Both results have the keep-dims reduced shape:
// values with x's dtype, indices as Uint32.
//
// Ties resolve to the first occurrence along the axis. Ordered dtypes only;
// a zero-size axis returns ErrEmptyInput.
func ArgMin(x *buffers.Buffer, axis int) (values, indices *buffers.Buffer, err error) {
	return argMinMax("ArgMin", x, axis, false)
}

// ArgMax is the counterpart of ArgMin for the largest element.
func ArgMax(x *buffers.Buffer, axis int) (values, indices *buffers.Buffer, err error) {
	return argMinMax("ArgMax", x, axis, true)
}

func argMinMax(opName string, x *buffers.Buffer, axis int, wantMax bool) (values, indices *buffers.Buffer, err error) {
	if err = checkAxis(x, axis); err != nil {
		return
	}
	dtype := x.DType()
	if !dtype.IsOrdered() {
		err = errUnsupportedDType(opName, dtype)
		return
	}
	if x.Shape().Dimensions[axis] == 0 {
		err = errEmptyInput(opName)
		return
	}
	if dtype.IsFloat16() {
		values, indices, err = argMinMax(opName, toFloat32(x), axis, wantMax)
		if err != nil {
			return
		}
		values = fromFloat32(values, dtype)
		return
	}

	values = buffers.FromShape(reducedShape(x.Shape(), axis))
	indicesShape := reducedShape(x.Shape(), axis)
	indicesShape.DType = dtypes.Uint32
	indices = buffers.FromShape(indicesShape)
	indicesFlat := buffers.FlatData[uint32](indices)
	outer, axisDim, inner := axisExtents(x.Shape(), axis)
	numLines := outer * inner
	switch dtype {
	case dtypes.Int8:
		argMinMaxLines(buffers.FlatData[int8](x), buffers.FlatData[int8](values), indicesFlat, axisDim, inner, numLines, wantMax)
	case dtypes.Int16:
		argMinMaxLines(buffers.FlatData[int16](x), buffers.FlatData[int16](values), indicesFlat, axisDim, inner, numLines, wantMax)
	case dtypes.Int32:
		argMinMaxLines(buffers.FlatData[int32](x), buffers.FlatData[int32](values), indicesFlat, axisDim, inner, numLines, wantMax)
	case dtypes.Int64:
		argMinMaxLines(buffers.FlatData[int64](x), buffers.FlatData[int64](values), indicesFlat, axisDim, inner, numLines, wantMax)
	case dtypes.Uint8:
		argMinMaxLines(buffers.FlatData[uint8](x), buffers.FlatData[uint8](values), indicesFlat, axisDim, inner, numLines, wantMax)
	case dtypes.Uint16:
		argMinMaxLines(buffers.FlatData[uint16](x), buffers.FlatData[uint16](values), indicesFlat, axisDim, inner, numLines, wantMax)
	case dtypes.Uint32:
		argMinMaxLines(buffers.FlatData[uint32](x), buffers.FlatData[uint32](values), indicesFlat, axisDim, inner, numLines, wantMax)
	case dtypes.Uint64:
		argMinMaxLines(buffers.FlatData[uint64](x), buffers.FlatData[uint64](values), indicesFlat, axisDim, inner, numLines, wantMax)
	case dtypes.Float32:
		argMinMaxLines(buffers.FlatData[float32](x), buffers.FlatData[float32](values), indicesFlat, axisDim, inner, numLines, wantMax)
	case dtypes.Float64:
		argMinMaxLines(buffers.FlatData[float64](x), buffers.FlatData[float64](values), indicesFlat, axisDim, inner, numLines, wantMax)
	default:
		values, indices = nil, nil
		err = errUnsupportedDType(opName, dtype)
	}
	return
}

// ArgMinAll returns the smallest element of x and the flat (row-major) index of
// its first occurrence. The value is reported as a (real, imaginary) float64
// pair for symmetry with the global reductions; imaginary is always 0 since only
// ordered dtypes are accepted.
func ArgMinAll(x *buffers.Buffer) (re, im float64, index int, err error) {
	return argMinMaxAll("ArgMinAll", x, false)
}

// ArgMaxAll is the counterpart of ArgMinAll for the largest element.
func ArgMaxAll(x *buffers.Buffer) (re, im float64, index int, err error) {
	return argMinMaxAll("ArgMaxAll", x, true)
}

func argMinMaxAll(opName string, x *buffers.Buffer, wantMax bool) (re, im float64, index int, err error) {
	x.AssertValid()
	dtype := x.DType()
	if !dtype.IsOrdered() {
		err = errUnsupportedDType(opName, dtype)
		return
	}
	if x.Shape().IsZeroSize() {
		err = errEmptyInput(opName)
		return
	}
	if dtype.IsFloat16() {
		return argMinMaxAll(opName, toFloat32(x), wantMax)
	}

	var idx uint32
	switch dtype {
	case dtypes.Int8:
		re, idx = argMinMaxFlat(buffers.FlatData[int8](x), wantMax)
	case dtypes.Int16:
		re, idx = argMinMaxFlat(buffers.FlatData[int16](x), wantMax)
	case dtypes.Int32:
		re, idx = argMinMaxFlat(buffers.FlatData[int32](x), wantMax)
	case dtypes.Int64:
		re, idx = argMinMaxFlat(buffers.FlatData[int64](x), wantMax)
	case dtypes.Uint8:
		re, idx = argMinMaxFlat(buffers.FlatData[uint8](x), wantMax)
	case dtypes.Uint16:
		re, idx = argMinMaxFlat(buffers.FlatData[uint16](x), wantMax)
	case dtypes.Uint32:
		re, idx = argMinMaxFlat(buffers.FlatData[uint32](x), wantMax)
	case dtypes.Uint64:
		re, idx = argMinMaxFlat(buffers.FlatData[uint64](x), wantMax)
	case dtypes.Float32:
		re, idx = argMinMaxFlat(buffers.FlatData[float32](x), wantMax)
	case dtypes.Float64:
		re, idx = argMinMaxFlat(buffers.FlatData[float64](x), wantMax)
	default:
		err = errUnsupportedDType(opName, dtype)
		return
	}
	index = int(idx)
	return
}

// argMinMaxLines finds the extreme of each line and its position on the axis.
// The best element is seeded from the line's first value and replaced only on a
// strict comparison, so ties keep the earliest index. NaN in the seed position
// sticks; elsewhere NaN loses every comparison.
func argMinMaxLines[T dtypes.NumberNotComplex](x, values []T, indices []uint32, axisDim, inner, numLines int, wantMax bool) {
	parallelFor(numLines, axisDim, func(line int) {
		pos := lineStart(line, axisDim, inner)
		best := x[pos]
		var bestIdx uint32
		pos += inner
		for k := 1; k < axisDim; k++ {
			v := x[pos]
			if (wantMax && v > best) || (!wantMax && v < best) {
				best = v
				bestIdx = uint32(k)
			}
			pos += inner
		}
		values[line] = best
		indices[line] = bestIdx
	})
}

func argMinMaxFlat[T dtypes.NumberNotComplex](flat []T, wantMax bool) (float64, uint32) {
	var values [1]T
	var indices [1]uint32
	argMinMaxLines(flat, values[:], indices[:], len(flat), 1, 1, wantMax)
	return float64(values[0]), indices[0]
}
