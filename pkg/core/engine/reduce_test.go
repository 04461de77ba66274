// Copyright 2025-2026 The NDKit Authors. SPDX-License-Identifier: Apache-2.0

package engine

import (
	"math"
	"testing"

	"github.com/ndkit/ndkit/pkg/core/buffers"
	"github.com/ndkit/ndkit/pkg/core/dtypes"
	"github.com/ndkit/ndkit/pkg/core/shapes"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestSum(t *testing.T) {
	x := buffers.FromFlatDataAndDimensions([]int32{1, 2, 3, 4, 5, 6}, 2, 3)

	got, err := Sum(x, 0)
	require.NoError(t, err)
	assert.Equal(t, shapes.Make(dtypes.Int32, 1, 3), got.Shape())
	assert.Equal(t, []int32{5, 7, 9}, buffers.CopyFlatData[int32](got))

	got, err = Sum(x, 1)
	require.NoError(t, err)
	assert.Equal(t, shapes.Make(dtypes.Int32, 2, 1), got.Shape())
	assert.Equal(t, []int32{6, 15}, buffers.CopyFlatData[int32](got))

	// Middle axis of a rank-3 buffer: lines are strided.
	y := buffers.FromFlatDataAndDimensions([]float64{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,

		13, 14, 15, 16,
		17, 18, 19, 20,
		21, 22, 23, 24,
	}, 2, 3, 4)
	got, err = Sum(y, 1)
	require.NoError(t, err)
	assert.Equal(t, shapes.Make(dtypes.Float64, 2, 1, 4), got.Shape())
	assert.Equal(t, []float64{15, 18, 21, 24, 51, 54, 57, 60}, buffers.CopyFlatData[float64](got))

	_, err = Sum(x, 2)
	assert.ErrorIs(t, err, ErrInvalidAxis)
	_, err = Sum(buffers.FromFlatDataAndDimensions([]bool{true, false}, 2), 0)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestProduct(t *testing.T) {
	x := buffers.FromFlatDataAndDimensions([]float32{1, 2, 3, 4, 5, 6}, 2, 3)
	got, err := Product(x, 1)
	require.NoError(t, err)
	assert.Equal(t, []float32{6, 120}, buffers.CopyFlatData[float32](got))

	// Reducing an axis of dimension 0 yields the identity.
	empty := buffers.FromShape(shapes.Make(dtypes.Float32, 2, 0))
	got, err = Product(empty, 1)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 1}, buffers.CopyFlatData[float32](got))
	got, err = Sum(empty, 1)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0}, buffers.CopyFlatData[float32](got))
}

func TestMinMax(t *testing.T) {
	x := buffers.FromFlatDataAndDimensions([]int8{3, -1, 2, 7, 0, -5}, 2, 3)

	got, err := Min(x, 1)
	require.NoError(t, err)
	assert.Equal(t, []int8{-1, -5}, buffers.CopyFlatData[int8](got))

	got, err = Max(x, 0)
	require.NoError(t, err)
	assert.Equal(t, []int8{7, 0, 2}, buffers.CopyFlatData[int8](got))

	// Min/Max have no identity: a zero-size axis is an error.
	empty := buffers.FromShape(shapes.Make(dtypes.Int8, 2, 0))
	_, err = Min(empty, 1)
	assert.ErrorIs(t, err, ErrEmptyInput)
	_, err = Max(empty, 1)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = Min(buffers.FromFlatDataAndDimensions([]complex64{1, 2}, 2), 0)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestSumComplex(t *testing.T) {
	x := buffers.FromFlatDataAndDimensions([]complex128{1 + 2i, 3 - 1i, -2 + 0.5i}, 3)
	got, err := Sum(x, 0)
	require.NoError(t, err)
	assert.Equal(t, []complex128{2 + 1.5i}, buffers.CopyFlatData[complex128](got))
}

func TestSumFloat16(t *testing.T) {
	x := buffers.FromFlatDataAndDimensions(f16Slice(1.5, 2.25, 3), 3)
	got, err := Sum(x, 0)
	require.NoError(t, err)
	require.Equal(t, dtypes.Float16, got.DType())
	assert.Equal(t, f16Slice(6.75), buffers.CopyFlatData[float16.Float16](got))
}

func TestSumNaN(t *testing.T) {
	nan := math.NaN()
	x := buffers.FromFlatDataAndDimensions([]float64{1, nan, 3, nan}, 4)

	got, err := SumNaN(x, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{4}, buffers.CopyFlatData[float64](got))

	got, err = ProductNaN(x, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, buffers.CopyFlatData[float64](got))

	// Integers have no NaN to substitute.
	xi := buffers.FromFlatDataAndDimensions([]int32{1, 2}, 2)
	got, err = SumNaN(xi, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, []int32{3}, buffers.CopyFlatData[int32](got))
}

func TestCountAllAny(t *testing.T) {
	x := buffers.FromFlatDataAndDimensions([]float32{0, 1, 2, 0, 0, 3}, 2, 3)

	count, err := Count(x, 1)
	require.NoError(t, err)
	require.Equal(t, dtypes.Uint32, count.DType())
	assert.Equal(t, []uint32{2, 1}, buffers.CopyFlatData[uint32](count))

	all, err := All(x, 1)
	require.NoError(t, err)
	require.Equal(t, dtypes.Bool, all.DType())
	assert.Equal(t, []bool{false, false}, buffers.CopyFlatData[bool](all))

	anyNonzero, err := Any(x, 1)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true}, buffers.CopyFlatData[bool](anyNonzero))

	// NaN is nonzero.
	xNaN := buffers.FromFlatDataAndDimensions([]float64{math.NaN(), 0}, 2)
	n, err := CountAll(xNaN)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestReduceAll(t *testing.T) {
	x := buffers.FromFlatDataAndDimensions([]int64{4, -2, 10, 1}, 2, 2)

	re, im, err := SumAll(x)
	require.NoError(t, err)
	assert.Equal(t, 13.0, re)
	assert.Zero(t, im)

	re, _, err = MinAll(x)
	require.NoError(t, err)
	assert.Equal(t, -2.0, re)

	re, _, err = MaxAll(x)
	require.NoError(t, err)
	assert.Equal(t, 10.0, re)

	re, im, err = ProductAll(buffers.FromFlatDataAndDimensions([]complex64{1 + 1i, 2i}, 2))
	require.NoError(t, err)
	assert.InDelta(t, -2.0, re, 1e-6)
	assert.InDelta(t, 2.0, im, 1e-6)

	_, _, err = MinAll(buffers.FromShape(shapes.Make(dtypes.Float32, 0)))
	assert.ErrorIs(t, err, ErrEmptyInput)

	ok, err := AllAll(buffers.FromFlatDataAndDimensions([]uint8{1, 2, 3}, 3))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = AnyAll(buffers.FromShape(shapes.Make(dtypes.Uint8, 0)))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWhere(t *testing.T) {
	x := buffers.FromFlatDataAndDimensions([]int32{0, 5, 0, 0, 7, 1}, 2, 3)
	got, err := Where(x)
	require.NoError(t, err)
	require.Equal(t, shapes.Make(dtypes.Uint32, 3), got.Shape())
	assert.Equal(t, []uint32{1, 4, 5}, buffers.CopyFlatData[uint32](got))

	got, err = Where(buffers.FromScalarAndDimensions(int32(0), 4))
	require.NoError(t, err)
	assert.Zero(t, got.Size())
}

func TestReduceBool(t *testing.T) {
	x := buffers.FromFlatDataAndDimensions([]bool{true, true, false, true}, 2, 2)
	got, err := Reduce(x, 1, OpAnd)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, buffers.CopyFlatData[bool](got))

	got, err = Reduce(x, 1, OpOr)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true}, buffers.CopyFlatData[bool](got))

	_, err = Reduce(x, 1, OpAdd)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestReduceErrorsWrap(t *testing.T) {
	// Errors stay inspectable after further wrapping.
	x := buffers.FromFlatDataAndDimensions([]int32{1}, 1)
	_, err := Sum(x, 3)
	wrapped := errors.WithMessage(err, "while aggregating")
	assert.ErrorIs(t, wrapped, ErrInvalidAxis)
}
