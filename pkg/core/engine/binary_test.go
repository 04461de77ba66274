// Copyright 2025-2026 The NDKit Authors. SPDX-License-Identifier: Apache-2.0

package engine

import (
	"math"
	"testing"

	"github.com/ndkit/ndkit/pkg/core/buffers"
	"github.com/ndkit/ndkit/pkg/core/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestAddSubMul(t *testing.T) {
	a := buffers.FromFlatDataAndDimensions([]int32{1, 2, 3}, 3)
	b := buffers.FromFlatDataAndDimensions([]int32{10, -20, 30}, 3)

	got, err := Add(a, b)
	require.NoError(t, err)
	assert.Equal(t, []int32{11, -18, 33}, buffers.CopyFlatData[int32](got))

	got, err = Sub(a, b)
	require.NoError(t, err)
	assert.Equal(t, []int32{-9, 22, -27}, buffers.CopyFlatData[int32](got))

	got, err = Mul(a, b)
	require.NoError(t, err)
	assert.Equal(t, []int32{10, -40, 90}, buffers.CopyFlatData[int32](got))

	c1 := buffers.FromFlatDataAndDimensions([]complex128{1 + 1i}, 1)
	c2 := buffers.FromFlatDataAndDimensions([]complex128{2i}, 1)
	got, err = Mul(c1, c2)
	require.NoError(t, err)
	assert.Equal(t, []complex128{-2 + 2i}, buffers.CopyFlatData[complex128](got))
}

func TestDiv(t *testing.T) {
	a := buffers.FromFlatDataAndDimensions([]int32{10, 7, 5}, 3)
	b := buffers.FromFlatDataAndDimensions([]int32{2, 0, 3}, 3)

	// Integer division by zero yields 0, it doesn't fault.
	got, err := Div(a, b)
	require.NoError(t, err)
	assert.Equal(t, []int32{5, 0, 1}, buffers.CopyFlatData[int32](got))

	// Floats follow IEEE.
	fa := buffers.FromFlatDataAndDimensions([]float64{1, -1, 0}, 3)
	fb := buffers.FromFlatDataAndDimensions([]float64{0, 0, 0}, 3)
	got, err = Div(fa, fb)
	require.NoError(t, err)
	flat := buffers.CopyFlatData[float64](got)
	assert.True(t, math.IsInf(flat[0], 1))
	assert.True(t, math.IsInf(flat[1], -1))
	assert.True(t, math.IsNaN(flat[2]))
}

func TestMinofMaxof(t *testing.T) {
	a := buffers.FromFlatDataAndDimensions([]float32{1, 5, -2}, 3)
	b := buffers.FromFlatDataAndDimensions([]float32{3, 4, -7}, 3)

	got, err := Minof(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 4, -7}, buffers.CopyFlatData[float32](got))

	got, err = Maxof(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 5, -2}, buffers.CopyFlatData[float32](got))

	c := buffers.FromFlatDataAndDimensions([]complex64{1}, 1)
	_, err = Minof(c, c)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestComparisons(t *testing.T) {
	a := buffers.FromFlatDataAndDimensions([]float64{1, 2, math.NaN()}, 3)
	b := buffers.FromFlatDataAndDimensions([]float64{1, 1, math.NaN()}, 3)

	got, err := Eq(a, b)
	require.NoError(t, err)
	require.Equal(t, dtypes.Bool, got.DType())
	// NaN != NaN.
	assert.Equal(t, []bool{true, false, false}, buffers.CopyFlatData[bool](got))

	got, err = Lt(a, b)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, false}, buffers.CopyFlatData[bool](got))

	got, err = Gt(a, b)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, false}, buffers.CopyFlatData[bool](got))

	// Eq takes any dtype, Lt only ordered ones.
	ba := buffers.FromFlatDataAndDimensions([]bool{true, false}, 2)
	bb := buffers.FromFlatDataAndDimensions([]bool{true, true}, 2)
	got, err = Eq(ba, bb)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, buffers.CopyFlatData[bool](got))
	_, err = Lt(ba, bb)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestBinaryValidation(t *testing.T) {
	a := buffers.FromFlatDataAndDimensions([]int32{1, 2}, 2)
	b := buffers.FromFlatDataAndDimensions([]int32{1, 2, 3}, 3)
	_, err := Add(a, b)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	c := buffers.FromFlatDataAndDimensions([]int64{1, 2}, 2)
	_, err = Add(a, c)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	boolBuf := buffers.FromFlatDataAndDimensions([]bool{true, false}, 2)
	_, err = Add(boolBuf, boolBuf)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestBinaryFloat16(t *testing.T) {
	a := buffers.FromFlatDataAndDimensions(f16Slice(1.5, 2), 2)
	b := buffers.FromFlatDataAndDimensions(f16Slice(0.25, -1), 2)
	got, err := Add(a, b)
	require.NoError(t, err)
	require.Equal(t, dtypes.Float16, got.DType())
	assert.Equal(t, f16Slice(1.75, 1), buffers.CopyFlatData[float16.Float16](got))
}
