// Copyright 2025-2026 The NDKit Authors. SPDX-License-Identifier: Apache-2.0

package engine

import (
	"math"
	"testing"

	"github.com/ndkit/ndkit/pkg/core/buffers"
	"github.com/ndkit/ndkit/pkg/core/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeg(t *testing.T) {
	x := buffers.FromFlatDataAndDimensions([]int32{1, -2, 0}, 3)
	got, err := Neg(x)
	require.NoError(t, err)
	assert.Equal(t, []int32{-1, 2, 0}, buffers.CopyFlatData[int32](got))

	c := buffers.FromFlatDataAndDimensions([]complex64{1 + 2i, -3i}, 2)
	got, err = Neg(c)
	require.NoError(t, err)
	assert.Equal(t, []complex64{-1 - 2i, 3i}, buffers.CopyFlatData[complex64](got))

	b := buffers.FromFlatDataAndDimensions([]bool{true}, 1)
	_, err = Neg(b)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestAbs(t *testing.T) {
	x := buffers.FromFlatDataAndDimensions([]float64{-1.5, 2, -0.0}, 3)
	got, err := Abs(x)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2, 0}, buffers.CopyFlatData[float64](got))

	// Complex magnitude lands on the matching real dtype.
	c := buffers.FromFlatDataAndDimensions([]complex64{3 + 4i, -5}, 2)
	got, err = Abs(c)
	require.NoError(t, err)
	require.Equal(t, dtypes.Float32, got.DType())
	assert.Equal(t, []float32{5, 5}, buffers.CopyFlatData[float32](got))
}

func TestSign(t *testing.T) {
	x := buffers.FromFlatDataAndDimensions([]float32{-3, 0, 7, float32(math.NaN())}, 4)
	got, err := Sign(x)
	require.NoError(t, err)
	assert.Equal(t, []float32{-1, 0, 1, 0}, buffers.CopyFlatData[float32](got))

	u := buffers.FromFlatDataAndDimensions([]uint16{0, 9}, 2)
	got, err = Sign(u)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0, 1}, buffers.CopyFlatData[uint16](got))
}

func TestRounding(t *testing.T) {
	x := buffers.FromFlatDataAndDimensions([]float64{1.5, -1.5, 2.4, -2.6}, 4)

	got, err := Floor(x)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -2, 2, -3}, buffers.CopyFlatData[float64](got))

	got, err = Ceil(x)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, -1, 3, -2}, buffers.CopyFlatData[float64](got))

	// Halves round away from zero.
	got, err = Round(x)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, -2, 2, -3}, buffers.CopyFlatData[float64](got))

	// Integer input comes back as a copy.
	xi := buffers.FromFlatDataAndDimensions([]int32{1, 2}, 2)
	got, err = Floor(xi)
	require.NoError(t, err)
	assert.True(t, xi.Equal(got))

	c := buffers.FromFlatDataAndDimensions([]complex64{1i}, 1)
	_, err = Round(c)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestNot(t *testing.T) {
	x := buffers.FromFlatDataAndDimensions([]bool{true, false}, 2)
	got, err := Not(x)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, buffers.CopyFlatData[bool](got))

	_, err = Not(buffers.FromFlatDataAndDimensions([]int32{1}, 1))
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestIsNaN(t *testing.T) {
	nan := math.NaN()
	x := buffers.FromFlatDataAndDimensions([]float64{1, nan, math.Inf(1)}, 3)
	got, err := IsNaN(x)
	require.NoError(t, err)
	require.Equal(t, dtypes.Bool, got.DType())
	assert.Equal(t, []bool{false, true, false}, buffers.CopyFlatData[bool](got))

	// Complex is NaN when either component is.
	c := buffers.FromFlatDataAndDimensions([]complex128{1 + 1i, complex(nan, 0)}, 2)
	got, err = IsNaN(c)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, buffers.CopyFlatData[bool](got))

	// No NaN among the integers.
	xi := buffers.FromFlatDataAndDimensions([]int8{-1, 0}, 2)
	got, err = IsNaN(xi)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false}, buffers.CopyFlatData[bool](got))
}

func TestIsZero(t *testing.T) {
	x := buffers.FromFlatDataAndDimensions([]float64{0, math.Copysign(0, -1), 3}, 3)
	got, err := IsZero(x)
	require.NoError(t, err)
	// Both float zeros qualify.
	assert.Equal(t, []bool{true, true, false}, buffers.CopyFlatData[bool](got))

	b := buffers.FromFlatDataAndDimensions([]bool{false, true}, 2)
	got, err = IsZero(b)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, buffers.CopyFlatData[bool](got))
}
