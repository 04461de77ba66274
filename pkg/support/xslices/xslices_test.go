// Copyright 2025-2026 The NDKit Authors. SPDX-License-Identifier: Apache-2.0

package xslices

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAtAndSetAt(t *testing.T) {
	s := []int{10, 20, 30}
	assert.Equal(t, 10, At(s, 0))
	assert.Equal(t, 30, At(s, -1))
	assert.Equal(t, 20, At(s, -2))
	assert.Equal(t, 30, Last(s))

	SetAt(s, -1, 99)
	assert.Equal(t, []int{10, 20, 99}, s)
}

func TestCopy(t *testing.T) {
	s := []float32{1, 2}
	c := Copy(s)
	c[0] = -1
	assert.Equal(t, []float32{1, 2}, s)
	assert.Nil(t, Copy([]float32{}))
}

func TestFillAndSliceWithValue(t *testing.T) {
	s := make([]int8, 3)
	FillSlice(s, 7)
	assert.Equal(t, []int8{7, 7, 7}, s)
	assert.Equal(t, []string{"x", "x"}, SliceWithValue(2, "x"))
}

func TestIota(t *testing.T) {
	assert.Equal(t, []uint32{3, 4, 5}, Iota(uint32(3), 3))
	assert.Empty(t, Iota(0, 0))
}

func TestMinMax(t *testing.T) {
	assert.Equal(t, 7, Max([]int{3, 7, 1}))
	assert.Equal(t, 1, Min([]int{3, 7, 1}))
	assert.Panics(t, func() { Max([]int{}) })
	assert.Panics(t, func() { Min([]int{}) })
}

func TestMap(t *testing.T) {
	doubled := Map([]int{1, 2, 3}, func(v int) int64 { return int64(2 * v) })
	assert.Equal(t, []int64{2, 4, 6}, doubled)
}
