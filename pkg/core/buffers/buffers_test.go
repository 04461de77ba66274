// Copyright 2025-2026 The NDKit Authors. SPDX-License-Identifier: Apache-2.0

package buffers

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/ndkit/ndkit/pkg/core/dtypes"
	"github.com/ndkit/ndkit/pkg/core/shapes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestFromShape(t *testing.T) {
	b := FromShape(shapes.Make(dtypes.Float32, 2, 3))
	assert.Equal(t, 6, b.Size())
	assert.Equal(t, []float32{0, 0, 0, 0, 0, 0}, CopyFlatData[float32](b))
	assert.Equal(t, []int{3, 1}, b.LayoutStrides())
}

func TestFromScalarAndDimensions(t *testing.T) {
	b := FromScalarAndDimensions(int16(7), 2, 2)
	assert.Equal(t, dtypes.Int16, b.DType())
	assert.Equal(t, []int16{7, 7, 7, 7}, CopyFlatData[int16](b))

	s := FromScalar(float64(3.5))
	assert.True(t, s.IsScalar())
	assert.Equal(t, 3.5, ToScalar[float64](s))
}

func TestFromFlatDataAndDimensions(t *testing.T) {
	b := FromFlatDataAndDimensions([]int32{1, 2, 3, 4, 5, 6}, 2, 3)
	assert.Equal(t, shapes.Make(dtypes.Int32, 2, 3), b.Shape())

	// Data is copied, not aliased.
	data := []int32{1, 2}
	b = FromFlatDataAndDimensions(data, 2)
	data[0] = 99
	assert.Equal(t, []int32{1, 2}, CopyFlatData[int32](b))

	assert.Panics(t, func() { FromFlatDataAndDimensions([]int32{1, 2, 3}, 2) })
}

func TestFlatDataAccessors(t *testing.T) {
	b := FromFlatDataAndDimensions([]float64{1, 2, 3}, 3)

	ConstFlatData(b, func(flat []float64) {
		assert.Equal(t, []float64{1, 2, 3}, flat)
	})
	MutableFlatData(b, func(flat []float64) {
		flat[0] = -1
	})
	assert.Equal(t, []float64{-1, 2, 3}, CopyFlatData[float64](b))

	// FlatData aliases the storage.
	flat := FlatData[float64](b)
	flat[1] = -2
	assert.Equal(t, []float64{-1, -2, 3}, CopyFlatData[float64](b))

	// Mismatched generic type panics.
	assert.Panics(t, func() { FlatData[float32](b) })
	assert.Panics(t, func() { ConstFlatData(b, func(flat []int32) {}) })
}

func TestClone(t *testing.T) {
	b := FromFlatDataAndDimensions([]uint8{1, 2, 3}, 3)
	clone := b.Clone()
	require.True(t, b.Equal(clone))
	FlatData[uint8](clone)[0] = 9
	assert.False(t, b.Equal(clone))
	assert.Equal(t, []uint8{1, 2, 3}, CopyFlatData[uint8](b))
}

func TestEqual(t *testing.T) {
	a := FromFlatDataAndDimensions([]int32{1, 2}, 2)
	assert.True(t, a.Equal(a))
	assert.True(t, a.Equal(FromFlatDataAndDimensions([]int32{1, 2}, 2)))
	assert.False(t, a.Equal(FromFlatDataAndDimensions([]int32{1, 3}, 2)))
	assert.False(t, a.Equal(FromFlatDataAndDimensions([]int32{1, 2}, 2, 1)))
	assert.False(t, a.Equal(FromFlatDataAndDimensions([]int64{1, 2}, 2)))
}

func TestInDelta(t *testing.T) {
	a := FromFlatDataAndDimensions([]float32{1, 2}, 2)
	b := FromFlatDataAndDimensions([]float32{1.001, 1.999}, 2)
	assert.True(t, a.InDelta(b, 0.01))
	assert.False(t, a.InDelta(b, 0.0001))

	h := FromFlatDataAndDimensions([]float16.Float16{float16.Fromfloat32(1.5)}, 1)
	h2 := FromFlatDataAndDimensions([]float16.Float16{float16.Fromfloat32(1.5)}, 1)
	assert.True(t, h.InDelta(h2, 1e-3))

	// Complex elements compare by the magnitude of the difference: a deviation
	// in the imaginary part alone must be caught.
	c := FromFlatDataAndDimensions([]complex128{1 + 2i}, 1)
	assert.True(t, c.InDelta(FromFlatDataAndDimensions([]complex128{1.001 + 2.001i}, 1), 0.01))
	assert.False(t, c.InDelta(FromFlatDataAndDimensions([]complex128{1 + 5i}, 1), 0.01))
	assert.False(t, c.InDelta(FromFlatDataAndDimensions([]complex128{4 + 2i}, 1), 0.01))

	assert.Panics(t, func() {
		i := FromFlatDataAndDimensions([]int32{1}, 1)
		i.InDelta(i.Clone(), 0.1)
	})
}

func TestToScalarValidation(t *testing.T) {
	b := FromFlatDataAndDimensions([]float64{1, 2}, 2)
	assert.Panics(t, func() { ToScalar[float64](b) })
	one := FromFlatDataAndDimensions([]float64{42}, 1)
	assert.Equal(t, 42.0, ToScalar[float64](one))
}

func TestSaveLoad(t *testing.T) {
	b := FromFlatDataAndDimensions([]float64{1, math.Pi, -3}, 3, 1)
	path := filepath.Join(t.TempDir(), "buffer.bin")
	require.NoError(t, b.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, b.Equal(loaded))

	_, err = Load(filepath.Join(t.TempDir(), "missing.bin"))
	require.Error(t, err)
}
