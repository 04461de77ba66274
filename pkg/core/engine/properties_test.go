// Copyright 2025-2026 The NDKit Authors. SPDX-License-Identifier: Apache-2.0

package engine

// Cross-operation consistency checks on randomized inputs: the operations
// here are related algebraically, and those relations must hold exactly for
// integer dtypes.

import (
	"math/rand"
	"testing"

	"github.com/ndkit/ndkit/pkg/core/buffers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomInt64Buffer(rng *rand.Rand, dims ...int) *buffers.Buffer {
	size := 1
	for _, d := range dims {
		size *= d
	}
	flat := make([]int64, size)
	for ii := range flat {
		flat[ii] = rng.Int63n(200) - 100
	}
	return buffers.FromFlatDataAndDimensions(flat, dims...)
}

func TestSumAxisThenRestMatchesGlobal(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	x := randomInt64Buffer(rng, 6, 11, 5)

	partial, err := Sum(x, 1)
	require.NoError(t, err)
	reFromAxis, _, err := SumAll(partial)
	require.NoError(t, err)
	reGlobal, _, err := SumAll(x)
	require.NoError(t, err)
	assert.Equal(t, reGlobal, reFromAxis)
}

func TestInclusiveScanLastEqualsReduce(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	x := randomInt64Buffer(rng, 4, 9)

	scanned, err := Scan(x, 1, OpAdd, true)
	require.NoError(t, err)
	reduced, err := Sum(x, 1)
	require.NoError(t, err)

	scanFlat := buffers.CopyFlatData[int64](scanned)
	wantLast := buffers.CopyFlatData[int64](reduced)
	axisDim := x.Shape().Dimensions[1]
	for row, want := range wantLast {
		assert.Equal(t, want, scanFlat[row*axisDim+axisDim-1], "row %d", row)
	}
}

func TestSortIsIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	x := randomInt64Buffer(rng, 7, 13)

	once, err := Sort(x, 1, true)
	require.NoError(t, err)
	twice, err := Sort(once, 1, true)
	require.NoError(t, err)
	assert.True(t, once.Equal(twice))
}

func TestSortPermutationReproducesSortedOutput(t *testing.T) {
	rng := rand.New(rand.NewSource(10))
	x := randomInt64Buffer(rng, 5, 8)

	sorted, indices, err := SortWithIndex(x, 1, true)
	require.NoError(t, err)

	flat := buffers.CopyFlatData[int64](x)
	perm := buffers.CopyFlatData[uint32](indices)
	sortedFlat := buffers.CopyFlatData[int64](sorted)
	axisDim := x.Shape().Dimensions[1]
	for row := 0; row < x.Shape().Dimensions[0]; row++ {
		for pos := 0; pos < axisDim; pos++ {
			gathered := flat[row*axisDim+int(perm[row*axisDim+pos])]
			assert.Equal(t, sortedFlat[row*axisDim+pos], gathered,
				"row %d pos %d", row, pos)
		}
	}
}

func TestUniqueIsIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	x := randomInt64Buffer(rng, 97)

	once, err := Unique(x, false)
	require.NoError(t, err)
	twice, err := Unique(once, true)
	require.NoError(t, err)
	assert.True(t, once.Equal(twice))
}
