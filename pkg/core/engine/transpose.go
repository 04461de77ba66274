// Copyright 2025-2026 The NDKit Authors. SPDX-License-Identifier: Apache-2.0

package engine

import (
	"slices"

	"github.com/ndkit/ndkit/pkg/core/buffers"
	"github.com/ndkit/ndkit/pkg/core/dtypes/bfloat16"
	"github.com/ndkit/ndkit/pkg/core/shapes"
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// Transpose reorders the axes of x. Called without arguments it swaps axes 0
// and 1 (batched matrix transpose, higher axes untouched); otherwise the
// arguments must be a permutation of 0..rank-1, and axis a of the result is
// axis permutation[a] of x.
//
// Works on every dtype: it only moves elements. Scalars and rank-1 buffers
// transpose to a copy of themselves.
func Transpose(x *buffers.Buffer, permutation ...int) (*buffers.Buffer, error) {
	x.AssertValid()
	rank := x.Rank()
	if len(permutation) == 0 {
		permutation = defaultTransposePermutation(rank)
	}
	if err := checkPermutation(rank, permutation); err != nil {
		return nil, err
	}

	srcShape := x.Shape()
	outDims := make([]int, rank)
	for a, src := range permutation {
		outDims[a] = srcShape.Dimensions[src]
	}
	out := buffers.FromShape(shapes.Make(srcShape.DType, outDims...))
	if out.Size() == 0 {
		return out, nil
	}

	// Per output axis, the flat stride to advance on the source.
	srcStrides := srcShape.Strides()
	outSrcStrides := make([]int, rank)
	for a, src := range permutation {
		outSrcStrides[a] = srcStrides[src]
	}

	size := x.Size()
	x.ConstFlatData(func(srcAny any) {
		out.MutableFlatData(func(dstAny any) {
			switch src := srcAny.(type) {
			case []bool:
				transposeFlat(src, dstAny.([]bool), outDims, outSrcStrides, size)
			case []int8:
				transposeFlat(src, dstAny.([]int8), outDims, outSrcStrides, size)
			case []int16:
				transposeFlat(src, dstAny.([]int16), outDims, outSrcStrides, size)
			case []int32:
				transposeFlat(src, dstAny.([]int32), outDims, outSrcStrides, size)
			case []int64:
				transposeFlat(src, dstAny.([]int64), outDims, outSrcStrides, size)
			case []uint8:
				transposeFlat(src, dstAny.([]uint8), outDims, outSrcStrides, size)
			case []uint16:
				transposeFlat(src, dstAny.([]uint16), outDims, outSrcStrides, size)
			case []uint32:
				transposeFlat(src, dstAny.([]uint32), outDims, outSrcStrides, size)
			case []uint64:
				transposeFlat(src, dstAny.([]uint64), outDims, outSrcStrides, size)
			case []float16.Float16:
				transposeFlat(src, dstAny.([]float16.Float16), outDims, outSrcStrides, size)
			case []bfloat16.BFloat16:
				transposeFlat(src, dstAny.([]bfloat16.BFloat16), outDims, outSrcStrides, size)
			case []float32:
				transposeFlat(src, dstAny.([]float32), outDims, outSrcStrides, size)
			case []float64:
				transposeFlat(src, dstAny.([]float64), outDims, outSrcStrides, size)
			case []complex64:
				transposeFlat(src, dstAny.([]complex64), outDims, outSrcStrides, size)
			case []complex128:
				transposeFlat(src, dstAny.([]complex128), outDims, outSrcStrides, size)
			}
		})
	})
	return out, nil
}

// TransposeInPlace swaps the two axes of a square rank-2 buffer by swapping
// elements across the diagonal, without allocating. The caller must be the
// exclusive owner of x.
func TransposeInPlace(x *buffers.Buffer) error {
	x.AssertValid()
	if x.Rank() != 2 || x.Shape().Dimensions[0] != x.Shape().Dimensions[1] {
		return errors.Wrapf(ErrShapeMismatch, "TransposeInPlace requires a square rank-2 buffer, got %s", x.Shape())
	}
	dim := x.Shape().Dimensions[0]
	x.MutableFlatData(func(flatAny any) {
		switch flat := flatAny.(type) {
		case []bool:
			transposeSquare(flat, dim)
		case []int8:
			transposeSquare(flat, dim)
		case []int16:
			transposeSquare(flat, dim)
		case []int32:
			transposeSquare(flat, dim)
		case []int64:
			transposeSquare(flat, dim)
		case []uint8:
			transposeSquare(flat, dim)
		case []uint16:
			transposeSquare(flat, dim)
		case []uint32:
			transposeSquare(flat, dim)
		case []uint64:
			transposeSquare(flat, dim)
		case []float16.Float16:
			transposeSquare(flat, dim)
		case []bfloat16.BFloat16:
			transposeSquare(flat, dim)
		case []float32:
			transposeSquare(flat, dim)
		case []float64:
			transposeSquare(flat, dim)
		case []complex64:
			transposeSquare(flat, dim)
		case []complex128:
			transposeSquare(flat, dim)
		}
	})
	return nil
}

func defaultTransposePermutation(rank int) []int {
	permutation := make([]int, rank)
	for a := range permutation {
		permutation[a] = a
	}
	if rank >= 2 {
		permutation[0], permutation[1] = 1, 0
	}
	return permutation
}

func checkPermutation(rank int, permutation []int) error {
	if len(permutation) != rank {
		return errors.Wrapf(ErrShapeMismatch, "Transpose permutation %v has %d axes, operand has rank %d",
			permutation, len(permutation), rank)
	}
	sorted := slices.Clone(permutation)
	slices.Sort(sorted)
	for a, v := range sorted {
		if v != a {
			return errors.Wrapf(ErrShapeMismatch, "Transpose permutation %v is not a permutation of 0..%d",
				permutation, rank-1)
		}
	}
	return nil
}

// transposeFlat walks the output in row-major order, carrying the matching
// source flat position incrementally: advancing output axis a moves the source
// position by outSrcStrides[a], rewinding the axes that wrapped.
func transposeFlat[T any](src, dst []T, outDims, outSrcStrides []int, size int) {
	rank := len(outDims)
	if rank == 0 {
		dst[0] = src[0]
		return
	}
	counters := make([]int, rank)
	srcPos := 0
	for outPos := 0; outPos < size; outPos++ {
		dst[outPos] = src[srcPos]
		for a := rank - 1; a >= 0; a-- {
			counters[a]++
			srcPos += outSrcStrides[a]
			if counters[a] < outDims[a] {
				break
			}
			counters[a] = 0
			srcPos -= outDims[a] * outSrcStrides[a]
		}
	}
}

func transposeSquare[T any](flat []T, dim int) {
	for row := 0; row < dim; row++ {
		for col := row + 1; col < dim; col++ {
			ij, ji := row*dim+col, col*dim+row
			flat[ij], flat[ji] = flat[ji], flat[ij]
		}
	}
}
