// Copyright 2025-2026 The NDKit Authors. SPDX-License-Identifier: Apache-2.0

package engine

import (
	"cmp"
	"slices"

	"github.com/ndkit/ndkit/pkg/core/buffers"
	"github.com/ndkit/ndkit/pkg/core/dtypes"
)

// Set operations treat their inputs as flattened 1-D views regardless of rank
// and return rank-1 buffers sorted ascending. Ordered dtypes only. Their
// boolean hints (isSorted, isUnique) are
// caller-trust fast paths: when the hint is true the corresponding
// normalization is skipped, and a hint that misdescribes the data yields an
// unspecified result -- not an error.
//
// Float NaNs are ordered as by cmp.Compare: equal to each other and smaller
// than every other value, so they deduplicate and intersect like any element.

// Unique returns the distinct elements of x (flattened, whatever its rank),
// sorted ascending. With isSorted=true the flat data of x is trusted to
// already be in ascending order and the internal sort is skipped.
func Unique(x *buffers.Buffer, isSorted bool) (*buffers.Buffer, error) {
	x.AssertValid()
	dtype := x.DType()
	if !dtype.IsOrdered() {
		return nil, errUnsupportedDType("Unique", dtype)
	}
	if dtype.IsFloat16() {
		out, err := Unique(toFloat32(x), isSorted)
		if err != nil {
			return nil, err
		}
		return fromFloat32(out, dtype), nil
	}

	var out *buffers.Buffer
	switch dtype {
	case dtypes.Int8:
		out = vectorBuffer(uniqueFlat(buffers.FlatData[int8](x), isSorted))
	case dtypes.Int16:
		out = vectorBuffer(uniqueFlat(buffers.FlatData[int16](x), isSorted))
	case dtypes.Int32:
		out = vectorBuffer(uniqueFlat(buffers.FlatData[int32](x), isSorted))
	case dtypes.Int64:
		out = vectorBuffer(uniqueFlat(buffers.FlatData[int64](x), isSorted))
	case dtypes.Uint8:
		out = vectorBuffer(uniqueFlat(buffers.FlatData[uint8](x), isSorted))
	case dtypes.Uint16:
		out = vectorBuffer(uniqueFlat(buffers.FlatData[uint16](x), isSorted))
	case dtypes.Uint32:
		out = vectorBuffer(uniqueFlat(buffers.FlatData[uint32](x), isSorted))
	case dtypes.Uint64:
		out = vectorBuffer(uniqueFlat(buffers.FlatData[uint64](x), isSorted))
	case dtypes.Float32:
		out = vectorBuffer(uniqueFlat(buffers.FlatData[float32](x), isSorted))
	case dtypes.Float64:
		out = vectorBuffer(uniqueFlat(buffers.FlatData[float64](x), isSorted))
	default:
		return nil, errUnsupportedDType("Unique", dtype)
	}
	return out, nil
}

// Union returns the sorted distinct elements present in a or b, both
// flattened (the operands need not share dimensions, only dtype). With
// isUnique=true both inputs are trusted to already be sorted ascending with no
// duplicates, and only the merge runs.
func Union(a, b *buffers.Buffer, isUnique bool) (*buffers.Buffer, error) {
	return setBinary("Union", a, b, isUnique, false)
}

// Intersect returns the sorted distinct elements present in both a and b. The
// isUnique hint is as in Union.
func Intersect(a, b *buffers.Buffer, isUnique bool) (*buffers.Buffer, error) {
	return setBinary("Intersect", a, b, isUnique, true)
}

func setBinary(opName string, a, b *buffers.Buffer, isUnique, intersect bool) (*buffers.Buffer, error) {
	a.AssertValid()
	b.AssertValid()
	dtype := a.DType()
	if dtype != b.DType() {
		return nil, errDTypesDiffer(opName, dtype, b.DType())
	}
	if !dtype.IsOrdered() {
		return nil, errUnsupportedDType(opName, dtype)
	}
	if dtype.IsFloat16() {
		out, err := setBinary(opName, toFloat32(a), toFloat32(b), isUnique, intersect)
		if err != nil {
			return nil, err
		}
		return fromFloat32(out, dtype), nil
	}

	var out *buffers.Buffer
	switch dtype {
	case dtypes.Int8:
		out = vectorBuffer(setBinaryFlat(buffers.FlatData[int8](a), buffers.FlatData[int8](b), isUnique, intersect))
	case dtypes.Int16:
		out = vectorBuffer(setBinaryFlat(buffers.FlatData[int16](a), buffers.FlatData[int16](b), isUnique, intersect))
	case dtypes.Int32:
		out = vectorBuffer(setBinaryFlat(buffers.FlatData[int32](a), buffers.FlatData[int32](b), isUnique, intersect))
	case dtypes.Int64:
		out = vectorBuffer(setBinaryFlat(buffers.FlatData[int64](a), buffers.FlatData[int64](b), isUnique, intersect))
	case dtypes.Uint8:
		out = vectorBuffer(setBinaryFlat(buffers.FlatData[uint8](a), buffers.FlatData[uint8](b), isUnique, intersect))
	case dtypes.Uint16:
		out = vectorBuffer(setBinaryFlat(buffers.FlatData[uint16](a), buffers.FlatData[uint16](b), isUnique, intersect))
	case dtypes.Uint32:
		out = vectorBuffer(setBinaryFlat(buffers.FlatData[uint32](a), buffers.FlatData[uint32](b), isUnique, intersect))
	case dtypes.Uint64:
		out = vectorBuffer(setBinaryFlat(buffers.FlatData[uint64](a), buffers.FlatData[uint64](b), isUnique, intersect))
	case dtypes.Float32:
		out = vectorBuffer(setBinaryFlat(buffers.FlatData[float32](a), buffers.FlatData[float32](b), isUnique, intersect))
	case dtypes.Float64:
		out = vectorBuffer(setBinaryFlat(buffers.FlatData[float64](a), buffers.FlatData[float64](b), isUnique, intersect))
	default:
		return nil, errUnsupportedDType(opName, dtype)
	}
	return out, nil
}

func vectorBuffer[T dtypes.Supported](flat []T) *buffers.Buffer {
	return buffers.FromFlatDataAndDimensions(flat, len(flat))
}

// uniqueFlat sorts (unless trusted sorted) and deduplicates, returning a fresh
// slice. Deduplication drops only adjacent equal values, hence the sort
// requirement; equality follows cmp.Compare so NaNs collapse too.
func uniqueFlat[T cmp.Ordered](flat []T, isSorted bool) []T {
	sorted := slices.Clone(flat)
	if !isSorted {
		slices.Sort(sorted)
	}
	return slices.CompactFunc(sorted, func(a, b T) bool {
		return cmp.Compare(a, b) == 0
	})
}

// setBinaryFlat merges two sets by the classic two-pointer walk over the
// sorted unique forms of a and b.
func setBinaryFlat[T cmp.Ordered](a, b []T, isUnique, intersect bool) []T {
	if !isUnique {
		a = uniqueFlat(a, false)
		b = uniqueFlat(b, false)
	}
	var out []T
	if intersect {
		out = make([]T, 0, min(len(a), len(b)))
	} else {
		out = make([]T, 0, len(a)+len(b))
	}
	ii, jj := 0, 0
	for ii < len(a) && jj < len(b) {
		switch cmp.Compare(a[ii], b[jj]) {
		case -1:
			if !intersect {
				out = append(out, a[ii])
			}
			ii++
		case 1:
			if !intersect {
				out = append(out, b[jj])
			}
			jj++
		default:
			out = append(out, a[ii])
			ii++
			jj++
		}
	}
	if !intersect {
		out = append(out, a[ii:]...)
		out = append(out, b[jj:]...)
	}
	return out
}
