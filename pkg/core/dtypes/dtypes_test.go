// Copyright 2025-2026 The NDKit Authors. SPDX-License-Identifier: Apache-2.0

package dtypes

import (
	"math"
	"reflect"
	"strconv"
	"testing"

	"github.com/ndkit/ndkit/pkg/core/dtypes/bfloat16"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestFromGenericsType(t *testing.T) {
	assert.Equal(t, Float32, FromGenericsType[float32]())
	assert.Equal(t, Float64, FromGenericsType[float64]())
	assert.Equal(t, Float16, FromGenericsType[float16.Float16]())
	assert.Equal(t, BFloat16, FromGenericsType[bfloat16.BFloat16]())
	assert.Equal(t, Int8, FromGenericsType[int8]())
	assert.Equal(t, Uint64, FromGenericsType[uint64]())
	assert.Equal(t, Bool, FromGenericsType[bool]())
	assert.Equal(t, Complex128, FromGenericsType[complex128]())
}

func TestFromAnyAndGoType(t *testing.T) {
	assert.Equal(t, Float64, FromAny(3.0))
	assert.Equal(t, Int32, FromAny(int32(1)))
	assert.Equal(t, InvalidDType, FromAny("not a dtype"))

	for _, dtype := range []DType{Bool, Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64,
		Float16, BFloat16, Float32, Float64, Complex64, Complex128} {
		require.Equal(t, dtype, FromGoType(dtype.GoType()), "dtype %s", dtype)
	}

	// Platform int maps to its fixed-width equivalent.
	wantInt := Int64
	if strconv.IntSize == 32 {
		wantInt = Int32
	}
	assert.Equal(t, wantInt, FromGoType(reflect.TypeOf(int(0))))
	assert.Equal(t, InvalidDType, FromGoType(reflect.TypeOf(struct{}{})))
}

func TestString(t *testing.T) {
	assert.Equal(t, "Float32", Float32.String())
	assert.Equal(t, "InvalidDType", InvalidDType.String())

	assert.Equal(t, Float32, FromName("float32"))
	assert.Equal(t, Float32, FromName("F32"))
	assert.Equal(t, Uint8, FromName("u8"))
	assert.Equal(t, InvalidDType, FromName("no-such-dtype"))
}

func TestSizes(t *testing.T) {
	assert.Equal(t, 1, Int8.Size())
	assert.Equal(t, 2, Float16.Size())
	assert.Equal(t, 2, BFloat16.Size())
	assert.Equal(t, 4, Float32.Size())
	assert.Equal(t, 8, Complex64.Size())
	assert.Equal(t, 16, Complex128.Size())
	assert.Equal(t, 32, Float32.Bits())
}

func TestLowestHighestValues(t *testing.T) {
	assert.Equal(t, int8(math.MinInt8), Int8.LowestValue())
	assert.Equal(t, int8(math.MaxInt8), Int8.HighestValue())
	assert.Equal(t, uint32(0), Uint32.LowestValue())
	assert.Equal(t, uint32(math.MaxUint32), Uint32.HighestValue())
	assert.Equal(t, math.Inf(-1), Float64.LowestValue())
	assert.Equal(t, float32(math.Inf(1)), Float32.HighestValue())
	assert.True(t, float16.Inf(1) == Float16.HighestValue().(float16.Float16))
}

func TestPredicates(t *testing.T) {
	assert.True(t, Float16.IsFloat())
	assert.True(t, Float16.IsFloat16())
	assert.False(t, Float32.IsFloat16())
	assert.True(t, Complex64.IsComplex())
	assert.False(t, Complex64.IsOrdered())
	assert.False(t, Bool.IsOrdered())
	assert.True(t, Uint8.IsOrdered())
	assert.True(t, Uint8.IsUnsigned())
	assert.False(t, Int8.IsUnsigned())
	assert.Equal(t, Float32, Complex64.RealDType())
	assert.Equal(t, Float64, Complex128.RealDType())
	assert.Equal(t, Float64, Float64.RealDType())
	assert.Equal(t, InvalidDType, Int32.RealDType())
	assert.True(t, Int32.IsSupported())
	assert.False(t, InvalidDType.IsSupported())
}
