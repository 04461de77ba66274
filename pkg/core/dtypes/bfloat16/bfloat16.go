// Copyright 2025-2026 The NDKit Authors. SPDX-License-Identifier: Apache-2.0

// Package bfloat16 is a trivial implementation of the bfloat16 type, modeled after
// github.com/x448/float16 and the discussion in https://github.com/x448/float16/issues/22
package bfloat16

import (
	"math"
	"strconv"
)

// BFloat16 ("brain float") is a 16-bit floating point format: a shortened version
// of the 32-bit IEEE 754 single-precision format that keeps the 8-bit exponent but
// truncates the mantissa to 7 bits. Conversion to/from float32 is a bit shift.
type BFloat16 uint16

// Float32 converts the BFloat16 to a float32.
func (f BFloat16) Float32() float32 {
	return math.Float32frombits(uint32(f) << 16)
}

// FromFloat32 converts a float32 to a BFloat16, truncating the mantissa.
func FromFloat32(x float32) BFloat16 {
	return BFloat16(math.Float32bits(x) >> 16)
}

// FromFloat64 converts a float64 to a BFloat16.
func FromFloat64(x float64) BFloat16 {
	return FromFloat32(float32(x))
}

// FromBits converts an uint16 to a BFloat16.
func FromBits(bits uint16) BFloat16 {
	return BFloat16(bits)
}

// Bits converts BFloat16 to an uint16.
func (f BFloat16) Bits() uint16 {
	return uint16(f)
}

// IsNaN reports whether f is an IEEE 754 "not-a-number" value.
func (f BFloat16) IsNaN() bool {
	v := f.Float32()
	return v != v
}

// String implements fmt.Stringer, and prints a float representation of the BFloat16.
func (f BFloat16) String() string {
	return strconv.FormatFloat(float64(f.Float32()), 'f', -1, 32)
}

// Inf returns a BFloat16 infinity with the given sign.
// A sign >= 0 returns positive infinity, a sign < 0 negative infinity.
func Inf(sign int) BFloat16 {
	return FromFloat32(float32(math.Inf(sign)))
}

// SmallestNonzero is the smallest nonzero denormal value for bfloat16 (9.1835e-41),
// the equivalent of math.SmallestNonzeroFloat32 for this type.
const SmallestNonzero = BFloat16(0x0001)
