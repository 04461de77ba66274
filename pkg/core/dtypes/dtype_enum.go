// Copyright 2025-2026 The NDKit Authors. SPDX-License-Identifier: Apache-2.0

package dtypes

import "strconv"

// DType is a closed enumeration of the scalar element types a buffer can hold.
//
// Adding a dtype requires extending the converters in dtypes.go and the kernel
// dispatch in pkg/core/engine -- this is deliberate: dispatch is always over this
// closed set, never over open-ended dynamic types.
type DType int32

const (
	// InvalidDType is the zero value, and serves as default for uninitialized shapes.
	InvalidDType DType = iota

	// Bool is a two-state predicate type.
	Bool

	// Int8, Int16, Int32 and Int64 are signed integers of fixed width.
	Int8
	Int16
	Int32
	Int64

	// Uint8, Uint16, Uint32 and Uint64 are unsigned integers of fixed width.
	Uint8
	Uint16
	Uint32
	Uint64

	// Float16 is the IEEE 754 half-precision float, backed by github.com/x448/float16.
	Float16

	// BFloat16 is the "brain float" truncated 32-bit float, see the bfloat16 subpackage.
	BFloat16

	// Float32 and Float64 are the IEEE 754 single- and double-precision floats.
	Float32
	Float64

	// Complex64 and Complex128 are complex numbers with float32 and float64 components.
	Complex64
	Complex128
)

// Short aliases, following the C conventions of array libraries (b8, s32, u32, f32, c64, ...).
const (
	B8   = Bool
	S8   = Int8
	S16  = Int16
	S32  = Int32
	S64  = Int64
	U8   = Uint8
	U16  = Uint16
	U32  = Uint32
	U64  = Uint64
	F16  = Float16
	BF16 = BFloat16
	F32  = Float32
	F64  = Float64
	C64  = Complex64
	C128 = Complex128
)

var dtypeNames = map[DType]string{
	InvalidDType: "InvalidDType",
	Bool:         "Bool",
	Int8:         "Int8",
	Int16:        "Int16",
	Int32:        "Int32",
	Int64:        "Int64",
	Uint8:        "Uint8",
	Uint16:       "Uint16",
	Uint32:       "Uint32",
	Uint64:       "Uint64",
	Float16:      "Float16",
	BFloat16:     "BFloat16",
	Float32:      "Float32",
	Float64:      "Float64",
	Complex64:    "Complex64",
	Complex128:   "Complex128",
}

// String implements fmt.Stringer.
func (dtype DType) String() string {
	if name, found := dtypeNames[dtype]; found {
		return name
	}
	return "DType(" + strconv.Itoa(int(dtype)) + ")"
}

// MapOfNames maps names to their dtypes. It includes the short aliases, and it is
// extended with the lower-case version of the names during initialization (see dtypes.go).
var MapOfNames = map[string]DType{
	"InvalidDType": InvalidDType,
	"Bool":         Bool,
	"B8":           Bool,
	"Int8":         Int8,
	"S8":           Int8,
	"Int16":        Int16,
	"S16":          Int16,
	"Int32":        Int32,
	"S32":          Int32,
	"Int64":        Int64,
	"S64":          Int64,
	"Uint8":        Uint8,
	"U8":           Uint8,
	"Uint16":       Uint16,
	"U16":          Uint16,
	"Uint32":       Uint32,
	"U32":          Uint32,
	"Uint64":       Uint64,
	"U64":          Uint64,
	"Float16":      Float16,
	"F16":          Float16,
	"BFloat16":     BFloat16,
	"BF16":         BFloat16,
	"Float32":      Float32,
	"F32":          Float32,
	"Float64":      Float64,
	"F64":          Float64,
	"Complex64":    Complex64,
	"C64":          Complex64,
	"Complex128":   Complex128,
	"C128":         Complex128,
}

// FromName returns the DType with the given name (case-insensitive, aliases included),
// or InvalidDType if the name is unknown.
func FromName(name string) DType {
	if dtype, found := MapOfNames[name]; found {
		return dtype
	}
	return InvalidDType
}
