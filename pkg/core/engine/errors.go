// Copyright 2025-2026 The NDKit Authors. SPDX-License-Identifier: Apache-2.0

package engine

import (
	"github.com/ndkit/ndkit/pkg/core/dtypes"
	"github.com/ndkit/ndkit/pkg/core/shapes"
	"github.com/pkg/errors"
)

// Sentinel errors for the ways an engine operation can reject its arguments.
// Returned errors wrap one of these, test with errors.Is.
var (
	// ErrInvalidAxis is returned when the reduction/scan/sort axis is out of
	// range for the operand's rank.
	ErrInvalidAxis = errors.New("axis out of range")

	// ErrShapeMismatch is returned when the operands of a multi-input operation
	// have incompatible dimensions.
	ErrShapeMismatch = errors.New("operand shapes do not match")

	// ErrTypeMismatch is returned when an operand dtype is not supported by the
	// operation, or when the operands' dtypes disagree.
	ErrTypeMismatch = errors.New("dtype not supported by operation")

	// ErrEmptyInput is returned by operations that need at least one element to
	// be defined (Min, Max, ArgMin, ArgMax) when given a zero-size operand.
	ErrEmptyInput = errors.New("operation not defined on empty input")
)

func errInvalidAxis(axis, rank int) error {
	return errors.Wrapf(ErrInvalidAxis, "axis %d with operand rank %d", axis, rank)
}

func errShapeMismatch(opName string, a, b shapes.Shape) error {
	return errors.Wrapf(ErrShapeMismatch, "%s: operands shaped %s and %s", opName, a, b)
}

func errDTypesDiffer(opName string, a, b dtypes.DType) error {
	return errors.Wrapf(ErrTypeMismatch, "%s: operand dtypes %s and %s differ", opName, a, b)
}

func errUnsupportedDType(opName string, dtype dtypes.DType) error {
	return errors.Wrapf(ErrTypeMismatch, "%s: dtype %s", opName, dtype)
}

func errEmptyInput(opName string) error {
	return errors.Wrapf(ErrEmptyInput, "%s", opName)
}
