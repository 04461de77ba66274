// Copyright 2025-2026 The NDKit Authors. SPDX-License-Identifier: Apache-2.0

// Package xslices provides missing functionality to the standard slices package.
package xslices

import (
	"golang.org/x/exp/constraints"
)

// At returns the element at the given index, where index can be negative, in
// which case it counts from the end of the slice.
func At[T any](slice []T, index int) T {
	if index < 0 {
		index = len(slice) + index
	}
	return slice[index]
}

// SetAt sets the element at the given index, where index can be negative, in
// which case it counts from the end of the slice.
func SetAt[T any](slice []T, index int, value T) {
	if index < 0 {
		index = len(slice) + index
	}
	slice[index] = value
}

// Last returns the last element of a slice.
func Last[T any](slice []T) T {
	return At(slice, -1)
}

// Copy creates a new (shallow) copy of the slice. A shortcut to a call to `make`
// followed by `copy`. It returns nil for an empty slice.
func Copy[T any](slice []T) []T {
	if len(slice) == 0 {
		return nil
	}
	slice2 := make([]T, len(slice))
	copy(slice2, slice)
	return slice2
}

// FillSlice fills the slice with the given value.
func FillSlice[T any](slice []T, value T) {
	for ii := range slice {
		slice[ii] = value
	}
}

// SliceWithValue creates a slice of the given size, filled with the given value.
func SliceWithValue[T any](size int, value T) []T {
	slice := make([]T, size)
	FillSlice(slice, value)
	return slice
}

// Iota returns a slice of the given size with the sequence
// start, start+1, ..., start+size-1.
func Iota[T constraints.Integer](start T, size int) []T {
	slice := make([]T, size)
	for ii := range slice {
		slice[ii] = start + T(ii)
	}
	return slice
}

// Max scans the slice and returns the largest value. It panics for empty slices.
func Max[T constraints.Ordered](slice []T) (value T) {
	if len(slice) == 0 {
		panic("xslices.Max does not work with empty slices")
	}
	value = slice[0]
	for _, v := range slice[1:] {
		if v > value {
			value = v
		}
	}
	return
}

// Min scans the slice and returns the smallest value. It panics for empty slices.
func Min[T constraints.Ordered](slice []T) (value T) {
	if len(slice) == 0 {
		panic("xslices.Min does not work with empty slices")
	}
	value = slice[0]
	for _, v := range slice[1:] {
		if v < value {
			value = v
		}
	}
	return
}

// Map applies fn to each element of the slice, returning a new slice of the
// results with the same length.
func Map[In, Out any](slice []In, fn func(In) Out) []Out {
	result := make([]Out, len(slice))
	for ii, value := range slice {
		result[ii] = fn(value)
	}
	return result
}
