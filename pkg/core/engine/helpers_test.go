// Copyright 2025-2026 The NDKit Authors. SPDX-License-Identifier: Apache-2.0

package engine

import (
	"github.com/ndkit/ndkit/pkg/support/xslices"
	"github.com/x448/float16"
)

func f16Slice(values ...float32) []float16.Float16 {
	return xslices.Map(values, float16.Fromfloat32)
}
