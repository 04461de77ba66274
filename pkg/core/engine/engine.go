// Copyright 2025-2026 The NDKit Authors. SPDX-License-Identifier: Apache-2.0

// Package engine implements reductions, index-reductions, scans, sorts and set
// operations over dense buffers (see pkg/core/buffers).
//
// All operations are stateless pure functions: they read their inputs and return
// freshly allocated buffers (or scalars), never mutating the inputs -- except the
// explicitly named in-place variants (e.g. TransposeInPlace), which require
// exclusive ownership of their operand.
//
// Axis reductions follow the keep-dims convention: reducing a rank-R buffer along
// axis d yields a rank-R buffer with dimension 1 at axis d. Global ("All")
// variants flatten the buffer and return scalar results, reported as a
// (real, imaginary) pair so complex dtypes are covered uniformly.
//
// Operations may fan out internally across the independent 1-D lines of a buffer
// (see internal/workerspool); this is not observable: each output element is
// written by exactly one task and results are deterministic for fixed inputs.
//
// Float16 and BFloat16 operands are computed in single precision: the engine
// converts them to Float32, runs the Float32 kernel, and converts the results
// back. Conversion to float32 is exact and monotonic, so comparisons, orderings
// and tie-breaks are unaffected.
package engine

import (
	"os"
	"strconv"
	"sync"

	"k8s.io/klog/v2"

	"github.com/ndkit/ndkit/internal/workerspool"
	"github.com/ndkit/ndkit/pkg/core/buffers"
	"github.com/ndkit/ndkit/pkg/core/dtypes"
	"github.com/ndkit/ndkit/pkg/core/dtypes/bfloat16"
	"github.com/ndkit/ndkit/pkg/core/shapes"
	"github.com/x448/float16"
)

// ParallelismEnvVar is the environment variable read at initialization to configure
// the engine's parallelism target. 0 disables parallelism, negative is unlimited.
const ParallelismEnvVar = "NDKIT_NUM_THREADS"

// pool limits the fan-out of engine kernels. Package-level by design: engines are
// stateless functions, and the pool is shared implementation plumbing.
var pool = workerspool.New()

func init() {
	value := os.Getenv(ParallelismEnvVar)
	if value == "" {
		return
	}
	maxParallelism, err := strconv.Atoi(value)
	if err != nil {
		klog.Warningf("invalid %s=%q, expected an integer; keeping default parallelism %d",
			ParallelismEnvVar, value, pool.MaxParallelism())
		return
	}
	pool.SetMaxParallelism(maxParallelism)
}

// SetMaxParallelism changes the engine's parallelism target: 0 disables
// parallelism, a negative value makes it unlimited. It must not be called
// concurrently with running operations.
func SetMaxParallelism(maxParallelism int) {
	pool.SetMaxParallelism(maxParallelism)
}

// minWorkPerTask is the approximate number of element visits below which
// fanning out costs more than it saves.
const minWorkPerTask = 16 * 1024

// parallelFor runs fn(task) for every task in [0, numTasks), fanning out to the
// workers pool when the total work (numTasks*costPerTask element visits) makes
// it worthwhile. Tasks must be independent: each writes its own output elements.
func parallelFor(numTasks, costPerTask int, fn func(task int)) {
	if costPerTask < 1 {
		costPerTask = 1
	}
	if !pool.IsEnabled() || numTasks*costPerTask < 2*minWorkPerTask {
		for task := 0; task < numTasks; task++ {
			fn(task)
		}
		return
	}
	tasksPerChunk := minWorkPerTask / costPerTask
	if tasksPerChunk < 1 {
		tasksPerChunk = 1
	}
	klog.V(2).Infof("engine.parallelFor: %d tasks (cost ~%d each), chunks of %d",
		numTasks, costPerTask, tasksPerChunk)
	var wg sync.WaitGroup
	for start := 0; start < numTasks; start += tasksPerChunk {
		start := start
		end := min(start+tasksPerChunk, numTasks)
		wg.Add(1)
		pool.WaitToStart(func() {
			defer wg.Done()
			for task := start; task < end; task++ {
				fn(task)
			}
		})
	}
	wg.Wait()
}

// axisExtents decomposes shape around the given axis: outer is the product of the
// dimensions before the axis, axisDim the dimension of the axis itself, and inner
// the product of the dimensions after it.
//
// The buffer is then a collection of outer*inner independent 1-D "lines" of
// axisDim elements each: line L (L in [0, outer*inner)) starts at flat position
// (L/inner)*axisDim*inner + L%inner and has stride inner.
func axisExtents(shape shapes.Shape, axis int) (outer, axisDim, inner int) {
	outer, inner = 1, 1
	for a := 0; a < axis; a++ {
		outer *= shape.Dimensions[a]
	}
	axisDim = shape.Dimensions[axis]
	for a := axis + 1; a < shape.Rank(); a++ {
		inner *= shape.Dimensions[a]
	}
	return
}

// lineStart returns the flat position of the first element of the given line.
// Elements of the line follow with stride inner.
func lineStart(line, axisDim, inner int) int {
	return (line/inner)*axisDim*inner + line%inner
}

// reducedShape is the keep-dims result shape: same rank, dimension 1 at axis.
func reducedShape(shape shapes.Shape, axis int) shapes.Shape {
	result := shape.Clone()
	result.Dimensions[axis] = 1
	return result
}

// checkAxis validates the axis for the buffer's rank.
// Scalars have no valid axis.
func checkAxis(x *buffers.Buffer, axis int) error {
	if axis < 0 || axis >= x.Rank() {
		return errInvalidAxis(axis, x.Rank())
	}
	return nil
}

// checkSameShape validates two operands of a binary operation: dtypes must match
// and dimensions must be identical (there is no broadcasting in this engine).
func checkSameShape(opName string, a, b *buffers.Buffer) error {
	if a.DType() != b.DType() {
		return errDTypesDiffer(opName, a.DType(), b.DType())
	}
	if !a.Shape().EqualDimensions(b.Shape()) {
		return errShapeMismatch(opName, a.Shape(), b.Shape())
	}
	return nil
}

// toFloat32 returns a Float32 copy of a Float16 or BFloat16 buffer.
// Half-precision operands are computed in single precision, see package doc.
func toFloat32(x *buffers.Buffer) *buffers.Buffer {
	out := buffers.FromShape(shapes.Make(dtypes.Float32, x.Shape().Dimensions...))
	outFlat := buffers.FlatData[float32](out)
	switch x.DType() {
	case dtypes.Float16:
		for ii, v := range buffers.FlatData[float16.Float16](x) {
			outFlat[ii] = v.Float32()
		}
	case dtypes.BFloat16:
		for ii, v := range buffers.FlatData[bfloat16.BFloat16](x) {
			outFlat[ii] = v.Float32()
		}
	default:
		panic("engine.toFloat32 requires a Float16 or BFloat16 buffer")
	}
	return out
}

// fromFloat32 converts a Float32 buffer back to the given half-precision dtype.
func fromFloat32(x *buffers.Buffer, dtype dtypes.DType) *buffers.Buffer {
	xFlat := buffers.FlatData[float32](x)
	out := buffers.FromShape(shapes.Make(dtype, x.Shape().Dimensions...))
	switch dtype {
	case dtypes.Float16:
		outFlat := buffers.FlatData[float16.Float16](out)
		for ii, v := range xFlat {
			outFlat[ii] = float16.Fromfloat32(v)
		}
	case dtypes.BFloat16:
		outFlat := buffers.FlatData[bfloat16.BFloat16](out)
		for ii, v := range xFlat {
			outFlat[ii] = bfloat16.FromFloat32(v)
		}
	default:
		panic("engine.fromFloat32 requires a Float16 or BFloat16 target dtype")
	}
	return out
}
