// Copyright 2025-2026 The NDKit Authors. SPDX-License-Identifier: Apache-2.0

package buffers

import (
	"encoding/gob"
	"os"
	"reflect"

	"k8s.io/klog/v2"

	"github.com/ndkit/ndkit/pkg/core/shapes"
	"github.com/pkg/errors"
)

// GobSerialize the buffer in binary format: first the shape, then the flat data.
//
// It returns an error for I/O errors. It panics for invalid buffers.
func (b *Buffer) GobSerialize(encoder *gob.Encoder) (err error) {
	b.AssertValid()
	err = b.shape.GobSerialize(encoder)
	if err != nil {
		return
	}
	b.ConstFlatData(func(flat any) {
		err = encoder.Encode(flat)
		if err != nil {
			err = errors.Wrapf(err, "failed to serialize Buffer data")
		}
	})
	return
}

// GobDeserialize a Buffer from the decoder. Returns the new Buffer or an error.
func GobDeserialize(decoder *gob.Decoder) (b *Buffer, err error) {
	shape, err := shapes.GobDeserialize(decoder)
	if err != nil {
		err = errors.WithMessagef(err, "failed to deserialize Buffer shape")
		return
	}
	flatPtrV := reflect.New(reflect.SliceOf(shape.DType.GoType()))
	err = decoder.Decode(flatPtrV.Interface())
	if err != nil {
		err = errors.Wrapf(err, "failed to deserialize Buffer data")
		return
	}
	// Build the buffer directly around the decoded slice, to avoid a copy.
	b = &Buffer{shape: shape, flat: flatPtrV.Elem().Interface()}
	if reflect.ValueOf(b.flat).Len() != shape.Size() {
		return nil, errors.Errorf("deserialized Buffer data has %d values, but shape %s requires %d",
			reflect.ValueOf(b.flat).Len(), shape, shape.Size())
	}
	return
}

// Save the buffer to the given file path.
//
// It returns an error for I/O errors. It may panic if the buffer is invalid.
func (b *Buffer) Save(filePath string) (err error) {
	b.AssertValid()
	var f *os.File
	f, err = os.Create(filePath)
	if err != nil {
		return errors.Wrapf(err, "creating %q to save buffer", filePath)
	}
	enc := gob.NewEncoder(f)
	err = b.GobSerialize(enc)
	if err != nil {
		_ = f.Close()
		return errors.WithMessagef(err, "saving Buffer to %q", filePath)
	}
	err = f.Close()
	if err != nil {
		return errors.Wrapf(err, "closing %q, where buffer was saved", filePath)
	}
	return
}

// Load a buffer from the given file path.
func Load(filePath string) (b *Buffer, err error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %q to load Buffer", filePath)
	}
	dec := gob.NewDecoder(f)
	b, err = GobDeserialize(dec)
	if err != nil {
		_ = f.Close()
		return nil, errors.WithMessagef(err, "loading Buffer from %q", filePath)
	}
	if err := f.Close(); err != nil {
		klog.Warningf("failed to close %q after loading buffer: %v", filePath, err)
	}
	return
}
