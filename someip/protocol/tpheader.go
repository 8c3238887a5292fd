/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package protocol

import "encoding/binary"

// TPHeader is the 4-byte SOME/IP-TP segmentation header: a 28-bit offset
// (always a multiple of 16), 3 reserved bits, and the more_segments flag.
type TPHeader struct {
	offset       uint32
	moreSegments bool
}

// NewTPHeader builds a TPHeader with offset 0.
func NewTPHeader(moreSegments bool) TPHeader {
	return TPHeader{moreSegments: moreSegments}
}

// NewTPHeaderWithOffset builds a TPHeader with the given offset, rejecting
// any offset that is not a multiple of 16.
func NewTPHeaderWithOffset(offset uint32, moreSegments bool) (TPHeader, error) {
	if offset%16 != 0 {
		return TPHeader{}, &TPOffsetNotMultipleOf16Error{BadOffset: offset}
	}
	return TPHeader{offset: offset, moreSegments: moreSegments}, nil
}

// Offset returns the segment's byte offset within the reassembled message.
func (t TPHeader) Offset() uint32 { return t.offset }

// MoreSegments reports whether further segments follow this one.
func (t TPHeader) MoreSegments() bool { return t.moreSegments }

// SetOffset updates the offset, rejecting (and leaving t unchanged on error)
// any value that is not a multiple of 16.
func (t *TPHeader) SetOffset(offset uint32) error {
	if offset%16 != 0 {
		return &TPOffsetNotMultipleOf16Error{BadOffset: offset}
	}
	t.offset = offset
	return nil
}

// SetMoreSegments updates the more_segments flag.
func (t *TPHeader) SetMoreSegments(more bool) { t.moreSegments = more }

func unmarshalTPHeader(b []byte) TPHeader {
	word := binary.BigEndian.Uint32(b)
	return TPHeader{
		offset:       word &^ 0xf,
		moreSegments: word&0x1 != 0,
	}
}

func tpHeaderMarshalBinaryTo(t *TPHeader, b []byte) {
	word := t.offset
	if t.moreSegments {
		word |= 0x1
	}
	binary.BigEndian.PutUint32(b, word)
}

// MarshalBinaryTo writes the 4-byte TP header to b.
func (t TPHeader) MarshalBinaryTo(b []byte) (int, error) {
	if len(b) < SomeipTPHeaderLength {
		return 0, &SliceWriteSpaceError{Required: SomeipTPHeaderLength, Len: len(b), Layer: LayerSomeipTPHeader}
	}
	tpHeaderMarshalBinaryTo(&t, b)
	return SomeipTPHeaderLength, nil
}
