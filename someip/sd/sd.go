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

// Package sd implements the codec for the SOME/IP Service Discovery (SD)
// sub-protocol: the SD header, its Service/Eventgroup entries, and its
// typed, length-prefixed options. It implements only the wire format — no
// discovery state machine (offer/subscribe lifecycle) lives here.
package sd

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/facebook/someip/someip/protocol"
)

// Wire layout constants (AUTOSAR SOME/IP-SD).
const (
	minHeaderLength      = 1 + 3 + 4 + 4
	entryLength          = 16
	optionHeaderLength   = 4
	headerFlagReboot     = 0x80
	headerFlagUnicast    = 0x40
	headerFlagExplicit   = 0x20
	entryFlagInitialData = 0x80

	// maxArrayLenBytes bounds entries_len_bytes / options_len_bytes: 1400
	// (UDP max payload) minus the 4-byte SD header minus the two 4-byte
	// length prefixes.
	maxArrayLenBytes = 1400 - 4 - 4 - 4
)

// Header is a decoded Service Discovery PDU: the three flag bits plus the
// entries and options it carries.
type Header struct {
	Reboot                     bool
	Unicast                    bool
	ExplicitInitialDataControl bool
	Entries                    []Entry
	Options                    []Option
}

// NewHeader returns a Header with the defaults expected in current
// deployments: Unicast and ExplicitInitialDataControl both set.
func NewHeader() Header {
	return Header{Unicast: true, ExplicitInitialDataControl: true}
}

// SDEntriesArrayLengthTooLargeError means the header declared more entry
// bytes than fit in a single UDP payload.
type SDEntriesArrayLengthTooLargeError struct{ N uint32 }

func (e *SDEntriesArrayLengthTooLargeError) Error() string {
	return errors.Errorf("someip/sd: entries array length %d exceeds the maximum of %d bytes", e.N, maxArrayLenBytes).Error()
}

// SDOptionsArrayLengthTooLargeError means the header declared more option
// bytes than fit in a single UDP payload.
type SDOptionsArrayLengthTooLargeError struct{ N uint32 }

func (e *SDOptionsArrayLengthTooLargeError) Error() string {
	return errors.Errorf("someip/sd: options array length %d exceeds the maximum of %d bytes", e.N, maxArrayLenBytes).Error()
}

// Read decodes a Service Discovery PDU from the payload of a SOME/IP SD
// message (i.e. the bytes following the SOME/IP header). It reports no
// metrics; use ReadWithMetrics to count unknown discardable options.
func Read(b []byte) (Header, error) {
	return ReadWithMetrics(b, nil)
}

// ReadWithMetrics behaves exactly like Read, additionally incrementing m's
// someip_sd_unknown_discardable_total counter once per UnknownDiscardableOption
// decoded. m may be nil.
func ReadWithMetrics(b []byte, m *Metrics) (Header, error) {
	if len(b) < minHeaderLength {
		return Header{}, protocol.ErrUnexpectedEndOfSlice(protocol.LayerSomeipPayload, minHeaderLength, len(b))
	}
	h := Header{
		Reboot:                     b[0]&headerFlagReboot != 0,
		Unicast:                    b[0]&headerFlagUnicast != 0,
		ExplicitInitialDataControl: b[0]&headerFlagExplicit != 0,
	}
	pos := 4

	entriesLen := binary.BigEndian.Uint32(b[pos:])
	pos += 4
	if entriesLen > maxArrayLenBytes {
		return Header{}, &SDEntriesArrayLengthTooLargeError{N: entriesLen}
	}
	if uint32(len(b)-pos) < entriesLen {
		return Header{}, protocol.ErrUnexpectedEndOfSlice(protocol.LayerSomeipPayload, pos+int(entriesLen), len(b))
	}
	entries, err := readEntries(b[pos : pos+int(entriesLen)])
	if err != nil {
		return Header{}, err
	}
	h.Entries = entries
	pos += int(entriesLen)

	if len(b)-pos < 4 {
		return Header{}, protocol.ErrUnexpectedEndOfSlice(protocol.LayerSomeipPayload, pos+4, len(b))
	}
	optionsLen := binary.BigEndian.Uint32(b[pos:])
	pos += 4
	if optionsLen > maxArrayLenBytes {
		return Header{}, &SDOptionsArrayLengthTooLargeError{N: optionsLen}
	}
	if uint32(len(b)-pos) < optionsLen {
		return Header{}, protocol.ErrUnexpectedEndOfSlice(protocol.LayerSomeipPayload, pos+int(optionsLen), len(b))
	}
	options, err := readOptions(b[pos:pos+int(optionsLen)], m)
	if err != nil {
		return Header{}, err
	}
	h.Options = options

	return h, nil
}

// Len returns the exact number of bytes WriteTo will write for h.
func (h Header) Len() int {
	n := minHeaderLength
	n += len(h.Entries) * entryLength
	for _, o := range h.Options {
		n += optionHeaderLength + o.payloadLen()
	}
	return n
}

// WriteTo serializes h into a freshly allocated slice sized by Len.
func (h Header) WriteTo() ([]byte, error) {
	b := make([]byte, h.Len())
	if err := h.WriteToSlice(b); err != nil {
		return nil, err
	}
	return b, nil
}

// WriteToSlice serializes h into b, which must be at least Len() bytes.
func (h Header) WriteToSlice(b []byte) error {
	need := h.Len()
	if len(b) < need {
		return &protocol.SliceWriteSpaceError{Required: need, Len: len(b), Layer: protocol.LayerSomeipPayload}
	}
	var flags byte
	if h.Reboot {
		flags |= headerFlagReboot
	}
	if h.Unicast {
		flags |= headerFlagUnicast
	}
	if h.ExplicitInitialDataControl {
		flags |= headerFlagExplicit
	}
	b[0] = flags
	b[1], b[2], b[3] = 0, 0, 0

	pos := 4
	binary.BigEndian.PutUint32(b[pos:], uint32(len(h.Entries)*entryLength))
	pos += 4
	for _, e := range h.Entries {
		e.writeTo(b[pos:])
		pos += entryLength
	}

	optLenPos := pos
	pos += 4
	optStart := pos
	for _, o := range h.Options {
		n, err := o.writeTo(b[pos:])
		if err != nil {
			return err
		}
		pos += n
	}
	binary.BigEndian.PutUint32(b[optLenPos:], uint32(pos-optStart))

	return nil
}
