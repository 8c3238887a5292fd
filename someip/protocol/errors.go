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

import (
	"errors"
	"fmt"
)

// Layer identifies which part of a SOME/IP message an error occurred in.
type Layer int

// Layers an error can be attributed to.
const (
	LayerSomeipHeader Layer = iota
	LayerSomeipTPHeader
	LayerSomeipPayload
)

func (l Layer) String() string {
	switch l {
	case LayerSomeipHeader:
		return "SOME/IP header"
	case LayerSomeipTPHeader:
		return "SOME/IP-TP header"
	case LayerSomeipPayload:
		return "SOME/IP payload"
	default:
		return fmt.Sprintf("Layer(%d)", int(l))
	}
}

// LenSource identifies where the "required length" in a LenError came from.
type LenSource int

// Sources of a required-length value.
const (
	LenSourceSlice LenSource = iota
	LenSourceSomeipHeaderLength
)

func (s LenSource) String() string {
	switch s {
	case LenSourceSlice:
		return "the slice length"
	case LenSourceSomeipHeaderLength:
		return "the length field of the SOME/IP header"
	default:
		return fmt.Sprintf("LenSource(%d)", int(s))
	}
}

// LenError indicates a byte slice was too short to decode some layer.
type LenError struct {
	RequiredLen int
	Len         int
	LenSource   LenSource
	Layer       Layer
}

func (e *LenError) Error() string {
	return fmt.Sprintf(
		"someip: not enough data to decode %s: %d byte(s) would be required, but only %d byte(s) are available based on %s",
		e.Layer, e.RequiredLen, e.Len, e.LenSource,
	)
}

// ErrUnexpectedEndOfSlice is a convenience constructor for the common "slice too short" LenError.
func ErrUnexpectedEndOfSlice(layer Layer, required, actual int) error {
	return &LenError{RequiredLen: required, Len: actual, LenSource: LenSourceSlice, Layer: layer}
}

// UnsupportedProtocolVersionError means the header's protocol_version byte was not 1.
type UnsupportedProtocolVersionError struct {
	Version uint8
}

func (e *UnsupportedProtocolVersionError) Error() string {
	return fmt.Sprintf("someip: unsupported protocol version %d, only version 1 is supported", e.Version)
}

// UnknownMessageTypeError means the header's message_type byte (TP flag masked off) was not recognized.
type UnknownMessageTypeError struct {
	Raw uint8
}

func (e *UnknownMessageTypeError) Error() string {
	return fmt.Sprintf("someip: unknown message type 0x%02x", e.Raw)
}

// LengthFieldTooSmallError means the header's length field was below the
// minimum of 8 (or 12 when the TP flag is set).
type LengthFieldTooSmallError struct {
	Length uint32
}

func (e *LengthFieldTooSmallError) Error() string {
	return fmt.Sprintf("someip: length field %d is smaller than the minimum (8, or 12 for SOME/IP-TP messages)", e.Length)
}

// ErrTPOffsetNotMultipleOf16 is returned when a TP offset is not a multiple of 16.
var ErrTPOffsetNotMultipleOf16 = errors.New("someip: TP offset is not a multiple of 16")

// TPOffsetNotMultipleOf16Error carries the offending offset alongside ErrTPOffsetNotMultipleOf16.
type TPOffsetNotMultipleOf16Error struct {
	BadOffset uint32
}

func (e *TPOffsetNotMultipleOf16Error) Error() string {
	return fmt.Sprintf("someip: TP offset %d is not a multiple of 16 (this is required)", e.BadOffset)
}

func (e *TPOffsetNotMultipleOf16Error) Unwrap() error {
	return ErrTPOffsetNotMultipleOf16
}

// UnalignedTPPayloadLenError means a non-final TP segment's payload length was not a multiple of 16.
type UnalignedTPPayloadLenError struct {
	Offset     uint32
	PayloadLen int
}

func (e *UnalignedTPPayloadLenError) Error() string {
	return fmt.Sprintf(
		"someip: TP segment at offset %d has payload length %d, which is not a multiple of 16, but more_segments is set",
		e.Offset, e.PayloadLen,
	)
}

// SegmentTooBigError means a TP segment's payload would exceed the pool's configured maximum.
type SegmentTooBigError struct {
	Offset     uint32
	PayloadLen int
	Max        uint32
}

func (e *SegmentTooBigError) Error() string {
	return fmt.Sprintf(
		"someip: TP segment at offset %d with payload length %d exceeds the maximum payload length of %d",
		e.Offset, e.PayloadLen, e.Max,
	)
}

// ConflictingEndError means a TP segment's implied message end conflicts with a previously observed final end.
type ConflictingEndError struct {
	PreviousEnd    uint32
	ConflictingEnd uint32
}

func (e *ConflictingEndError) Error() string {
	return fmt.Sprintf(
		"someip: TP segment implies end %d, conflicting with previously observed end %d",
		e.ConflictingEnd, e.PreviousEnd,
	)
}

// AllocationFailureError means growing the reassembly buffer to the requested length failed.
type AllocationFailureError struct {
	Len int
}

func (e *AllocationFailureError) Error() string {
	return fmt.Sprintf("someip: failed to grow TP reassembly buffer to %d bytes", e.Len)
}

// MaxPayloadLenTooBigError means a TPBufConfig's configured max payload length exceeded what the format can express.
type MaxPayloadLenTooBigError struct {
	AllowedMax uint32
	Actual     uint32
}

func (e *MaxPayloadLenTooBigError) Error() string {
	return fmt.Sprintf("someip: TP max payload length %d exceeds the allowed maximum of %d", e.Actual, e.AllowedMax)
}

// Value-construction errors (setters/builders), exposed as sentinels since none of them carry data
// beyond what the call site already has in scope.
var (
	ErrLengthTooLarge               = errors.New("someip: payload length exceeds the maximum representable in the length field")
	ErrCounterTooLarge              = errors.New("someip: SD eventgroup counter exceeds 0x0F")
	ErrTTLTooLarge                  = errors.New("someip: SD entry TTL exceeds 0x00FFFFFF")
	ErrTTLZeroIndicatesStopOffering = errors.New("someip: a TTL of zero indicates StopOffer semantics; use NewStopOfferServiceEntry")
	ErrNumberOfOption1TooLarge      = errors.New("someip: SD entry number_of_options_1 exceeds 0x0F")
	ErrNumberOfOption2TooLarge      = errors.New("someip: SD entry number_of_options_2 exceeds 0x0F")
	ErrSDUnknownDiscardableOption   = errors.New("someip: cannot write a placeholder for an unknown discardable SD option")
	ErrSDOptionLengthZero           = errors.New("someip: SD option length field is zero")
	ErrMethodIDOutOfRange           = errors.New("someip: method id exceeds 0x7FFF")
)

// SliceWriteSpaceError means a target slice did not have enough room to write some layer.
type SliceWriteSpaceError struct {
	Required int
	Len      int
	Layer    Layer
}

func (e *SliceWriteSpaceError) Error() string {
	return fmt.Sprintf(
		"someip: not enough space to write %s to slice, needed %d byte(s), but only %d byte(s) were available",
		e.Layer, e.Required, e.Len,
	)
}
