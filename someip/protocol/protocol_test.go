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
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// scenario1Bytes is the "Minimal Notification" message: message_id=0x1234_8234,
// length=12, request_id=1, interface_version=1, message_type=Notification,
// return_code=0, payload=[01 02 03 04].
func scenario1Bytes() []byte {
	return []byte{
		0x12, 0x34, 0x82, 0x34,
		0x00, 0x00, 0x00, 0x0c,
		0x00, 0x00, 0x00, 0x01,
		0x01, 0x01, 0x02, 0x00,
		0x01, 0x02, 0x03, 0x04,
	}
}

func TestFromSliceMinimalNotification(t *testing.T) {
	view, err := FromSlice(scenario1Bytes())
	require.NoError(t, err)
	require.Equal(t, uint16(0x1234), view.ServiceID())
	require.True(t, view.IsEvent())
	require.Equal(t, uint16(0x8234), view.EventOrMethodID())
	require.False(t, view.IsTP())
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, view.Payload())
	require.Equal(t, uint32(1), view.RequestID())
	require.Equal(t, MessageTypeNotification, view.MessageType())
}

func TestSliceIteratorMinimalNotification(t *testing.T) {
	it := NewSliceIterator(scenario1Bytes())
	require.True(t, it.Next())
	require.NoError(t, it.Err())
	require.Equal(t, uint16(0x1234), it.View().ServiceID())
	require.False(t, it.Next())
	require.NoError(t, it.Err())
}

func TestSliceIteratorStopsOnError(t *testing.T) {
	truncated := scenario1Bytes()[:len(scenario1Bytes())-1]
	it := NewSliceIterator(truncated)

	require.True(t, it.Next())
	require.Error(t, it.Err())
	var lenErr *LenError
	require.ErrorAs(t, it.Err(), &lenErr)

	require.False(t, it.Next())
	require.Error(t, it.Err())
}

func TestHeaderMarshalRoundTrip(t *testing.T) {
	h := &Header{
		MessageID:        0x1234_8234,
		Length:           12,
		RequestID:        1,
		ProtocolVersion:  SomeipProtocolVersion,
		InterfaceVersion: 1,
		MessageTypeRaw:   uint8(MessageTypeNotification),
		ReturnCode:       ReturnCodeOk,
	}
	payload := []byte{0x01, 0x02, 0x03, 0x04}

	wire, err := h.MarshalBinary(payload)
	require.NoError(t, err)
	require.True(t, bytes.Equal(wire, scenario1Bytes()))

	view, err := FromSlice(wire)
	require.NoError(t, err)
	got := view.ToHeader()
	require.Equal(t, *h, got)
	require.Equal(t, payload, view.Payload())
}

func TestHeaderMarshalRoundTripWithTP(t *testing.T) {
	tp, err := NewTPHeaderWithOffset(16, true)
	require.NoError(t, err)
	payload := bytes.Repeat([]byte{0xaa}, 16)
	h := &Header{
		MessageID:        0x1234_8234,
		Length:           SomeipLenOffsetToPayload + SomeipTPHeaderLength + uint32(len(payload)),
		RequestID:        1,
		ProtocolVersion:  SomeipProtocolVersion,
		InterfaceVersion: 1,
		MessageTypeRaw:   uint8(MessageTypeNotification),
		ReturnCode:       ReturnCodeOk,
		TP:               &tp,
	}

	wire, err := h.MarshalBinary(payload)
	require.NoError(t, err)

	view, err := FromSlice(wire)
	require.NoError(t, err)
	require.True(t, view.IsTP())
	require.Equal(t, uint32(16), view.TPHeader().Offset())
	require.True(t, view.TPHeader().MoreSegments())
	require.Equal(t, payload, view.Payload())

	got := view.ToHeader()
	require.NotNil(t, got.TP)
	require.Equal(t, uint32(16), got.TP.Offset())
}

func TestFromSliceRejectsBadProtocolVersion(t *testing.T) {
	b := scenario1Bytes()
	b[12] = 2
	_, err := FromSlice(b)
	require.Error(t, err)
	var verErr *UnsupportedProtocolVersionError
	require.ErrorAs(t, err, &verErr)
}

func TestFromSliceRejectsUnknownMessageType(t *testing.T) {
	b := scenario1Bytes()
	b[14] = 0x7f
	_, err := FromSlice(b)
	require.Error(t, err)
	var typErr *UnknownMessageTypeError
	require.ErrorAs(t, err, &typErr)
}

func TestReadHeader(t *testing.T) {
	h, err := ReadHeader(bytes.NewReader(scenario1Bytes()))
	require.NoError(t, err)
	require.Equal(t, uint32(0x1234_8234), h.MessageID)
	require.False(t, h.IsTP())
	require.Equal(t, uint16(0x1234), h.ServiceID())
}

func TestHeaderSetMethodIDRejectsOutOfRange(t *testing.T) {
	h := &Header{}
	err := h.SetMethodID(0x8000)
	require.ErrorIs(t, err, ErrMethodIDOutOfRange)
	require.Equal(t, uint32(0), h.MessageID)

	require.NoError(t, h.SetMethodID(0x1234))
	id, ok := h.MethodID()
	require.True(t, ok)
	require.Equal(t, uint16(0x1234), id)
}
