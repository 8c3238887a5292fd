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
	"testing"

	"github.com/stretchr/testify/require"
)

// sequence returns n bytes, the i-th equal to byte(start+i), so
// concatenating sequence(0,16), sequence(16,16), sequence(32,16) yields
// sequence(0,48).
func sequence(start uint32, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(int(start) + i)
	}
	return b
}

func buildTPSegment(t *testing.T, offset uint32, payload []byte, more bool) MessageView {
	t.Helper()
	tp, err := NewTPHeaderWithOffset(offset, more)
	require.NoError(t, err)
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
	return view
}

func TestTPBufReassemblyInOrder(t *testing.T) {
	buf := NewTPBuf(DefaultTPBufConfig())
	require.NoError(t, buf.ConsumeTP(buildTPSegment(t, 0, sequence(0, 16), true)))
	require.NoError(t, buf.ConsumeTP(buildTPSegment(t, 16, sequence(16, 16), true)))
	require.NoError(t, buf.ConsumeTP(buildTPSegment(t, 32, sequence(32, 16), false)))

	require.True(t, buf.IsComplete())
	view, err := buf.TryFinalize()
	require.NoError(t, err)
	require.Equal(t, sequence(0, 48), view.Payload())
	require.Equal(t, uint32(56), view.Length())
	require.False(t, view.IsTP())
}

func TestTPBufReassemblyReverseOrder(t *testing.T) {
	buf := NewTPBuf(DefaultTPBufConfig())
	require.NoError(t, buf.ConsumeTP(buildTPSegment(t, 32, sequence(32, 16), false)))
	require.NoError(t, buf.ConsumeTP(buildTPSegment(t, 16, sequence(16, 16), true)))
	require.NoError(t, buf.ConsumeTP(buildTPSegment(t, 0, sequence(0, 16), true)))

	require.True(t, buf.IsComplete())
	view, err := buf.TryFinalize()
	require.NoError(t, err)
	require.Equal(t, sequence(0, 48), view.Payload())
	require.Equal(t, uint32(56), view.Length())
}

func TestTPBufReassemblyOverlappingFinalThenMiddle(t *testing.T) {
	buf := NewTPBuf(DefaultTPBufConfig())
	require.NoError(t, buf.ConsumeTP(buildTPSegment(t, 0, sequence(0, 16), true)))
	require.NoError(t, buf.ConsumeTP(buildTPSegment(t, 32, make([]byte, 16), true)))
	require.NoError(t, buf.ConsumeTP(buildTPSegment(t, 32, sequence(32, 16), false)))
	require.NoError(t, buf.ConsumeTP(buildTPSegment(t, 16, sequence(16, 16), true)))

	require.True(t, buf.IsComplete())
	view, err := buf.TryFinalize()
	require.NoError(t, err)
	require.Equal(t, sequence(0, 48), view.Payload())
}

func TestTPBufReassemblyLargeFirstThenSmallerFinal(t *testing.T) {
	buf := NewTPBuf(DefaultTPBufConfig())
	require.NoError(t, buf.ConsumeTP(buildTPSegment(t, 0, sequence(0, 64), true)))
	require.NoError(t, buf.ConsumeTP(buildTPSegment(t, 0, sequence(0, 16), false)))

	require.True(t, buf.IsComplete())
	view, err := buf.TryFinalize()
	require.NoError(t, err)
	require.Equal(t, sequence(0, 64), view.Payload())
	require.Equal(t, uint32(72), view.Length())
}

func TestTPBufRejectsUnalignedNonFinalSegment(t *testing.T) {
	buf := NewTPBuf(DefaultTPBufConfig())
	err := buf.ConsumeTP(buildTPSegment(t, 0, sequence(0, 15), true))
	require.Error(t, err)
	var unaligned *UnalignedTPPayloadLenError
	require.ErrorAs(t, err, &unaligned)
}

func TestTPBufRejectsConflictingEnd(t *testing.T) {
	buf := NewTPBuf(DefaultTPBufConfig())
	require.NoError(t, buf.ConsumeTP(buildTPSegment(t, 0, sequence(0, 16), false)))
	err := buf.ConsumeTP(buildTPSegment(t, 16, sequence(16, 16), false))
	require.Error(t, err)
	var conflict *ConflictingEndError
	require.ErrorAs(t, err, &conflict)
}

func TestTPBufClearResetsState(t *testing.T) {
	buf := NewTPBuf(DefaultTPBufConfig())
	require.NoError(t, buf.ConsumeTP(buildTPSegment(t, 0, sequence(0, 16), false)))
	require.True(t, buf.IsComplete())

	buf.Clear()
	require.False(t, buf.IsComplete())
	require.NoError(t, buf.ConsumeTP(buildTPSegment(t, 0, sequence(100, 16), false)))
	require.True(t, buf.IsComplete())
	view, err := buf.TryFinalize()
	require.NoError(t, err)
	require.Equal(t, sequence(100, 16), view.Payload())
}
