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

func TestNewTPHeaderWithOffsetAcceptsMultiplesOf16(t *testing.T) {
	for _, offset := range []uint32{0, 16, 32, 48, 16 * 1000} {
		tp, err := NewTPHeaderWithOffset(offset, offset == 0)
		require.NoError(t, err)
		require.Equal(t, offset, tp.Offset())
	}
}

func TestNewTPHeaderWithOffsetRejectsNonMultiplesOf16(t *testing.T) {
	for _, offset := range []uint32{1, 15, 17, 31, 100} {
		_, err := NewTPHeaderWithOffset(offset, false)
		require.Error(t, err)
		require.ErrorIs(t, err, ErrTPOffsetNotMultipleOf16)
	}
}

func TestTPHeaderSetOffsetLeavesUnchangedOnError(t *testing.T) {
	tp, err := NewTPHeaderWithOffset(32, true)
	require.NoError(t, err)

	err = tp.SetOffset(33)
	require.Error(t, err)
	require.Equal(t, uint32(32), tp.Offset())

	require.NoError(t, tp.SetOffset(64))
	require.Equal(t, uint32(64), tp.Offset())
}

func TestTPHeaderMarshalRoundTrip(t *testing.T) {
	tp, err := NewTPHeaderWithOffset(48, true)
	require.NoError(t, err)

	b := make([]byte, SomeipTPHeaderLength)
	n, err := tp.MarshalBinaryTo(b)
	require.NoError(t, err)
	require.Equal(t, SomeipTPHeaderLength, n)

	got := unmarshalTPHeader(b)
	require.Equal(t, tp, got)
}
