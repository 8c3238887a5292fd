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

package sd

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/facebook/someip/someip/protocol"
)

func TestHeaderRoundTrip(t *testing.T) {
	entry, err := NewOfferServiceEntry(EntryCommon{
		NumberOfOptions1: 1,
		ServiceID:        0x0102,
		InstanceID:       0x0304,
		MajorVersion:     1,
		TTL:              60,
	}, 0)
	require.NoError(t, err)

	option := NewIPv4EndpointOption(net.ParseIP("192.168.0.1"), protocol.TransportProtocolUDP, 30500, EndpointKindUnicast, false)

	h := Header{
		Reboot:                     true,
		Unicast:                    true,
		ExplicitInitialDataControl: true,
		Entries:                    []Entry{entry},
		Options:                    []Option{option},
	}

	wire, err := h.WriteTo()
	require.NoError(t, err)
	require.Len(t, wire, h.Len())

	got, err := Read(wire)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestHeaderRoundTripEmpty(t *testing.T) {
	h := NewHeader()
	wire, err := h.WriteTo()
	require.NoError(t, err)

	got, err := Read(wire)
	require.NoError(t, err)
	// Read always allocates (possibly zero-length) slices for Entries/Options,
	// so compare against an equivalent Header rather than h itself, whose
	// zero-value fields are nil.
	h.Entries = []Entry{}
	h.Options = []Option{}
	require.Equal(t, h, got)
}

func TestReadRejectsTruncatedHeader(t *testing.T) {
	_, err := Read([]byte{0, 0, 0})
	require.Error(t, err)
	var lenErr *protocol.LenError
	require.ErrorAs(t, err, &lenErr)
}

func TestReadRejectsOversizedEntriesLength(t *testing.T) {
	b := make([]byte, minHeaderLength)
	b[4] = 0xff // entries_len high byte absurdly large
	_, err := Read(b)
	require.Error(t, err)
	var tooLarge *SDEntriesArrayLengthTooLargeError
	require.ErrorAs(t, err, &tooLarge)
}
