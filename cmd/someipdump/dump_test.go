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

package main

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/facebook/someip/internal/pcapreplay"
)

// minimalNotificationBytes mirrors the Minimal Notification scenario also
// exercised by someip/protocol's own tests: message_id=0x1234_8234 (service
// 0x1234, event 0x8234), length=12, request_id=1, Notification, payload
// [01 02 03 04].
func minimalNotificationBytes() []byte {
	return []byte{
		0x12, 0x34, 0x82, 0x34,
		0x00, 0x00, 0x00, 0x0c,
		0x00, 0x00, 0x00, 0x01,
		0x01, 0x01, 0x02, 0x00,
		0x01, 0x02, 0x03, 0x04,
	}
}

func TestDumpFileSmokeTest(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Ports = []uint16{30509}
	registerPorts(cfg)

	data, err := pcapreplay.BuildUDPCapture([]pcapreplay.Packet{
		{
			SrcIP:     net.ParseIP("192.168.0.10").To4(),
			DstIP:     net.ParseIP("192.168.0.20").To4(),
			SrcPort:   30509,
			DstPort:   30509,
			Payload:   minimalNotificationBytes(),
			Timestamp: time.Unix(0, 0),
		},
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "fixture.pcap")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	rows, err := dumpFile(cfg, path, false)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	r := rows[0]
	require.Equal(t, uint16(0x1234), r.serviceID)
	require.Equal(t, uint16(0x8234), r.methodID)
	require.True(t, r.isEvent)
	require.Equal(t, "Notification", r.msgType)
	require.Equal(t, 4, r.payloadLen)
}
