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

// Package pcapreplay synthesizes small pcap captures in memory, for tests
// that need to drive cmd/someipdump without a recorded fixture file on disk.
package pcapreplay

import (
	"bytes"
	"net"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// Packet is one synthetic UDP datagram to encode into a capture.
type Packet struct {
	SrcIP, DstIP     net.IP
	SrcPort, DstPort uint16
	Payload          []byte
	Timestamp        time.Time
}

// BuildUDPCapture serializes pkts as a sequence of Ethernet/IPv4/UDP frames
// into a pcap byte stream readable by pcapgo.NewReader (and so, by
// cmd/someipdump).
func BuildUDPCapture(pkts []Packet) ([]byte, error) {
	var buf bytes.Buffer
	w := pcapgo.NewWriter(&buf)
	if err := w.WriteFileHeader(65536, layers.LinkTypeEthernet); err != nil {
		return nil, err
	}

	serializeOpts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	for _, p := range pkts {
		eth := &layers.Ethernet{
			SrcMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 0x01},
			DstMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 0x02},
			EthernetType: layers.EthernetTypeIPv4,
		}
		ip := &layers.IPv4{
			Version:  4,
			TTL:      64,
			Protocol: layers.IPProtocolUDP,
			SrcIP:    p.SrcIP,
			DstIP:    p.DstIP,
		}
		udp := &layers.UDP{
			SrcPort: layers.UDPPort(p.SrcPort),
			DstPort: layers.UDPPort(p.DstPort),
		}
		if err := udp.SetNetworkLayerForChecksum(ip); err != nil {
			return nil, err
		}

		sb := gopacket.NewSerializeBuffer()
		if err := gopacket.SerializeLayers(sb, serializeOpts, eth, ip, udp, gopacket.Payload(p.Payload)); err != nil {
			return nil, err
		}

		ci := gopacket.CaptureInfo{
			Timestamp:     p.Timestamp,
			CaptureLength: len(sb.Bytes()),
			Length:        len(sb.Bytes()),
		}
		if err := w.WritePacket(ci, sb.Bytes()); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
