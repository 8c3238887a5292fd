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
	"fmt"
	"net"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/facebook/someip/someip/protocol"
	"github.com/facebook/someip/someip/sd"
	"github.com/facebook/someip/someip/tppool"
)

// tpMetrics is shared across every dumpFile call (including the concurrent
// ones runAll spawns): Metrics' prometheus collectors are safe for
// concurrent use, and constructing a fresh Metrics per file would attempt
// to register the same collector names on a shared default registry twice.
var tpMetrics = tppool.NewMetrics(prometheus.NewRegistry())

// sdMetrics counts unknown discardable SD options across every decoded SD
// PDU, for the same cross-goroutine-safe reason as tpMetrics.
var sdMetrics = sd.NewMetrics(prometheus.NewRegistry())

// packetHandle abstracts the handles pcapgo.Reader and pcapgo.NgReader both satisfy.
type packetHandle interface {
	gopacket.PacketDataSource
	LinkType() layers.LinkType
}

// row is one printed someipdump line; built incrementally as a packet's
// layers are peeled apart, then rendered as a tablewriter row.
type row struct {
	src, dst   string
	serviceID  uint16
	methodID   uint16
	isEvent    bool
	msgType    string
	returnCode string
	payloadLen int
	note       string
}

func openCapture(path string) (packetHandle, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	if ng, err := pcapgo.NewNgReader(f, pcapgo.DefaultNgReaderOptions); err == nil {
		return ng, func() { _ = f.Close() }, nil
	}
	if _, err := f.Seek(0, 0); err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("seeking in %s: %w", path, err)
	}
	r, err := pcapgo.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return r, func() { _ = f.Close() }, nil
}

// registerPorts wires cfg's configured ports to LayerTypeSomeIP. gopacket's
// port registry is process-global, so this must happen once before any
// concurrent dumpFile calls, never from inside them.
func registerPorts(cfg *Config) {
	for _, p := range cfg.Ports {
		layers.RegisterUDPPortLayerType(layers.UDPPort(p), LayerTypeSomeIP)
		layers.RegisterTCPPortLayerType(layers.TCPPort(p), LayerTypeSomeIP)
	}
}

// run dumps a single capture file, for callers that only ever have one.
func run(cfg *Config, path string, verbose bool) error {
	registerPorts(cfg)
	rows, err := dumpFile(cfg, path, verbose)
	if err != nil {
		return err
	}
	printRows(path, rows)
	return nil
}

// runAll dumps every file in paths concurrently (one goroutine per file,
// each with its own TPPool, since a Pool is not safe for concurrent use) and
// prints their summary tables in input order once all have finished.
func runAll(cfg *Config, paths []string, verbose bool) error {
	registerPorts(cfg)

	results := make([][]row, len(paths))
	var g errgroup.Group
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			rows, err := dumpFile(cfg, path, verbose)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, path := range paths {
		printRows(path, results[i])
	}
	return nil
}

// dumpFile reads every packet from the pcap/pcapng file at path, demuxes the
// ones that look like SOME/IP traffic on cfg's configured ports, reassembles
// SOME/IP-TP segments, and decodes Service Discovery payloads.
func dumpFile(cfg *Config, path string, verbose bool) ([]row, error) {
	handle, closeFn, err := openCapture(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	pool := tppool.NewPool(protocol.DefaultTPBufConfig(), tpMetrics, log.StandardLogger())
	retainCutoff := time.Duration(cfg.TPRetainSeconds) * time.Second

	var rows []row
	source := gopacket.NewPacketSource(handle, handle.LinkType())
	for packet := range source.Packets() {
		someipLayer := packet.Layer(LayerTypeSomeIP)
		if someipLayer == nil {
			continue
		}
		l, ok := someipLayer.(*LayerSomeIP)
		if !ok {
			continue
		}
		if !cfg.wantsService(l.View.ServiceID()) {
			continue
		}

		srcIP, dstIP, srcPort, dstPort := endpoints(packet)
		if !cfg.wantsPort(srcPort) && !cfg.wantsPort(dstPort) {
			continue
		}
		channel := tppool.ChannelIDFromTuple(srcIP.String(), dstIP.String(), srcPort, dstPort)

		ts := packet.Metadata().Timestamp
		view, complete, err := pool.Consume(channel, ts, l.View)
		if err != nil {
			rows = append(rows, row{
				src: srcIP.String(), dst: dstIP.String(),
				note: fmt.Sprintf("TP reassembly error: %v", err),
			})
			continue
		}
		pool.Retain(func(last time.Time) bool { return ts.Sub(last) < retainCutoff })
		if !complete {
			continue
		}

		r := row{
			src:        net.JoinHostPort(srcIP.String(), fmt.Sprint(srcPort)),
			dst:        net.JoinHostPort(dstIP.String(), fmt.Sprint(dstPort)),
			serviceID:  view.ServiceID(),
			methodID:   view.EventOrMethodID(),
			isEvent:    view.IsEvent(),
			msgType:    view.MessageType().String(),
			returnCode: view.ReturnCode().String(),
			payloadLen: len(view.Payload()),
		}

		if view.IsSomeipSD() {
			header, err := sd.ReadWithMetrics(view.Payload(), sdMetrics)
			if err != nil {
				r.note = fmt.Sprintf("SD decode error: %v", err)
			} else {
				r.note = fmt.Sprintf("SD: %d entries, %d options", len(header.Entries), len(header.Options))
				if verbose {
					spew.Dump(header)
				}
			}
		}
		rows = append(rows, r)
	}

	return rows, nil
}

func endpoints(packet gopacket.Packet) (srcIP, dstIP net.IP, srcPort, dstPort uint16) {
	if ip6 := packet.Layer(layers.LayerTypeIPv6); ip6 != nil {
		ip := ip6.(*layers.IPv6)
		srcIP, dstIP = ip.SrcIP, ip.DstIP
	} else if ip4 := packet.Layer(layers.LayerTypeIPv4); ip4 != nil {
		ip := ip4.(*layers.IPv4)
		srcIP, dstIP = ip.SrcIP, ip.DstIP
	}
	if udp := packet.Layer(layers.LayerTypeUDP); udp != nil {
		u := udp.(*layers.UDP)
		srcPort, dstPort = uint16(u.SrcPort), uint16(u.DstPort)
	} else if tcp := packet.Layer(layers.LayerTypeTCP); tcp != nil {
		t := tcp.(*layers.TCP)
		srcPort, dstPort = uint16(t.SrcPort), uint16(t.DstPort)
	}
	return srcIP, dstIP, srcPort, dstPort
}

func printRows(path string, rows []row) {
	fmt.Printf("== %s ==\n", path)
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Src", "Dst", "Service", "Method/Event", "Type", "Return", "Len", "Note")
	for _, r := range rows {
		event := "method"
		if r.isEvent {
			event = "event"
		}
		_ = table.Append(
			r.src, r.dst,
			fmt.Sprintf("0x%04x", r.serviceID),
			fmt.Sprintf("0x%04x (%s)", r.methodID, event),
			r.msgType, r.returnCode,
			fmt.Sprint(r.payloadLen),
			r.note,
		)
	}
	_ = table.Render()
}
