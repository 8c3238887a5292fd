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

// Package tppool multiplexes SOME/IP-TP reassembly across concurrently
// in-flight streams, keyed by a caller-chosen channel id plus the wire
// request id.
package tppool

import (
	"hash/fnv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/facebook/someip/someip/protocol"
)

// ChannelID disambiguates TP streams that share a wire request_id but
// belong to different connections (e.g. distinct UDP 4-tuples).
type ChannelID uint64

// ChannelIDFromTuple hashes a UDP/TCP 4-tuple down to a ChannelID. It is a
// convenience for the common case; callers are free to construct a
// ChannelID however suits them.
func ChannelIDFromTuple(srcIP, dstIP string, srcPort, dstPort uint16) ChannelID {
	h := fnv.New64a()
	_, _ = h.Write([]byte(srcIP))
	_, _ = h.Write([]byte{byte(srcPort >> 8), byte(srcPort)})
	_, _ = h.Write([]byte(dstIP))
	_, _ = h.Write([]byte{byte(dstPort >> 8), byte(dstPort)})
	return ChannelID(h.Sum64())
}

type streamKey struct {
	channel   ChannelID
	requestID uint32
}

type activeStream struct {
	buf       *protocol.TPBuf
	timestamp time.Time
}

// Metrics are the optional Prometheus collectors a Pool reports through.
// Construct with NewMetrics and pass to NewPool; pass nil to disable.
type Metrics struct {
	activeStreams prometheus.Gauge
	evictedTotal  prometheus.Counter
}

// NewMetrics registers the pool's gauges/counters against reg. If reg is
// nil, the returned Metrics is inert: Pool operations remain side-effect
// free on the metrics path, matching the optional-registerer pattern used
// elsewhere in this corpus's stats packages.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		activeStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "someip_tppool_active_streams",
			Help: "Number of SOME/IP-TP streams currently being reassembled.",
		}),
		evictedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "someip_tppool_evicted_total",
			Help: "Total number of SOME/IP-TP streams evicted by Retain before completion.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.activeStreams, m.evictedTotal)
	}
	return m
}

// Pool reassembles SOME/IP-TP messages across many concurrently in-flight
// streams. It is not safe for concurrent use; shard one Pool per worker if
// you need concurrency, the same way ptp4u shards per-worker subscriptions.
type Pool struct {
	active   map[streamKey]*activeStream
	finished []*protocol.TPBuf
	config   protocol.TPBufConfig
	metrics  *Metrics
	logger   *log.Logger
}

// NewPool builds a Pool using cfg for any buffer it allocates. metrics and
// logger may both be nil.
func NewPool(cfg protocol.TPBufConfig, metrics *Metrics, logger *log.Logger) *Pool {
	return &Pool{
		active:  make(map[streamKey]*activeStream),
		config:  cfg,
		metrics: metrics,
		logger:  logger,
	}
}

func (p *Pool) takeBuf() *protocol.TPBuf {
	if n := len(p.finished); n > 0 {
		buf := p.finished[n-1]
		p.finished = p.finished[:n-1]
		buf.Clear()
		return buf
	}
	return protocol.NewTPBuf(p.config)
}

func (p *Pool) release(buf *protocol.TPBuf) {
	p.finished = append(p.finished, buf)
}

// Consume folds one message view into the pool. Non-TP views are returned
// unchanged immediately. TP views are appended to their stream's buffer; the
// second return value is true only when that stream just completed, in
// which case the returned view is the reassembled, non-TP message borrowed
// from the pool's free-list slot (valid only until the next Consume call).
func (p *Pool) Consume(channel ChannelID, timestamp time.Time, view protocol.MessageView) (protocol.MessageView, bool, error) {
	if !view.IsTP() {
		return view, true, nil
	}

	key := streamKey{channel: channel, requestID: view.RequestID()}
	stream, ok := p.active[key]
	if !ok {
		stream = &activeStream{buf: p.takeBuf()}
		p.active[key] = stream
		if p.metrics != nil {
			p.metrics.activeStreams.Inc()
		}
	}
	stream.timestamp = timestamp

	if err := stream.buf.ConsumeTP(view); err != nil {
		return protocol.MessageView{}, false, err
	}

	if !stream.buf.IsComplete() {
		return protocol.MessageView{}, false, nil
	}

	delete(p.active, key)
	if p.metrics != nil {
		p.metrics.activeStreams.Dec()
	}
	finalView, err := stream.buf.TryFinalize()
	p.release(stream.buf)
	if err != nil {
		return protocol.MessageView{}, false, err
	}
	return finalView, true, nil
}

// Retain evicts every active stream whose most recent timestamp fails
// keep, moving its buffer to the free-list. This is the caller's sole tool
// for bounding memory against streams that never complete; the Pool itself
// never looks at the clock or imposes a cap on the number of active streams.
func (p *Pool) Retain(keep func(time.Time) bool) {
	evicted := 0
	for key, stream := range p.active {
		if keep(stream.timestamp) {
			continue
		}
		delete(p.active, key)
		p.release(stream.buf)
		evicted++
	}
	if evicted == 0 {
		return
	}
	if p.metrics != nil {
		p.metrics.activeStreams.Sub(float64(evicted))
		p.metrics.evictedTotal.Add(float64(evicted))
	}
	if p.logger != nil {
		p.logger.Debugf("someip tppool: evicted %d stale stream(s)", evicted)
	}
}

// ActiveStreams returns the number of streams currently being reassembled.
func (p *Pool) ActiveStreams() int { return len(p.active) }
