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
	"encoding/binary"
	"fmt"
	"net"

	"github.com/facebook/someip/someip/protocol"
)

// OptionType discriminates the eight known SD option kinds; any other value
// is either an UnknownDiscardableOption placeholder or a fatal read error.
type OptionType uint8

// Known SD option discriminators.
const (
	OptionTypeConfiguration  OptionType = 0x01
	OptionTypeLoadBalancing  OptionType = 0x02
	OptionTypeIPv4Endpoint   OptionType = 0x04
	OptionTypeIPv6Endpoint   OptionType = 0x06
	OptionTypeIPv4Multicast  OptionType = 0x14
	OptionTypeIPv6Multicast  OptionType = 0x16
	OptionTypeIPv4SDEndpoint OptionType = 0x24
	OptionTypeIPv6SDEndpoint OptionType = 0x26
)

const optionDiscardableFlag = 0x80

// ipv4PayloadLen and ipv6PayloadLen are length-1 (i.e. bytes after the
// length+type+flags header) for every IPv4 and IPv6 endpoint/multicast/SD-endpoint
// option respectively.
const ipv4PayloadLen = 8 // 4 addr + 1 reserved + 1 proto + 2 port
const ipv6PayloadLen = 20

// Option is implemented by every concrete SD option kind, including
// UnknownDiscardableOption.
type Option interface {
	Type() OptionType
	Discardable() bool
	// payloadLen is length-1: the number of bytes following the 4-byte
	// length+type+flags option header.
	payloadLen() int
	writeTo(b []byte) (int, error)
}

// ConfigurationOption carries an opaque DNS-SD-style configuration string.
// This library passes its bytes through unmodified and does not interpret
// them.
type ConfigurationOption struct {
	Data        []byte
	discardable bool
}

// NewConfigurationOption builds a Configuration option.
func NewConfigurationOption(data []byte, discardable bool) ConfigurationOption {
	return ConfigurationOption{Data: data, discardable: discardable}
}

// Type implements Option.
func (o ConfigurationOption) Type() OptionType { return OptionTypeConfiguration }

// Discardable implements Option.
func (o ConfigurationOption) Discardable() bool { return o.discardable }
func (o ConfigurationOption) payloadLen() int    { return len(o.Data) }

func (o ConfigurationOption) writeTo(b []byte) (int, error) {
	n := optionHeaderLength + len(o.Data)
	if len(b) < n {
		return 0, &protocol.SliceWriteSpaceError{Required: n, Len: len(b), Layer: protocol.LayerSomeipPayload}
	}
	writeOptionHeader(b, len(o.Data)+1, OptionTypeConfiguration, o.discardable)
	copy(b[optionHeaderLength:], o.Data)
	return n, nil
}

// LoadBalancingOption advertises a priority/weight pair for load balancing
// between equivalent service instances.
type LoadBalancingOption struct {
	Priority    uint16
	Weight      uint16
	discardable bool
}

// NewLoadBalancingOption builds a LoadBalancing option.
func NewLoadBalancingOption(priority, weight uint16, discardable bool) LoadBalancingOption {
	return LoadBalancingOption{Priority: priority, Weight: weight, discardable: discardable}
}

// Type implements Option.
func (o LoadBalancingOption) Type() OptionType { return OptionTypeLoadBalancing }

// Discardable implements Option.
func (o LoadBalancingOption) Discardable() bool { return o.discardable }
func (o LoadBalancingOption) payloadLen() int    { return 4 }

func (o LoadBalancingOption) writeTo(b []byte) (int, error) {
	n := optionHeaderLength + 4
	if len(b) < n {
		return 0, &protocol.SliceWriteSpaceError{Required: n, Len: len(b), Layer: protocol.LayerSomeipPayload}
	}
	writeOptionHeader(b, 5, OptionTypeLoadBalancing, o.discardable)
	binary.BigEndian.PutUint16(b[optionHeaderLength:], o.Priority)
	binary.BigEndian.PutUint16(b[optionHeaderLength+2:], o.Weight)
	return n, nil
}

// EndpointKind distinguishes the three endpoint option roles that share the
// same IPv4/IPv6 payload shape.
type EndpointKind uint8

// Endpoint option roles.
const (
	EndpointKindUnicast   EndpointKind = iota // Ipv4Endpoint / Ipv6Endpoint
	EndpointKindMulticast                     // Ipv4Multicast / Ipv6Multicast
	EndpointKindSD                            // Ipv4SdEndpoint / Ipv6SdEndpoint
)

// IPv4EndpointOption is an Ipv4Endpoint, Ipv4Multicast, or Ipv4SdEndpoint option.
type IPv4EndpointOption struct {
	Addr        [4]byte
	Proto       protocol.TransportProtocol
	Port        uint16
	Kind        EndpointKind
	discardable bool
}

// NewIPv4EndpointOption builds an IPv4 endpoint-shaped option of the given kind.
func NewIPv4EndpointOption(addr net.IP, proto protocol.TransportProtocol, port uint16, kind EndpointKind, discardable bool) IPv4EndpointOption {
	var a [4]byte
	copy(a[:], addr.To4())
	return IPv4EndpointOption{Addr: a, Proto: proto, Port: port, Kind: kind, discardable: discardable}
}

// IP returns Addr as a net.IP.
func (o IPv4EndpointOption) IP() net.IP { return net.IP(o.Addr[:]) }

// Type implements Option.
func (o IPv4EndpointOption) Type() OptionType {
	switch o.Kind {
	case EndpointKindMulticast:
		return OptionTypeIPv4Multicast
	case EndpointKindSD:
		return OptionTypeIPv4SDEndpoint
	default:
		return OptionTypeIPv4Endpoint
	}
}

// Discardable implements Option.
func (o IPv4EndpointOption) Discardable() bool { return o.discardable }
func (o IPv4EndpointOption) payloadLen() int    { return ipv4PayloadLen }

func (o IPv4EndpointOption) writeTo(b []byte) (int, error) {
	n := optionHeaderLength + ipv4PayloadLen
	if len(b) < n {
		return 0, &protocol.SliceWriteSpaceError{Required: n, Len: len(b), Layer: protocol.LayerSomeipPayload}
	}
	writeOptionHeader(b, ipv4PayloadLen+1, o.Type(), o.discardable)
	pos := optionHeaderLength
	copy(b[pos:], o.Addr[:])
	b[pos+4] = 0 // reserved
	b[pos+5] = byte(o.Proto)
	binary.BigEndian.PutUint16(b[pos+6:], o.Port)
	return n, nil
}

// IPv6EndpointOption is an Ipv6Endpoint, Ipv6Multicast, or Ipv6SdEndpoint option.
type IPv6EndpointOption struct {
	Addr        [16]byte
	Proto       protocol.TransportProtocol
	Port        uint16
	Kind        EndpointKind
	discardable bool
}

// NewIPv6EndpointOption builds an IPv6 endpoint-shaped option of the given kind.
func NewIPv6EndpointOption(addr net.IP, proto protocol.TransportProtocol, port uint16, kind EndpointKind, discardable bool) IPv6EndpointOption {
	var a [16]byte
	copy(a[:], addr.To16())
	return IPv6EndpointOption{Addr: a, Proto: proto, Port: port, Kind: kind, discardable: discardable}
}

// IP returns Addr as a net.IP.
func (o IPv6EndpointOption) IP() net.IP { return net.IP(o.Addr[:]) }

// Type implements Option.
func (o IPv6EndpointOption) Type() OptionType {
	switch o.Kind {
	case EndpointKindMulticast:
		return OptionTypeIPv6Multicast
	case EndpointKindSD:
		return OptionTypeIPv6SDEndpoint
	default:
		return OptionTypeIPv6Endpoint
	}
}

// Discardable implements Option.
func (o IPv6EndpointOption) Discardable() bool { return o.discardable }
func (o IPv6EndpointOption) payloadLen() int    { return ipv6PayloadLen }

func (o IPv6EndpointOption) writeTo(b []byte) (int, error) {
	n := optionHeaderLength + ipv6PayloadLen
	if len(b) < n {
		return 0, &protocol.SliceWriteSpaceError{Required: n, Len: len(b), Layer: protocol.LayerSomeipPayload}
	}
	writeOptionHeader(b, ipv6PayloadLen+1, o.Type(), o.discardable)
	pos := optionHeaderLength
	copy(b[pos:], o.Addr[:])
	b[pos+16] = 0 // reserved
	b[pos+17] = byte(o.Proto)
	binary.BigEndian.PutUint16(b[pos+18:], o.Port)
	return n, nil
}

// UnknownDiscardableOption is a forward-compatibility placeholder for an
// unrecognized option type whose discardable bit was set. It preserves the
// option's declared length so later entries' option-index references stay
// valid, but its payload bytes are not retained. It cannot be written back:
// doing so returns ErrSDUnknownDiscardableOption.
type UnknownDiscardableOption struct {
	UnknownType OptionType
	// Length is the wire length field as read (includes the flags byte).
	Length uint16
}

// Type implements Option.
func (o UnknownDiscardableOption) Type() OptionType { return o.UnknownType }

// Discardable implements Option. Always true: this placeholder only ever
// exists because the discardable bit was set on an unrecognized type.
func (o UnknownDiscardableOption) Discardable() bool { return true }
func (o UnknownDiscardableOption) payloadLen() int    { return int(o.Length) - 1 }

func (o UnknownDiscardableOption) writeTo([]byte) (int, error) {
	return 0, protocol.ErrSDUnknownDiscardableOption
}

func writeOptionHeader(b []byte, length int, typ OptionType, discardable bool) {
	binary.BigEndian.PutUint16(b[0:], uint16(length))
	b[2] = byte(typ)
	flags := byte(0)
	if discardable {
		flags = optionDiscardableFlag
	}
	b[3] = flags
}

// SDOptionUnexpectedLenError means a known, fixed-length option's declared
// length did not match the constant length its type requires.
type SDOptionUnexpectedLenError struct {
	Expected int
	Actual   int
	Type     OptionType
}

func (e *SDOptionUnexpectedLenError) Error() string {
	return fmt.Sprintf(
		"someip/sd: option type 0x%02x declared length %d, expected %d",
		uint8(e.Type), e.Actual, e.Expected,
	)
}

// UnknownSDOptionTypeError means an option's type byte was not recognized
// and its discardable bit was not set.
type UnknownSDOptionTypeError struct{ Type uint8 }

func (e *UnknownSDOptionTypeError) Error() string {
	return fmt.Sprintf("someip/sd: unknown (non-discardable) option type 0x%02x", e.Type)
}

func readOptions(b []byte, m *Metrics) ([]Option, error) {
	// cap.hint: smallest option is 4-byte header with empty payload (length=1).
	options := make([]Option, 0, len(b)/4)
	pos := 0
	for pos < len(b) {
		if len(b)-pos < optionHeaderLength {
			return nil, protocol.ErrUnexpectedEndOfSlice(protocol.LayerSomeipPayload, optionHeaderLength, len(b)-pos)
		}
		length := binary.BigEndian.Uint16(b[pos:])
		typ := b[pos+2]
		discardable := b[pos+3]&optionDiscardableFlag != 0

		if length == 0 {
			return nil, protocol.ErrSDOptionLengthZero
		}
		payloadLen := int(length) - 1
		if len(b)-pos-optionHeaderLength < payloadLen {
			return nil, protocol.ErrUnexpectedEndOfSlice(protocol.LayerSomeipPayload, optionHeaderLength+payloadLen, len(b)-pos)
		}
		payload := b[pos+optionHeaderLength : pos+optionHeaderLength+payloadLen]

		opt, err := readOption(OptionType(typ), payload, discardable, length, m)
		if err != nil {
			return nil, err
		}
		options = append(options, opt)
		pos += optionHeaderLength + payloadLen
	}
	return options, nil
}

func readOption(typ OptionType, payload []byte, discardable bool, length uint16, m *Metrics) (Option, error) {
	switch typ {
	case OptionTypeConfiguration:
		data := make([]byte, len(payload))
		copy(data, payload)
		return ConfigurationOption{Data: data, discardable: discardable}, nil
	case OptionTypeLoadBalancing:
		if len(payload) != 4 {
			return nil, &SDOptionUnexpectedLenError{Expected: 5, Actual: int(length), Type: typ}
		}
		return LoadBalancingOption{
			Priority:    binary.BigEndian.Uint16(payload[0:]),
			Weight:      binary.BigEndian.Uint16(payload[2:]),
			discardable: discardable,
		}, nil
	case OptionTypeIPv4Endpoint, OptionTypeIPv4Multicast, OptionTypeIPv4SDEndpoint:
		if len(payload) != ipv4PayloadLen {
			return nil, &SDOptionUnexpectedLenError{Expected: ipv4PayloadLen + 1, Actual: int(length), Type: typ}
		}
		var addr [4]byte
		copy(addr[:], payload[0:4])
		return IPv4EndpointOption{
			Addr:        addr,
			Proto:       protocol.TransportProtocol(payload[5]),
			Port:        binary.BigEndian.Uint16(payload[6:]),
			Kind:        endpointKindOf(typ),
			discardable: discardable,
		}, nil
	case OptionTypeIPv6Endpoint, OptionTypeIPv6Multicast, OptionTypeIPv6SDEndpoint:
		if len(payload) != ipv6PayloadLen {
			return nil, &SDOptionUnexpectedLenError{Expected: ipv6PayloadLen + 1, Actual: int(length), Type: typ}
		}
		var addr [16]byte
		copy(addr[:], payload[0:16])
		return IPv6EndpointOption{
			Addr:        addr,
			Proto:       protocol.TransportProtocol(payload[17]),
			Port:        binary.BigEndian.Uint16(payload[18:]),
			Kind:        endpointKindOf(typ),
			discardable: discardable,
		}, nil
	default:
		if !discardable {
			return nil, &UnknownSDOptionTypeError{Type: uint8(typ)}
		}
		if m != nil {
			m.unknownDiscardableTotal.Inc()
		}
		return UnknownDiscardableOption{UnknownType: typ, Length: length}, nil
	}
}

func endpointKindOf(typ OptionType) EndpointKind {
	switch typ {
	case OptionTypeIPv4Multicast, OptionTypeIPv6Multicast:
		return EndpointKindMulticast
	case OptionTypeIPv4SDEndpoint, OptionTypeIPv6SDEndpoint:
		return EndpointKindSD
	default:
		return EndpointKindUnicast
	}
}
