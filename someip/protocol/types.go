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

import "fmt"

// MessageType is the SOME/IP message_type field with the TP flag masked off.
type MessageType uint8

// Well-known message types (AUTOSAR SOME/IP, Table "Message Type").
const (
	MessageTypeRequest         MessageType = 0x00
	MessageTypeRequestNoReturn MessageType = 0x01
	MessageTypeNotification    MessageType = 0x02
	MessageTypeResponse        MessageType = 0x80
	MessageTypeError           MessageType = 0x81
)

var messageTypeNames = map[MessageType]string{
	MessageTypeRequest:         "Request",
	MessageTypeRequestNoReturn: "RequestNoReturn",
	MessageTypeNotification:    "Notification",
	MessageTypeResponse:        "Response",
	MessageTypeError:           "Error",
}

func (t MessageType) String() string {
	if s, ok := messageTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("MessageType(0x%02x)", uint8(t))
}

// IsKnown reports whether t is one of the five defined message types.
func (t MessageType) IsKnown() bool {
	_, ok := messageTypeNames[t]
	return ok
}

// messageTypeTPFlag is bit 5 (0x20) of the wire message_type byte.
const messageTypeTPFlag uint8 = 0x20

// ReturnCode is the SOME/IP return_code field.
type ReturnCode uint8

// Well-known return codes (AUTOSAR SOME/IP, Table "Return Code").
const (
	ReturnCodeOk                       ReturnCode = 0x00
	ReturnCodeNotOk                    ReturnCode = 0x01
	ReturnCodeUnknownService          ReturnCode = 0x02
	ReturnCodeUnknownMethod           ReturnCode = 0x03
	ReturnCodeNotReady                ReturnCode = 0x04
	ReturnCodeNotReachable            ReturnCode = 0x05
	ReturnCodeTimeout                 ReturnCode = 0x06
	ReturnCodeWrongProtocolVersion    ReturnCode = 0x07
	ReturnCodeWrongInterfaceVersion   ReturnCode = 0x08
	ReturnCodeMalformedMessage        ReturnCode = 0x09
	ReturnCodeWrongMessageType        ReturnCode = 0x0a
)

var returnCodeNames = map[ReturnCode]string{
	ReturnCodeOk:                     "Ok",
	ReturnCodeNotOk:                  "NotOk",
	ReturnCodeUnknownService:         "UnknownService",
	ReturnCodeUnknownMethod:          "UnknownMethod",
	ReturnCodeNotReady:               "NotReady",
	ReturnCodeNotReachable:           "NotReachable",
	ReturnCodeTimeout:                "Timeout",
	ReturnCodeWrongProtocolVersion:   "WrongProtocolVersion",
	ReturnCodeWrongInterfaceVersion:  "WrongInterfaceVersion",
	ReturnCodeMalformedMessage:       "MalformedMessage",
	ReturnCodeWrongMessageType:       "WrongMessageType",
}

func (r ReturnCode) String() string {
	if s, ok := returnCodeNames[r]; ok {
		return s
	}
	switch {
	case r >= 0x0b && r <= 0x1f:
		return fmt.Sprintf("Generic(0x%02x)", uint8(r))
	case r >= 0x20 && r <= 0x5e:
		return fmt.Sprintf("InterfaceError(0x%02x)", uint8(r))
	default:
		return fmt.Sprintf("ReturnCode(0x%02x)", uint8(r))
	}
}

// IsGeneric reports whether r falls in the 0x0B..0x1F generic-error range.
func (r ReturnCode) IsGeneric() bool {
	return r >= 0x0b && r <= 0x1f
}

// IsInterfaceError reports whether r falls in the 0x20..0x5E interface-error range.
func (r ReturnCode) IsInterfaceError() bool {
	return r >= 0x20 && r <= 0x5e
}

// TransportProtocol identifies the transport protocol carried in an SD endpoint option.
// Values follow IANA protocol numbers; TCP and UDP are the only ones this library names.
type TransportProtocol uint8

// Well-known transport protocol numbers used in SD endpoint options.
const (
	TransportProtocolTCP TransportProtocol = 0x06
	TransportProtocolUDP TransportProtocol = 0x11
)

func (t TransportProtocol) String() string {
	switch t {
	case TransportProtocolTCP:
		return "TCP"
	case TransportProtocolUDP:
		return "UDP"
	default:
		return fmt.Sprintf("TransportProtocol(0x%02x)", uint8(t))
	}
}

// SomeipSDMessageID is the well-known message_id that identifies a Service Discovery message.
const SomeipSDMessageID uint32 = 0xFFFF_8100

// SomeipHeaderLength is the size in bytes of the fixed SOME/IP header.
const SomeipHeaderLength = 16

// SomeipTPHeaderLength is the size in bytes of the SOME/IP-TP header.
const SomeipTPHeaderLength = 4

// SomeipProtocolVersion is the only protocol_version value this library accepts on read.
const SomeipProtocolVersion uint8 = 1

// SomeipLenOffsetToPayload is the number of header bytes that precede the length field's
// counting origin: length counts bytes starting right after the length field itself.
const SomeipLenOffsetToPayload uint32 = 8

// SomeipMaxPayloadLen is the largest payload length the length field can represent.
const SomeipMaxPayloadLen uint32 = ^uint32(0) - SomeipLenOffsetToPayload
