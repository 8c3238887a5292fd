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

	"github.com/facebook/someip/someip/protocol"
)

// ServiceEntryType discriminates the two Service entry kinds.
type ServiceEntryType uint8

// Service entry discriminators.
const (
	ServiceEntryTypeFindService  ServiceEntryType = 0x00
	ServiceEntryTypeOfferService ServiceEntryType = 0x01
)

// EventgroupEntryType discriminates the two Eventgroup entry kinds.
type EventgroupEntryType uint8

// Eventgroup entry discriminators.
const (
	EventgroupEntryTypeSubscribe    EventgroupEntryType = 0x06
	EventgroupEntryTypeSubscribeAck EventgroupEntryType = 0x07
)

// EntryCommon holds the fields shared by every SD entry shape.
type EntryCommon struct {
	IndexFirstOptionRun  uint8
	IndexSecondOptionRun uint8
	NumberOfOptions1     uint8
	NumberOfOptions2     uint8
	ServiceID            uint16
	InstanceID           uint16
	MajorVersion         uint8
	TTL                  uint32 // 24-bit on the wire
}

func validateCommon(c EntryCommon) error {
	if c.NumberOfOptions1 > 0x0f {
		return protocol.ErrNumberOfOption1TooLarge
	}
	if c.NumberOfOptions2 > 0x0f {
		return protocol.ErrNumberOfOption2TooLarge
	}
	if c.TTL > 0x00ff_ffff {
		return protocol.ErrTTLTooLarge
	}
	return nil
}

// Entry is implemented by ServiceEntry and EventgroupEntry.
type Entry interface {
	writeTo(b []byte)
}

// ServiceEntry is a FindService/OfferService SD entry.
type ServiceEntry struct {
	EntryCommon
	Type         ServiceEntryType
	MinorVersion uint32
}

// NewFindServiceEntry builds a validated FindService entry. TTL of 0 is
// rejected: use a non-zero TTL as the "how long is this request valid for"
// lease duration.
func NewFindServiceEntry(c EntryCommon, minorVersion uint32) (ServiceEntry, error) {
	if c.TTL == 0 {
		return ServiceEntry{}, protocol.ErrTTLZeroIndicatesStopOffering
	}
	if err := validateCommon(c); err != nil {
		return ServiceEntry{}, err
	}
	return ServiceEntry{EntryCommon: c, Type: ServiceEntryTypeFindService, MinorVersion: minorVersion}, nil
}

// NewOfferServiceEntry builds a validated OfferService entry. TTL of 0 is
// rejected; use NewStopOfferServiceEntry to announce withdrawal.
func NewOfferServiceEntry(c EntryCommon, minorVersion uint32) (ServiceEntry, error) {
	if c.TTL == 0 {
		return ServiceEntry{}, protocol.ErrTTLZeroIndicatesStopOffering
	}
	if err := validateCommon(c); err != nil {
		return ServiceEntry{}, err
	}
	return ServiceEntry{EntryCommon: c, Type: ServiceEntryTypeOfferService, MinorVersion: minorVersion}, nil
}

// NewStopOfferServiceEntry builds an OfferService entry with TTL forced to
// zero, the wire encoding of "stop offering this service".
func NewStopOfferServiceEntry(c EntryCommon, minorVersion uint32) (ServiceEntry, error) {
	c.TTL = 0
	if err := validateCommon(c); err != nil {
		return ServiceEntry{}, err
	}
	return ServiceEntry{EntryCommon: c, Type: ServiceEntryTypeOfferService, MinorVersion: minorVersion}, nil
}

func (e ServiceEntry) writeTo(b []byte) {
	b[0] = byte(e.Type)
	b[1] = e.IndexFirstOptionRun
	b[2] = e.IndexSecondOptionRun
	b[3] = e.NumberOfOptions1<<4 | e.NumberOfOptions2&0x0f
	binary.BigEndian.PutUint16(b[4:], e.ServiceID)
	binary.BigEndian.PutUint16(b[6:], e.InstanceID)
	b[8] = e.MajorVersion
	putUint24(b[9:], e.TTL)
	binary.BigEndian.PutUint32(b[12:], e.MinorVersion)
}

// EventgroupEntry is a Subscribe/SubscribeAck SD entry.
type EventgroupEntry struct {
	EntryCommon
	Type                 EventgroupEntryType
	InitialDataRequested bool
	Counter              uint8
	EventgroupID         uint16
}

// NewEventgroupEntry builds a validated Subscribe or SubscribeAck entry.
func NewEventgroupEntry(c EntryCommon, typ EventgroupEntryType, initialDataRequested bool, counter uint8, eventgroupID uint16) (EventgroupEntry, error) {
	if counter > 0x0f {
		return EventgroupEntry{}, protocol.ErrCounterTooLarge
	}
	if err := validateCommon(c); err != nil {
		return EventgroupEntry{}, err
	}
	return EventgroupEntry{
		EntryCommon:          c,
		Type:                 typ,
		InitialDataRequested: initialDataRequested,
		Counter:              counter,
		EventgroupID:         eventgroupID,
	}, nil
}

func (e EventgroupEntry) writeTo(b []byte) {
	b[0] = byte(e.Type)
	b[1] = e.IndexFirstOptionRun
	b[2] = e.IndexSecondOptionRun
	b[3] = e.NumberOfOptions1<<4 | e.NumberOfOptions2&0x0f
	binary.BigEndian.PutUint16(b[4:], e.ServiceID)
	binary.BigEndian.PutUint16(b[6:], e.InstanceID)
	b[8] = e.MajorVersion
	putUint24(b[9:], e.TTL)
	b[12] = 0
	flags := e.Counter & 0x0f
	if e.InitialDataRequested {
		flags |= entryFlagInitialData
	}
	b[13] = flags
	binary.BigEndian.PutUint16(b[14:], e.EventgroupID)
}

// UnknownSDServiceEntryTypeError means an entry's type byte was not one of
// the two recognized Service entry discriminators.
type UnknownSDServiceEntryTypeError struct{ Type uint8 }

func (e *UnknownSDServiceEntryTypeError) Error() string {
	return fmt.Sprintf("someip/sd: unknown service entry type 0x%02x", e.Type)
}

// UnknownSDEventGroupEntryTypeError means an entry's type byte was not one
// of the two recognized Eventgroup entry discriminators.
type UnknownSDEventGroupEntryTypeError struct{ Type uint8 }

func (e *UnknownSDEventGroupEntryTypeError) Error() string {
	return fmt.Sprintf("someip/sd: unknown eventgroup entry type 0x%02x", e.Type)
}

func readEntries(b []byte) ([]Entry, error) {
	if len(b)%entryLength != 0 {
		return nil, protocol.ErrUnexpectedEndOfSlice(protocol.LayerSomeipPayload, entryLength, len(b)%entryLength)
	}
	n := len(b) / entryLength
	entries := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		raw := b[i*entryLength : (i+1)*entryLength]
		entry, err := readEntry(raw)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func readEntry(b []byte) (Entry, error) {
	typ := b[0]
	common := EntryCommon{
		IndexFirstOptionRun:  b[1],
		IndexSecondOptionRun: b[2],
		NumberOfOptions1:     b[3] >> 4,
		NumberOfOptions2:     b[3] & 0x0f,
		ServiceID:            binary.BigEndian.Uint16(b[4:]),
		InstanceID:           binary.BigEndian.Uint16(b[6:]),
		MajorVersion:         b[8],
		TTL:                  uint24(b[9:]),
	}
	switch typ {
	case byte(ServiceEntryTypeFindService), byte(ServiceEntryTypeOfferService):
		return ServiceEntry{
			EntryCommon:  common,
			Type:         ServiceEntryType(typ),
			MinorVersion: binary.BigEndian.Uint32(b[12:]),
		}, nil
	case byte(EventgroupEntryTypeSubscribe), byte(EventgroupEntryTypeSubscribeAck):
		return EventgroupEntry{
			EntryCommon:          common,
			Type:                 EventgroupEntryType(typ),
			InitialDataRequested: b[13]&entryFlagInitialData != 0,
			Counter:              b[13] & 0x0f,
			EventgroupID:         binary.BigEndian.Uint16(b[14:]),
		}, nil
	default:
		return nil, &UnknownSDServiceEntryTypeError{Type: typ}
	}
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

func uint24(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}
