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

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/facebook/someip/someip/protocol"
)

// LayerSomeIP wraps a single decoded SOME/IP message view, following the
// same BaseLayer-embedding pattern the corpus uses for its own application
// layer registrations.
type LayerSomeIP struct {
	layers.BaseLayer

	View protocol.MessageView
}

// LayerTypeSomeIP is registered with gopacket under an arbitrary but stable
// layer type number, the same way other in-tree custom layers register
// themselves.
var LayerTypeSomeIP = gopacket.RegisterLayerType(
	8901,
	gopacket.LayerTypeMetadata{
		Name:    "SOME/IP",
		Decoder: gopacket.DecodeFunc(decodeSomeIP),
	},
)

// LayerType implements gopacket.Layer.
func (l *LayerSomeIP) LayerType() gopacket.LayerType { return LayerTypeSomeIP }

// Payload returns the SOME/IP message's own payload bytes; SOME/IP is always
// the last layer someipdump decodes.
func (l *LayerSomeIP) Payload() []byte { return l.View.Payload() }

func decodeSomeIP(data []byte, p gopacket.PacketBuilder) error {
	view, err := protocol.FromSlice(data)
	if err != nil {
		return fmt.Errorf("decoding SOME/IP message: %w", err)
	}
	l := &LayerSomeIP{
		BaseLayer: layers.BaseLayer{Contents: view.Slice(), Payload: view.Payload()},
		View:      view,
	}
	p.AddLayer(l)
	p.SetApplicationLayer(l)
	return nil
}
