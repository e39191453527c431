// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

// Package mavlink is the runtime support imported by code generated with
// mavgen. It defines the capability contract every generated message
// satisfies, the errors generated codecs return, and a per-dialect message
// registry.
//
// The package does no I/O and knows nothing about framing: it deals in
// message payloads only.
package mavlink

// PayloadMaxLen is the largest MAVLink payload in bytes.
const PayloadMaxLen = 255

// MessageID is a MAVLink message id (24 bits in MAVLink 2).
type MessageID uint32

// Version selects the payload rules of a MAVLink protocol version.
type Version uint8

const (
	// V1 payloads carry base fields only and require ids <= 255.
	V1 Version = 1

	// V2 payloads carry extension fields, with trailing all-zero
	// extension fields trimmed.
	V2 Version = 2
)

func (v Version) String() string {
	switch v {
	case V1:
		return "v1"
	case V2:
		return "v2"
	}
	return "unknown"
}

// Message is implemented by every generated message type.
type Message interface {
	// ID returns the message id.
	ID() MessageID

	// Name returns the message name as declared in its definition.
	Name() string

	// MinPayloadLen returns the total width of the base fields.
	MinPayloadLen() int

	// MaxPayloadLen returns the total width of all fields.
	MaxPayloadLen() int

	// CRCExtra returns the compatibility checksum of the definition.
	CRCExtra() uint8

	// Encode writes the payload into buf in wire order and returns the
	// number of bytes written.
	Encode(buf []byte, v Version) (int, error)

	// Decode reads the payload. Missing extension fields decode as zero.
	Decode(payload []byte) error
}
