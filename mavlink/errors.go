// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package mavlink

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrShortPayload is returned when a payload ends inside a base field.
	ErrShortPayload = errors.New("payload too short")

	// ErrBufferTooSmall is returned when an encode buffer cannot hold the
	// payload.
	ErrBufferTooSmall = errors.New("buffer too small")

	// ErrUnsupportedVersion is returned when a message cannot be encoded
	// for the requested protocol version.
	ErrUnsupportedVersion = errors.New("unsupported protocol version")

	// ErrUnknownMessage is returned by Dialect lookups for ids the dialect
	// does not define.
	ErrUnknownMessage = errors.New("unknown message")
)

// UnknownEnumError is returned when a raw value matches no entry of an enum.
type UnknownEnumError struct {
	Enum  string
	Value uint64
}

func (e *UnknownEnumError) Error() string {
	return "unknown " + e.Enum + " value " + strconv.FormatUint(e.Value, 10)
}

// ShortPayload returns an ErrShortPayload error for m.
func ShortPayload(m Message, n int) error {
	return fmt.Errorf("%w: %s needs at least %d bytes, got %d", ErrShortPayload, m.Name(), m.MinPayloadLen(), n)
}

// CheckEncode validates an encode request for m and returns the number of
// bytes the codec writes before trimming: the base fields for V1, every
// field for V2.
func CheckEncode(m Message, buf []byte, v Version) (int, error) {
	var n int
	switch v {
	case V1:
		if m.ID() > 255 {
			return 0, fmt.Errorf("%w: %s (#%d) has no %s encoding", ErrUnsupportedVersion, m.Name(), m.ID(), v)
		}
		n = m.MinPayloadLen()
	case V2:
		n = m.MaxPayloadLen()
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	if len(buf) < n {
		return 0, fmt.Errorf("%w: %s needs %d bytes, got %d", ErrBufferTooSmall, m.Name(), n, len(buf))
	}
	return n, nil
}
