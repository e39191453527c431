// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package mavlink

import "bytes"

// TrimExtensions returns the length of payload after dropping trailing
// extension fields whose bytes are all zero. extOffsets are the start
// offsets of the extension fields in wire order; the first one is the end
// of the base fields, which are never trimmed.
func TrimExtensions(payload []byte, extOffsets ...int) int {
	end := len(payload)
	for i := len(extOffsets) - 1; i >= 0; i-- {
		start := extOffsets[i]
		if !isZero(payload[start:end]) {
			break
		}
		end = start
	}
	return end
}

// Marshal encodes m into a newly allocated slice.
func Marshal(m Message, v Version) ([]byte, error) {
	buf := make([]byte, m.MaxPayloadLen())
	n, err := m.Encode(buf, v)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// CString returns the text of a NUL-padded char array.
func CString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
