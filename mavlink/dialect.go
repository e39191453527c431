// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package mavlink

import (
	"fmt"
	"slices"
)

// MessageInfo describes one message of a dialect.
type MessageInfo struct {
	ID            MessageID
	Name          string
	CRCExtra      uint8
	MinPayloadLen int
	MaxPayloadLen int

	// New returns a zero message.
	New func() Message
}

// Dialect is the message registry of one generated dialect.
// It is immutable after construction and safe for concurrent use.
type Dialect struct {
	name     string
	messages map[MessageID]MessageInfo
	ids      []MessageID
}

// NewDialect builds a registry. Generated packages call it once.
func NewDialect(name string, infos ...MessageInfo) *Dialect {
	d := &Dialect{
		name:     name,
		messages: make(map[MessageID]MessageInfo, len(infos)),
		ids:      make([]MessageID, 0, len(infos)),
	}
	for _, info := range infos {
		if _, dup := d.messages[info.ID]; dup {
			panic(fmt.Sprintf("mavlink: dialect %s registers message %d twice", name, info.ID))
		}
		d.messages[info.ID] = info
		d.ids = append(d.ids, info.ID)
	}
	slices.Sort(d.ids)
	return d
}

// Name returns the dialect name.
func (d *Dialect) Name() string {
	return d.name
}

// IDs returns the message ids in ascending order.
func (d *Dialect) IDs() []MessageID {
	return slices.Clone(d.ids)
}

// Message returns the description of message id.
func (d *Dialect) Message(id MessageID) (MessageInfo, bool) {
	info, ok := d.messages[id]
	return info, ok
}

// New returns a zero value of message id.
func (d *Dialect) New(id MessageID) (Message, error) {
	info, ok := d.messages[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d in dialect %s", ErrUnknownMessage, id, d.name)
	}
	return info.New(), nil
}

// Decode decodes payload as message id.
func (d *Dialect) Decode(id MessageID, payload []byte) (Message, error) {
	m, err := d.New(id)
	if err != nil {
		return nil, err
	}
	if err := m.Decode(payload); err != nil {
		return nil, err
	}
	return m, nil
}
