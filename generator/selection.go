// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package generator

import (
	"maps"
	"slices"

	"github.com/albertocavalcante/mavgen/model"
)

// Selection restricts what is generated from a protocol.
// A nil *Selection selects everything.
type Selection struct {
	// Messages names messages to keep.
	Messages []string

	// Enums names non-bitmask enums to keep even when no kept message
	// references them.
	Enums []string

	// Bitmasks names bitmask enums to keep.
	Bitmasks []string

	// Microservices names message groups (see MicroserviceNames).
	Microservices []string

	// AllEnums keeps every enum and bitmask of a dialect.
	AllEnums bool
}

// microservices maps a microservice to the messages implementing it.
var microservices = map[string][]string{
	"heartbeat": {"HEARTBEAT"},
	"mission": {
		"MISSION_ITEM", "MISSION_REQUEST", "MISSION_SET_CURRENT", "MISSION_CURRENT",
		"MISSION_REQUEST_LIST", "MISSION_COUNT", "MISSION_CLEAR_ALL",
		"MISSION_ITEM_REACHED", "MISSION_ACK", "MISSION_REQUEST_INT", "MISSION_ITEM_INT",
	},
	"parameter": {"PARAM_REQUEST_READ", "PARAM_REQUEST_LIST", "PARAM_VALUE", "PARAM_SET"},
	"param_ext": {
		"PARAM_EXT_REQUEST_READ", "PARAM_EXT_REQUEST_LIST", "PARAM_EXT_VALUE",
		"PARAM_EXT_SET", "PARAM_EXT_ACK",
	},
	"command":  {"COMMAND_INT", "COMMAND_LONG", "COMMAND_ACK", "COMMAND_CANCEL"},
	"ftp":      {"FILE_TRANSFER_PROTOCOL"},
	"timesync": {"TIMESYNC"},
	"time":     {"SYSTEM_TIME"},
}

// MicroserviceNames returns the known microservice groups, sorted.
func MicroserviceNames() []string {
	return slices.Sorted(maps.Keys(microservices))
}

// MicroserviceMessages returns the messages of a microservice group.
func MicroserviceMessages(name string) ([]string, bool) {
	msgs, ok := microservices[name]
	return slices.Clone(msgs), ok
}

// IsZero reports whether s names nothing.
func (s *Selection) IsZero() bool {
	return s == nil || (len(s.Messages) == 0 && len(s.Enums) == 0 && len(s.Bitmasks) == 0 &&
		len(s.Microservices) == 0 && !s.AllEnums)
}

// Select returns the part of p chosen by sel, together with the names sel
// mentions that match nothing in any dialect (e.g. "message FOO",
// "microservice bar"), sorted. A nil sel returns p itself.
//
// Selected messages keep the enums their fields reference. The returned
// dialects share messages and enums with p and must not be mutated.
func Select(p *model.Protocol, sel *Selection) (*model.Protocol, []string) {
	if sel == nil {
		return p, nil
	}

	var unknown []string
	wantMsgs := make(map[string]bool)
	for _, name := range sel.Messages {
		wantMsgs[name] = true
	}
	for _, svc := range sel.Microservices {
		msgs, ok := microservices[svc]
		if !ok {
			unknown = append(unknown, "microservice "+svc)
			continue
		}
		for _, name := range msgs {
			wantMsgs[name] = true
		}
	}

	seen := make(map[string]bool)
	out := &model.Protocol{}
	for _, d := range p.Dialects {
		nd := *d
		nd.Messages, nd.Enums = nil, nil

		refs := make(map[string]bool)
		for _, m := range d.Messages {
			if !wantMsgs[m.Name] {
				continue
			}
			seen["message "+m.Name] = true
			nd.Messages = append(nd.Messages, m)
			for _, f := range m.Fields {
				if f.Enum != "" {
					refs[f.Enum] = true
				}
			}
		}
		for _, e := range d.Enums {
			key := "enum " + e.Name
			if e.Bitmask {
				key = "bitmask " + e.Name
			}
			named := slices.Contains(sel.Enums, e.Name) && !e.Bitmask ||
				slices.Contains(sel.Bitmasks, e.Name) && e.Bitmask
			if named {
				seen[key] = true
			}
			if sel.AllEnums || named || refs[e.Name] {
				nd.Enums = append(nd.Enums, e)
			}
		}
		out.Dialects = append(out.Dialects, &nd)
	}

	for _, name := range sel.Messages {
		if !seen["message "+name] {
			unknown = append(unknown, "message "+name)
		}
	}
	for _, name := range sel.Enums {
		if !seen["enum "+name] {
			unknown = append(unknown, "enum "+name)
		}
	}
	for _, name := range sel.Bitmasks {
		if !seen["bitmask "+name] {
			unknown = append(unknown, "bitmask "+name)
		}
	}
	slices.Sort(unknown)
	return out, slices.Compact(unknown)
}
