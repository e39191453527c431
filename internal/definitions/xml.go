// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package definitions

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/albertocavalcante/mavgen/model"
)

// xmlFile is one MAVLink definition document.
type xmlFile struct {
	XMLName  xml.Name     `xml:"mavlink"`
	Includes []string     `xml:"include"`
	Version  string       `xml:"version"`
	Dialect  string       `xml:"dialect"`
	Enums    []xmlEnum    `xml:"enums>enum"`
	Messages []xmlMessage `xml:"messages>message"`
}

type xmlEnum struct {
	Name        string         `xml:"name,attr"`
	Bitmask     string         `xml:"bitmask,attr"`
	Description string         `xml:"description"`
	Entries     []xmlEntry     `xml:"entry"`
	Deprecated  *xmlDeprecated `xml:"deprecated"`
}

type xmlEntry struct {
	Value       string         `xml:"value,attr"`
	Name        string         `xml:"name,attr"`
	Description string         `xml:"description"`
	Deprecated  *xmlDeprecated `xml:"deprecated"`
}

type xmlDeprecated struct {
	Since      string `xml:"since,attr"`
	ReplacedBy string `xml:"replaced_by,attr"`
	Text       string `xml:",chardata"`
}

type xmlField struct {
	Type    string `xml:"type,attr"`
	Name    string `xml:"name,attr"`
	Enum    string `xml:"enum,attr"`
	Units   string `xml:"units,attr"`
	Display string `xml:"display,attr"`
	Text    string `xml:",chardata"`

	extension bool
}

// xmlMessage keeps its children in document order so that fields after
// <extensions/> are marked as extensions.
type xmlMessage struct {
	ID          string
	Name        string
	Description string
	WIP         bool
	Deprecated  *xmlDeprecated
	Fields      []xmlField
}

func (m *xmlMessage) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "id":
			m.ID = a.Value
		case "name":
			m.Name = a.Value
		}
	}

	extension := false
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "field":
				var f xmlField
				if err := d.DecodeElement(&f, &t); err != nil {
					return err
				}
				f.extension = extension
				m.Fields = append(m.Fields, f)
			case "extensions":
				extension = true
				err = d.Skip()
			case "description":
				err = d.DecodeElement(&m.Description, &t)
			case "wip":
				m.WIP = true
				err = d.Skip()
			case "deprecated":
				m.Deprecated = new(xmlDeprecated)
				err = d.DecodeElement(m.Deprecated, &t)
			default:
				err = d.Skip()
			}
			if err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

// text collapses the whitespace of a description.
func text(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (x *xmlDeprecated) toModel() *model.Deprecated {
	if x == nil {
		return nil
	}
	return &model.Deprecated{
		Since:      strings.TrimSpace(x.Since),
		ReplacedBy: strings.TrimSpace(x.ReplacedBy),
		Note:       text(x.Text),
	}
}

// ParseValue parses an enum entry value: decimal, 0x hexadecimal,
// 0b binary or 2**N.
func ParseValue(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		return strconv.ParseUint(s[2:], 16, 64)
	case strings.HasPrefix(s, "0b"), strings.HasPrefix(s, "0B"):
		return strconv.ParseUint(s[2:], 2, 64)
	}
	if base, exp, ok := strings.Cut(s, "**"); ok {
		if strings.TrimSpace(base) != "2" {
			return 0, fmt.Errorf("unsupported power %q", s)
		}
		n, err := strconv.ParseUint(strings.TrimSpace(exp), 10, 8)
		if err != nil || n >= 64 {
			return 0, fmt.Errorf("invalid exponent in %q", s)
		}
		return 1 << n, nil
	}
	return strconv.ParseUint(s, 10, 64)
}

// parseUint parses an optional decimal element such as <version>.
func parseUint(s string, bitSize int) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseUint(s, 10, bitSize)
}
