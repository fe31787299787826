// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Return the machine code bytes of an instruction as space-separated hex.
func codeString(b []byte) string {
	var sb strings.Builder
	for i, v := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", v)
	}
	return sb.String()
}

func stringToBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "0", "false", "off":
		return false, nil
	case "1", "true", "on":
		return true, nil
	default:
		return false, fmt.Errorf("invalid bool value '%s'", s)
	}
}

var hexDigits = "0123456789ABCDEF"

func addrToBuf(addr uint16, b []byte) {
	b[0] = hexDigits[(addr>>12)&0xf]
	b[1] = hexDigits[(addr>>8)&0xf]
	b[2] = hexDigits[(addr>>4)&0xf]
	b[3] = hexDigits[addr&0xf]
}

func byteToBuf(v byte, b []byte) {
	b[0] = hexDigits[(v>>4)&0xf]
	b[1] = hexDigits[v&0xf]
}

func toPrintableChar(v byte) byte {
	if v >= 32 && v < 127 {
		return v
	}
	return '.'
}

// Word-wrap text to 'width' columns, indenting every line by 'indent'
// spaces.
func indentWrap(indent int, s string) string {
	const width = 76
	pad := strings.Repeat(" ", indent)

	var lines []string
	line := pad
	for _, w := range strings.Fields(s) {
		if len(line) > indent && len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = pad
		}
		if len(line) > indent {
			line += " "
		}
		line += w
	}
	if len(line) > indent {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Resolve a script file name. Relative names are looked up under 'dir'
// when it is set.
func scriptFilename(dir, name, ext string) string {
	if filepath.Ext(name) == "" {
		name += ext
	}
	if dir != "" && !filepath.IsAbs(name) {
		name = filepath.Join(dir, name)
	}
	return name
}
