// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/beevik/prefixtree/v2"
)

// Host configuration variables, adjusted with the "set" command. Names
// may be abbreviated to any unique prefix.
type settings struct {
	HexMode         bool   `doc:"hexadecimal input mode"`
	CompactMode     bool   `doc:"compact disassembly output"`
	MemDumpBytes    int    `doc:"default number of memory bytes to dump"`
	DisasmLines     int    `doc:"default number of lines to disassemble"`
	MaxStepLines    int    `doc:"max lines to disassemble when stepping"`
	RunLimit        int    `doc:"max instructions per run (0 for no limit)"`
	NextDisasmAddr  uint16 `doc:"address of next disassembly"`
	NextMemDumpAddr uint16 `doc:"address of next memory dump"`
	ScriptPath      string `doc:"directory searched for relative script names"`
}

func newSettings() *settings {
	return &settings{
		MemDumpBytes: 64,
		DisasmLines:  10,
		MaxStepLines: 20,
	}
}

type settingsField struct {
	name  string
	index int
	kind  reflect.Kind
	typ   reflect.Type
	doc   string
}

var (
	settingsTree   = prefixtree.New[*settingsField]()
	settingsFields []settingsField
)

func init() {
	t := reflect.TypeOf(settings{})
	settingsFields = make([]settingsField, t.NumField())
	for i := range settingsFields {
		f := t.Field(i)
		settingsFields[i] = settingsField{
			name:  f.Name,
			index: i,
			kind:  f.Type.Kind(),
			typ:   f.Type,
			doc:   f.Tag.Get("doc"),
		}
		settingsTree.Add(strings.ToLower(f.Name), &settingsFields[i])
	}
}

// Display writes every variable, its value and its description.
func (s *settings) Display(w io.Writer) {
	value := reflect.ValueOf(s).Elem()
	for _, f := range settingsFields {
		v := value.Field(f.index)
		var str string
		switch f.kind {
		case reflect.String:
			str = fmt.Sprintf("%q", v.String())
		case reflect.Uint16:
			str = fmt.Sprintf("$%04X", v.Uint())
		default:
			str = fmt.Sprint(v.Interface())
		}
		fmt.Fprintf(w, "    %-16s %-10s (%s)\n", f.name, str, f.doc)
	}
}

func (s *settings) lookup(key string) (*settingsField, error) {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return nil, fmt.Errorf("setting '%s' not found", key)
	}
	return f, nil
}

// Set assigns a variable from its textual value. Numeric variables accept
// expressions, which are evaluated with the provided parser.
func (s *settings) Set(key, value string, p *exprParser, r resolver) (name string, err error) {
	f, err := s.lookup(key)
	if err != nil {
		return "", err
	}

	out := reflect.ValueOf(s).Elem().Field(f.index)
	switch f.kind {
	case reflect.String:
		out.SetString(value)
	case reflect.Bool:
		b, err := stringToBool(value)
		if err != nil {
			return "", err
		}
		out.SetBool(b)
	case reflect.Int:
		v, err := p.Parse(value, r)
		if err != nil {
			return "", err
		}
		if v < 0 {
			return "", fmt.Errorf("setting '%s' must not be negative", f.name)
		}
		out.SetInt(v)
	case reflect.Uint16:
		v, err := p.Parse(value, r)
		if err != nil {
			return "", err
		}
		out.SetUint(uint64(uint16(v)))
	default:
		return "", fmt.Errorf("setting '%s' has an unsupported type %v", f.name, f.typ)
	}
	return f.name, nil
}
