// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package spc decodes SPC sound files, the snapshot format used to store
// the state of the SNES sound processor, and applies them to an emulated
// SPC700.
package spc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/spc700/cpu"
)

// Errors
var (
	ErrBadHeader = errors.New("spc: bad file header")
	ErrTruncated = errors.New("spc: file truncated")
)

// Magic is the signature found at the start of every SPC file.
const Magic = "SNES-SPC700 Sound File Data v0.30"

// File offsets
const (
	offRegisters = 0x25
	offTag       = 0x2e
	offRAM       = 0x100
	offDSP       = 0x10100
	fileSize     = offDSP + 128
)

// The number of RAM bytes applied to the CPU's memory. The last byte of
// the image is not applied.
const applySize = 0xffff

// A File holds the decoded contents of an SPC file.
type File struct {
	Registers cpu.Registers        // CPU registers at the time of the snapshot
	Tag       ID666                // song metadata
	RAM       [cpu.MemorySize]byte // 64K RAM image
	DSP       [128]byte            // raw DSP register values
}

// ID666 holds the song metadata stored in an SPC file. The tag comes in a
// text flavor and a binary flavor; both decode to the same fields.
type ID666 struct {
	SongTitle        string
	GameTitle        string
	Dumper           string
	Comment          string
	DateText         string    // date of the dump, as stored
	Date             time.Time // date of the dump, zero if it could not be parsed
	SongLength       int       // seconds to play before fading out
	FadeLength       int       // fade length in milliseconds
	Artist           string
	DisabledChannels bool
	Emulator         int // emulator used to create the dump
	Binary           bool
}

// Parse decodes an SPC file held in memory.
func Parse(b []byte) (*File, error) {
	if len(b) < len(Magic) || string(b[:len(Magic)]) != Magic {
		return nil, ErrBadHeader
	}
	if len(b) < fileSize {
		return nil, fmt.Errorf("%w: %d of %d bytes", ErrTruncated, len(b), fileSize)
	}

	f := &File{}

	r := b[offRegisters:]
	f.Registers = cpu.Registers{
		PC:  binary.LittleEndian.Uint16(r[0:2]),
		A:   r[2],
		X:   r[3],
		Y:   r[4],
		PSW: r[5],
		SP:  r[6],
	}

	f.Tag = parseTag(b[offTag:offRAM])
	copy(f.RAM[:], b[offRAM:offDSP])
	copy(f.DSP[:], b[offDSP:fileSize])
	return f, nil
}

// Read decodes an SPC file from a reader.
func Read(r io.Reader) (*File, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Open reads and decodes the SPC file at 'path'.
func Open(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Apply loads the file's registers and RAM image into the CPU. Nothing
// is modified if the image cannot be stored.
func (f *File) Apply(c *cpu.CPU) error {
	if err := cpu.StoreImage(c.Mem, 0, f.RAM[:applySize]); err != nil {
		return err
	}
	c.Reg.Load(&f.Registers)
	return nil
}

// Tag field offsets, relative to the start of the tag.
const (
	tagSongTitle = 0x00
	tagGameTitle = 0x20
	tagDumper    = 0x40
	tagComment   = 0x50
	tagDate      = 0x70
	tagSongLen   = 0x7b
	tagFadeLen   = 0x7e
	tagArtist    = 0x83 // text flavor
	tagArtistBin = 0x82 // binary flavor
)

func parseTag(t []byte) ID666 {
	var tag ID666
	tag.SongTitle = tagString(t[tagSongTitle : tagSongTitle+32])
	tag.GameTitle = tagString(t[tagGameTitle : tagGameTitle+32])
	tag.Dumper = tagString(t[tagDumper : tagDumper+16])
	tag.Comment = tagString(t[tagComment : tagComment+32])

	// A text tag stores the song length as decimal digits. Anything else
	// in its first byte marks a binary tag.
	c := t[tagSongLen]
	tag.Binary = !(c == 0 || (c >= '0' && c <= '9'))

	var artist int
	if tag.Binary {
		day, month := int(t[tagDate]), int(t[tagDate+1])
		year := int(binary.LittleEndian.Uint16(t[tagDate+2:]))
		tag.DateText = fmt.Sprintf("%d/%d/%d", year, month, day)
		if year > 0 && month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			tag.Date = time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		}
		tag.SongLength = int(t[tagSongLen]) | int(t[tagSongLen+1])<<8 | int(t[tagSongLen+2])<<16
		tag.FadeLength = int(binary.LittleEndian.Uint32(t[tagFadeLen:]))
		artist = tagArtistBin
	} else {
		tag.DateText = tagString(t[tagDate : tagDate+11])
		tag.Date = parseDate(tag.DateText)
		tag.SongLength = leadingInt(t[tagSongLen : tagSongLen+3])
		tag.FadeLength = leadingInt(t[tagFadeLen : tagFadeLen+5])
		artist = tagArtist
	}

	tag.Artist = tagString(t[artist : artist+32])
	tag.DisabledChannels = t[artist+32] != 0 && t[artist+32] != '0'

	emu := t[artist+33]
	if emu >= '0' && emu <= '9' {
		tag.Emulator = int(emu - '0')
	} else {
		tag.Emulator = int(emu)
	}
	return tag
}

// Return the text of a fixed-size tag field, which ends at its first NUL.
func tagString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return strings.TrimSpace(string(b))
}

// Return the value of the decimal digits that begin a fixed-size field.
func leadingInt(b []byte) int {
	n := 0
	for n < len(b) && b[n] >= '0' && b[n] <= '9' {
		n++
	}
	v, err := strconv.Atoi(string(b[:n]))
	if err != nil {
		return 0
	}
	return v
}

var dateLayouts = []string{"01/02/2006", "1/2/2006", "2006/01/02", "2006-01-02", "01-02-2006"}

func parseDate(s string) time.Time {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d
		}
	}
	return time.Time{}
}
