// Package cff parses the Compact Font Format (spec §4.10): the binary font
// container PDF readers must understand to get glyph outlines out of a
// FontFile3 stream, whether the subtype is a bare CFF or a CIDFontType0C.
package cff

import (
	"encoding/binary"
	"fmt"
)

// Font is a fully-parsed CFF program: enough to map a glyph name or SID to
// a GID, read a charstring by GID, and locate FontMatrix/FontBBox metadata.
type Font struct {
	Major, Minor byte

	Name      string
	FontMatrix [6]float64
	FontBBox   [4]float64
	IsCID      bool

	strings     index
	globalSubrs index
	charStrings index
	localSubrs  index // used when Private/Subrs has no per-FD override (non-CID)

	charset  []uint16 // GID -> SID (or CID, for a CIDFont charset)
	encoding map[byte]uint16 // code -> GID, simple (non-CID) fonts only

	nominalWidthX, defaultWidthX float64

	// FDArray/FDSelect support for CIDFonts: each FD has its own Private
	// dict/local subrs, selected per-glyph by FDSelect.
	fdLocalSubrs []index
	fdSelect     []byte // GID -> FD index, nil if not a CID font
}

// NumGlyphs reports the number of glyphs (spec §4.10: "from CharStrings
// Index length").
func (f *Font) NumGlyphs() int { return f.charStrings.count() }

// CharStringBytes returns the Type 2 charstring for a GID exactly as stored
// in the CharStrings INDEX; subroutine calls in it are not expanded.
func (f *Font) CharStringBytes(gid int) ([]byte, error) {
	return f.charStrings.get(gid)
}

// GIDForName resolves a glyph name to a GID via the charset's SID mapping,
// returning 0 (.notdef) if not found (spec §4.10).
func (f *Font) GIDForName(name string) int {
	for gid, sid := range f.charset {
		if f.sidToString(sid) == name {
			return gid
		}
	}
	return 0
}

// GIDForCID resolves a CID font's charset (GID -> CID) in the other
// direction, CID -> GID, needed for CIDFontType0 Identity-H lookups.
func (f *Font) GIDForCID(cid uint16) int {
	for gid, c := range f.charset {
		if c == cid {
			return gid
		}
	}
	return 0
}

// GIDForCode resolves a simple font's built-in Encoding (spec §4.10, used
// when the PDF font dict has no /Encoding of its own).
func (f *Font) GIDForCode(code byte) (int, bool) {
	gid, ok := f.encoding[code]
	return int(gid), ok
}

func (f *Font) sidToString(sid uint16) string {
	if int(sid) < len(standardStrings) {
		return standardStrings[sid]
	}
	idx := int(sid) - len(standardStrings)
	b, err := f.strings.get(idx)
	if err != nil {
		return ""
	}
	return string(b)
}

// localSubrsFor returns the local subroutine index in effect for gid,
// honoring FDSelect for CID-keyed fonts.
func (f *Font) localSubrsFor(gid int) index {
	if f.fdSelect != nil && gid < len(f.fdSelect) {
		fd := int(f.fdSelect[gid])
		if fd < len(f.fdLocalSubrs) {
			return f.fdLocalSubrs[fd]
		}
	}
	return f.localSubrs
}

// Parse parses a raw CFF font program, as carried verbatim in a PDF
// FontFile3 stream (spec §4.10).
func Parse(data []byte) (*Font, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("cff: data too short")
	}
	hdrSize := data[2]
	f := &Font{Major: data[0], Minor: data[1]}
	f.FontMatrix = [6]float64{0.001, 0, 0, 0.001, 0, 0}

	pos := int(hdrSize)

	nameIdx, pos, err := readIndex(data, pos)
	if err != nil {
		return nil, fmt.Errorf("cff: name index: %w", err)
	}
	if b, err := nameIdx.get(0); err == nil {
		f.Name = string(b)
	}

	topIdx, pos, err := readIndex(data, pos)
	if err != nil {
		return nil, fmt.Errorf("cff: top dict index: %w", err)
	}

	strIdx, pos, err := readIndex(data, pos)
	if err != nil {
		return nil, fmt.Errorf("cff: string index: %w", err)
	}
	f.strings = strIdx

	gsubrIdx, pos, err := readIndex(data, pos)
	if err != nil {
		return nil, fmt.Errorf("cff: global subr index: %w", err)
	}
	f.globalSubrs = gsubrIdx
	_ = pos

	topBytes, err := topIdx.get(0)
	if err != nil {
		return nil, fmt.Errorf("cff: empty top dict index: %w", err)
	}
	top, err := parseDict(topBytes)
	if err != nil {
		return nil, fmt.Errorf("cff: top dict: %w", err)
	}

	if v, ok := top[opFontMatrix]; ok && len(v) == 6 {
		for i := 0; i < 6; i++ {
			f.FontMatrix[i] = v[i]
		}
	}
	if v, ok := top[opFontBBox]; ok && len(v) == 4 {
		for i := 0; i < 4; i++ {
			f.FontBBox[i] = v[i]
		}
	}
	if _, ok := top[opROS]; ok {
		f.IsCID = true
	}

	charStringsOffset, ok := top.singleInt(opCharStrings)
	if !ok {
		return nil, fmt.Errorf("cff: missing CharStrings offset")
	}
	csIdx, _, err := readIndex(data, charStringsOffset)
	if err != nil {
		return nil, fmt.Errorf("cff: charstrings: %w", err)
	}
	f.charStrings = csIdx
	nGlyphs := csIdx.count()

	if privEntry, ok := top[opPrivate]; ok && len(privEntry) == 2 {
		size, offset := int(privEntry[0]), int(privEntry[1])
		if offset >= 0 && offset+size <= len(data) {
			priv, err := parseDict(data[offset : offset+size])
			if err == nil {
				if dw, ok := priv.singleFloat(opDefaultWidthX); ok {
					f.defaultWidthX = dw
				}
				if nw, ok := priv.singleFloat(opNominalWidthX); ok {
					f.nominalWidthX = nw
				}
				if subrsRel, ok := priv.singleInt(opSubrs); ok {
					localIdx, _, err := readIndex(data, offset+subrsRel)
					if err == nil {
						f.localSubrs = localIdx
					}
				}
			}
		}
	}

	if f.IsCID {
		if fdaOff, ok := top.singleInt(opFDArray); ok {
			fdaIdx, _, err := readIndex(data, fdaOff)
			if err == nil {
				for i := 0; i < fdaIdx.count(); i++ {
					b, err := fdaIdx.get(i)
					if err != nil {
						continue
					}
					fd, err := parseDict(b)
					if err != nil {
						continue
					}
					var local index
					if privEntry, ok := fd[opPrivate]; ok && len(privEntry) == 2 {
						size, offset := int(privEntry[0]), int(privEntry[1])
						if offset >= 0 && offset+size <= len(data) {
							priv, err := parseDict(data[offset : offset+size])
							if err == nil {
								if subrsRel, ok := priv.singleInt(opSubrs); ok {
									local, _, _ = readIndex(data, offset+subrsRel)
								}
							}
						}
					}
					f.fdLocalSubrs = append(f.fdLocalSubrs, local)
				}
			}
		}
		if fdsOff, ok := top.singleInt(opFDSelect); ok {
			f.fdSelect = parseFDSelect(data, fdsOff, nGlyphs)
		}
	}

	charsetOffset, hasCharset := top.singleInt(opCharset)
	f.charset = parseCharset(data, charsetOffset, hasCharset, nGlyphs)

	if !f.IsCID {
		encOffset, hasEnc := top.singleInt(opEncoding)
		f.encoding = parseEncoding(data, encOffset, hasEnc, f.charset)
	}

	return f, nil
}

func be16(b []byte) uint16 { return binary.BigEndian.Uint16(b) }
