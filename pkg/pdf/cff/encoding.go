package cff

// parseEncoding builds the code -> GID table for a simple (non-CID) CFF
// font's built-in Encoding (spec §4.10), used by the PDF font subsystem
// only when the PDF font dict itself carries no /Encoding.
func parseEncoding(data []byte, offset int, has bool, charset []uint16) map[byte]uint16 {
	enc := make(map[byte]uint16)
	if !has || offset == 0 {
		return codeToGIDviaNames(standardEncodingSIDs(), charset)
	}
	if offset == 1 {
		return codeToGIDviaNames(expertEncodingSIDs(), charset)
	}
	if offset < 0 || offset >= len(data) {
		return enc
	}

	format := data[offset]
	pos := offset + 1
	baseFormat := format &^ 0x80

	switch baseFormat {
	case 0:
		if pos >= len(data) {
			return enc
		}
		nCodes := int(data[pos])
		pos++
		for gid := 1; gid <= nCodes && pos < len(data); gid++ {
			enc[data[pos]] = uint16(gid)
			pos++
		}
	case 1:
		if pos >= len(data) {
			return enc
		}
		nRanges := int(data[pos])
		pos++
		gid := 1
		for i := 0; i < nRanges && pos+2 <= len(data); i++ {
			first := data[pos]
			nLeft := int(data[pos+1])
			pos += 2
			for c := 0; c <= nLeft; c++ {
				enc[first+byte(c)] = uint16(gid)
				gid++
			}
		}
	}

	if format&0x80 != 0 && pos < len(data) {
		nSups := int(data[pos])
		pos++
		for i := 0; i < nSups && pos+3 <= len(data); i++ {
			code := data[pos]
			sid := be16(data[pos+1 : pos+3])
			pos += 3
			for gid, s := range charset {
				if s == sid {
					enc[code] = uint16(gid)
					break
				}
			}
		}
	}

	return enc
}

// codeToGIDviaNames maps a predefined SID-by-code table through charset to
// find the GID that carries each SID.
func codeToGIDviaNames(sidsByCode [256]uint16, charset []uint16) map[byte]uint16 {
	sidToGID := make(map[uint16]uint16, len(charset))
	for gid, sid := range charset {
		sidToGID[sid] = uint16(gid)
	}
	enc := make(map[byte]uint16)
	for code, sid := range sidsByCode {
		if sid == 0 {
			continue
		}
		if gid, ok := sidToGID[sid]; ok {
			enc[byte(code)] = gid
		}
	}
	return enc
}

// standardEncodingSIDs and expertEncodingSIDs approximate the two
// predefined CFF encodings by reusing the standard-string SIDs for
// StandardEncoding's glyph names; a true Expert encoding table is the same
// low-impact trim as expertCharset (DESIGN.md).
func standardEncodingSIDs() [256]uint16 {
	var out [256]uint16
	for code := 0; code < 256; code++ {
		for sid, name := range standardStrings {
			if name == standardGlyphName(code) {
				out[code] = uint16(sid)
				break
			}
		}
	}
	return out
}

func expertEncodingSIDs() [256]uint16 {
	return standardEncodingSIDs()
}

// standardGlyphName is a tiny local mirror of part of Adobe
// StandardEncoding: space, the digits and the Latin letters only; every
// other code maps to no name. The PDF-level encoding vector (package pdf)
// carries the full table.
func standardGlyphName(code int) string {
	switch {
	case code >= 65 && code <= 90:
		return string(rune(code))
	case code >= 97 && code <= 122:
		return string(rune(code))
	case code >= 48 && code <= 57:
		return [10]string{"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine"}[code-48]
	case code == 32:
		return "space"
	default:
		return ""
	}
}
