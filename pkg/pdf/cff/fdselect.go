package cff

// parseFDSelect builds the GID -> FD-index table a CIDFont's charstrings
// use to pick which FDArray entry's Private dict/local subrs apply (spec
// §4.10's "Private Dict, Local Subrs" extended by CID-keyed CFF's FDArray).
func parseFDSelect(data []byte, offset, nGlyphs int) []byte {
	out := make([]byte, nGlyphs)
	if offset < 0 || offset >= len(data) {
		return out
	}
	format := data[offset]
	pos := offset + 1

	switch format {
	case 0:
		for gid := 0; gid < nGlyphs && pos < len(data); gid++ {
			out[gid] = data[pos]
			pos++
		}
	case 3:
		if pos+2 > len(data) {
			return out
		}
		nRanges := int(be16(data[pos : pos+2]))
		pos += 2
		var firsts []uint16
		var fds []byte
		for i := 0; i < nRanges && pos+3 <= len(data); i++ {
			firsts = append(firsts, be16(data[pos:pos+2]))
			fds = append(fds, data[pos+2])
			pos += 3
		}
		var sentinel uint16
		if pos+2 <= len(data) {
			sentinel = be16(data[pos : pos+2])
		}
		firsts = append(firsts, sentinel)
		for i := 0; i < len(fds); i++ {
			for gid := int(firsts[i]); gid < int(firsts[i+1]) && gid < nGlyphs; gid++ {
				out[gid] = fds[i]
			}
		}
	}
	return out
}
