package cff

import "fmt"

// index is a CFF INDEX structure (spec §4.10): a count, an offset-size byte,
// count+1 variable-width offsets, then the concatenated object data. Offsets
// are 1-based (the first must equal 1) so object i spans
// data[offsets[i]-1 : offsets[i+1]-1].
type index struct {
	offsets []uint32
	data    []byte
}

func (ix index) count() int {
	if len(ix.offsets) == 0 {
		return 0
	}
	return len(ix.offsets) - 1
}

func (ix index) get(i int) ([]byte, error) {
	if i < 0 || i >= ix.count() {
		return nil, fmt.Errorf("cff: index entry %d out of range (count %d)", i, ix.count())
	}
	start, end := ix.offsets[i]-1, ix.offsets[i+1]-1
	if end < start || int(end) > len(ix.data) {
		return nil, fmt.Errorf("cff: index entry %d has invalid bounds", i)
	}
	return ix.data[start:end], nil
}

// readIndex reads one INDEX starting at pos, returning the parsed index and
// the position immediately after it. An empty INDEX is just a zero count16
// and nothing else.
func readIndex(data []byte, pos int) (index, int, error) {
	if pos < 0 || pos+2 > len(data) {
		return index{}, 0, fmt.Errorf("cff: index header out of range at %d", pos)
	}
	count := int(be16(data[pos : pos+2]))
	pos += 2
	if count == 0 {
		return index{}, pos, nil
	}

	if pos+1 > len(data) {
		return index{}, 0, fmt.Errorf("cff: index missing offSize")
	}
	offSize := int(data[pos])
	pos++
	if offSize < 1 || offSize > 4 {
		return index{}, 0, fmt.Errorf("cff: invalid offSize %d", offSize)
	}

	nOffsets := count + 1
	offsets := make([]uint32, nOffsets)
	offsetBytes := nOffsets * offSize
	if pos+offsetBytes > len(data) {
		return index{}, 0, fmt.Errorf("cff: index offsets out of range")
	}
	for i := 0; i < nOffsets; i++ {
		var v uint32
		base := pos + i*offSize
		for b := 0; b < offSize; b++ {
			v = v<<8 | uint32(data[base+b])
		}
		offsets[i] = v
	}
	pos += offsetBytes

	if offsets[0] != 1 {
		return index{}, 0, fmt.Errorf("cff: index first offset must be 1, got %d", offsets[0])
	}

	dataLen := int(offsets[nOffsets-1]) - 1
	if dataLen < 0 || pos+dataLen > len(data) {
		return index{}, 0, fmt.Errorf("cff: index data out of range")
	}
	objData := data[pos : pos+dataLen]
	pos += dataLen

	return index{offsets: offsets, data: objData}, pos, nil
}
