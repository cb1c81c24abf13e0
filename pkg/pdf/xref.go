package pdf

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/kivaloop/pdfcore/pkg/pdf/pdferr"
)

// XRefEntryKind tags the three shapes a cross-reference table entry can take
// (spec §4.2): a free slot, a directly-addressable indirect object, or one
// packed inside an object stream.
type XRefEntryKind int

const (
	XRefFree XRefEntryKind = iota
	XRefInUse
	XRefCompressed
)

// XRefEntry is one row of the resolver's in-memory cross-reference table.
type XRefEntry struct {
	Kind XRefEntryKind

	// Valid when Kind == XRefInUse.
	Offset     int64
	Generation uint16

	// Valid when Kind == XRefCompressed.
	StreamObjNum uint32
	Index        int
}

// XRefTable maps object numbers to their xref entries. Later (incremental
// update) sections win, since parseXRef walks Prev chains newest-first and
// never overwrites an object number already present.
type XRefTable struct {
	Entries map[uint32]XRefEntry
}

func newXRefTable() *XRefTable {
	return &XRefTable{Entries: make(map[uint32]XRefEntry)}
}

func (t *XRefTable) setIfAbsent(num uint32, e XRefEntry) {
	if _, exists := t.Entries[num]; !exists {
		t.Entries[num] = e
	}
}

// parseXRef parses the cross-reference section at offset, then follows /Prev
// (and hybrid-reference /XRefStm) chains, merging the trailer dictionaries of
// every section visited, oldest keys losing to newest.
func (d *Document) parseXRef(offset int64) error {
	visited := make(map[int64]bool)
	return d.parseXRefChain(offset, visited)
}

func (d *Document) parseXRefChain(offset int64, visited map[int64]bool) error {
	if visited[offset] {
		return nil
	}
	visited[offset] = true

	if offset < 0 || offset >= int64(len(d.data)) {
		return fmt.Errorf("xref offset %d out of range", offset)
	}

	pos := offset
	for pos < int64(len(d.data)) && isWhitespace(d.data[pos]) {
		pos++
	}

	var trailer Dictionary
	var err error
	if pos+4 <= int64(len(d.data)) && string(d.data[pos:pos+4]) == "xref" {
		trailer, err = d.parseXRefTable(pos)
	} else {
		trailer, err = d.parseXRefStream(pos)
	}
	if err != nil {
		return err
	}

	if d.Trailer == nil {
		d.Trailer = trailer
	} else {
		for k, v := range trailer {
			if _, exists := d.Trailer[k]; !exists {
				d.Trailer[k] = v
			}
		}
	}

	// A hybrid-reference file (spec §4.2) carries a traditional table whose
	// trailer points at a parallel xref stream with the compressed-object
	// entries the traditional syntax can't express.
	if hybrid, ok := trailer.GetInt("XRefStm"); ok {
		if err := d.parseXRefChain(hybrid, visited); err != nil {
			return err
		}
	}

	if prev, ok := trailer.GetInt("Prev"); ok {
		return d.parseXRefChain(prev, visited)
	}

	return nil
}

// parseXRefTable parses a traditional "xref ... trailer <<...>>" section.
func (d *Document) parseXRefTable(offset int64) (Dictionary, error) {
	lexer := NewLexerFromBytes(d.data[offset:])
	lexer.ReadLine() // "xref" keyword

	for {
		line, err := lexer.ReadLine()
		if err != nil {
			return nil, err
		}

		lineStr := string(bytes.TrimSpace(line))
		if lineStr == "" {
			continue
		}
		if lineStr == "trailer" {
			break
		}

		parts := bytes.Fields(line)
		if len(parts) != 2 {
			continue
		}
		start, err1 := strconv.Atoi(string(parts[0]))
		count, err2 := strconv.Atoi(string(parts[1]))
		if err1 != nil || err2 != nil {
			continue
		}

		for i := 0; i < count; i++ {
			entryLine, err := lexer.ReadLine()
			if err != nil {
				return nil, err
			}
			entryStr := string(entryLine)
			if len(entryStr) < 17 {
				continue
			}

			entryOffset, _ := strconv.ParseInt(strings.TrimSpace(entryStr[0:10]), 10, 64)
			gen, _ := strconv.Atoi(strings.TrimSpace(entryStr[11:16]))
			inUse := entryStr[17] == 'n'

			objNum := uint32(start + i)
			if inUse {
				d.xref.setIfAbsent(objNum, XRefEntry{Kind: XRefInUse, Offset: entryOffset, Generation: uint16(gen)})
			} else {
				d.xref.setIfAbsent(objNum, XRefEntry{Kind: XRefFree})
			}
		}
	}

	parser := NewParser(lexer)
	trailerObj, err := parser.ParseObject()
	if err != nil {
		return nil, err
	}
	trailer, ok := trailerObj.(Dictionary)
	if !ok {
		return nil, fmt.Errorf("trailer is not a dictionary")
	}
	return trailer, nil
}

// parseXRefStream parses a cross-reference stream (spec §4.2), whose W/Index
// arrays describe a packed binary table of (type, field2, field3) rows.
func (d *Document) parseXRefStream(offset int64) (Dictionary, error) {
	parser := NewParserFromBytes(d.data[offset:])

	_, obj, err := parser.ParseIndirectObject()
	if err != nil {
		return nil, err
	}

	stream, ok := obj.(Stream)
	if !ok {
		return nil, fmt.Errorf("xref stream expected at offset %d", offset)
	}

	val, err := DecodeStream(stream)
	if err != nil {
		return nil, err
	}
	data := val.Bytes

	wArray, ok := stream.Dict.GetArray("W")
	if !ok || len(wArray) != 3 {
		return nil, fmt.Errorf("invalid xref stream W array")
	}
	w := make([]int, 3)
	for i, o := range wArray {
		if n, ok := asInt(o); ok {
			w[i] = int(n)
		}
	}

	var indices []int
	if indexArray, ok := stream.Dict.GetArray("Index"); ok {
		for _, o := range indexArray {
			if n, ok := asInt(o); ok {
				indices = append(indices, int(n))
			}
		}
	} else if size, ok := stream.Dict.GetInt("Size"); ok {
		indices = []int{0, int(size)}
	}

	entrySize := w[0] + w[1] + w[2]
	pos := 0

	for i := 0; i+1 < len(indices); i += 2 {
		start, count := indices[i], indices[i+1]
		for j := 0; j < count; j++ {
			if pos+entrySize > len(data) {
				break
			}
			entry := data[pos : pos+entrySize]
			pos += entrySize

			field1 := readXRefField(entry, 0, w[0])
			field2 := readXRefField(entry, w[0], w[1])
			field3 := readXRefField(entry, w[0]+w[1], w[2])

			entryType := field1
			if w[0] == 0 {
				entryType = 1
			}

			objNum := uint32(start + j)
			switch entryType {
			case 0:
				d.xref.setIfAbsent(objNum, XRefEntry{Kind: XRefFree})
			case 1:
				d.xref.setIfAbsent(objNum, XRefEntry{Kind: XRefInUse, Offset: int64(field2), Generation: uint16(field3)})
			case 2:
				d.xref.setIfAbsent(objNum, XRefEntry{Kind: XRefCompressed, StreamObjNum: uint32(field2), Index: field3})
			}
		}
	}

	return stream.Dict, nil
}

func readXRefField(data []byte, offset, width int) int {
	if width == 0 {
		return 0
	}
	result := 0
	for i := 0; i < width; i++ {
		result = result<<8 | int(data[offset+i])
	}
	return result
}

// ResolveObject follows a Reference to the Object it addresses, returning
// non-references unchanged (spec §4.2). A dangling reference resolves to
// Null rather than an error, matching readers' general tolerance of it.
func (d *Document) ResolveObject(obj Object) (Object, error) {
	ref, ok := obj.(Reference)
	if !ok {
		return obj, nil
	}
	return d.GetObject(ref.ID)
}

// GetObject resolves one indirect object by id, memoizing the result so a
// second lookup of the same id is free (spec §4.2's lazy single-resolve
// resolver).
func (d *Document) GetObject(id ObjectID) (Object, error) {
	if obj, ok := d.objects[id.Num]; ok {
		return obj, nil
	}

	entry, ok := d.xref.Entries[id.Num]
	if !ok {
		return Null{}, nil
	}

	var obj Object
	var err error

	switch entry.Kind {
	case XRefCompressed:
		obj, err = d.getCompressedObject(entry.StreamObjNum, entry.Index)
	case XRefInUse:
		obj, err = d.getUncompressedObject(entry.Offset)
	default:
		return Null{}, nil
	}
	if err != nil {
		return nil, err
	}

	d.objects[id.Num] = obj
	return obj, nil
}

func (d *Document) getUncompressedObject(offset int64) (Object, error) {
	if offset < 0 || offset >= int64(len(d.data)) {
		return nil, &pdferr.ObjectIDNotFound{}
	}
	parser := NewParserFromBytes(d.data[offset:])
	_, obj, err := parser.ParseIndirectObject()
	return obj, err
}

// getCompressedObject resolves an object packed inside an object stream
// (spec §4.2): the stream's body is "objNum offset" pairs for N objects,
// followed by the objects themselves starting at First.
func (d *Document) getCompressedObject(streamObjNum uint32, index int) (Object, error) {
	streamObj, err := d.GetObject(ObjectID{Num: streamObjNum})
	if err != nil {
		return nil, err
	}
	stream, ok := streamObj.(Stream)
	if !ok {
		return nil, fmt.Errorf("object stream %d is not a stream", streamObjNum)
	}

	val, err := DecodeStream(stream)
	if err != nil {
		return nil, err
	}
	data := val.Bytes

	first, ok := stream.Dict.GetInt("First")
	if !ok {
		return nil, fmt.Errorf("object stream missing First")
	}
	n, ok := stream.Dict.GetInt("N")
	if !ok {
		return nil, fmt.Errorf("object stream missing N")
	}
	if first < 0 || first > int64(len(data)) {
		return nil, fmt.Errorf("object stream First out of range")
	}

	headerParser := NewParserFromBytes(data[:first])
	offsets := make([]int64, n)
	for i := int64(0); i < n; i++ {
		if _, err := headerParser.ParseObject(); err != nil { // object number, unused
			return nil, err
		}
		offsetObj, err := headerParser.ParseObject()
		if err != nil {
			return nil, err
		}
		if off, ok := offsetObj.(Integer); ok {
			offsets[i] = int64(off)
		}
	}

	if index < 0 || index >= len(offsets) {
		return nil, fmt.Errorf("object index %d out of range", index)
	}

	objOffset := first + offsets[index]
	if objOffset < 0 || objOffset > int64(len(data)) {
		return nil, fmt.Errorf("compressed object offset out of range")
	}
	objParser := NewParserFromBytes(data[objOffset:])
	return objParser.ParseObject()
}
