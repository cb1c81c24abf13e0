package pdf

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/kivaloop/pdfcore/pkg/pdf/internal/diag"
)

// Document is a parsed PDF file: its cross-reference table, resolved
// catalog/trailer dictionaries, and flattened page list (spec §4.2, §4.9).
type Document struct {
	data    []byte
	Version string
	Trailer Dictionary
	Root    Dictionary
	Info    Dictionary
	Pages   []*Page

	objects  map[uint32]Object
	xref     *XRefTable
	security *SecurityHandler
}

// Open reads and parses the PDF file at filename.
func Open(filename string) (*Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewDocument(data)
}

// NewDocument parses data as a PDF file.
func NewDocument(data []byte) (*Document, error) {
	doc := &Document{
		data:    data,
		objects: make(map[uint32]Object),
		xref:    newXRefTable(),
	}
	if err := doc.parse(); err != nil {
		return nil, err
	}
	return doc, nil
}

func (d *Document) parse() error {
	if !bytes.HasPrefix(d.data, []byte("%PDF-")) {
		return fmt.Errorf("not a PDF file")
	}

	idx := bytes.IndexAny(d.data, "\r\n")
	if idx > 0 {
		d.Version = string(d.data[5:idx])
	}

	startxref, err := d.findStartXRef()
	if err != nil {
		return err
	}
	if err := d.parseXRef(startxref); err != nil {
		return err
	}

	rootRef := d.Trailer.Get("Root")
	if rootRef == nil {
		return fmt.Errorf("missing Root in trailer")
	}
	rootObj, err := d.ResolveObject(rootRef)
	if err != nil {
		return err
	}
	root, ok := rootObj.(Dictionary)
	if !ok {
		return fmt.Errorf("Root is not a dictionary")
	}
	d.Root = root

	if infoRef := d.Trailer.Get("Info"); infoRef != nil {
		if infoObj, err := d.ResolveObject(infoRef); err == nil {
			if info, ok := infoObj.(Dictionary); ok {
				d.Info = info
			}
		}
	}

	if d.Trailer.Get("Encrypt") != nil {
		if handler, err := ParseEncryption(d); err != nil {
			diag.Warnf("encrypted document: %v (decryption not applied)", err)
		} else {
			d.security = handler
		}
	}

	if err := d.parsePages(); err != nil {
		return err
	}

	return nil
}

// findStartXRef locates the last "startxref" keyword's offset value, per
// spec §4.2 (readers scan from the tail rather than the head of the file).
func (d *Document) findStartXRef() (int64, error) {
	searchLen := 1024
	if len(d.data) < searchLen {
		searchLen = len(d.data)
	}
	tail := d.data[len(d.data)-searchLen:]

	idx := bytes.LastIndex(tail, []byte("startxref"))
	if idx < 0 {
		return 0, fmt.Errorf("startxref not found")
	}

	start := idx + len("startxref")
	for start < len(tail) && isWhitespace(tail[start]) {
		start++
	}
	end := start
	for end < len(tail) && tail[end] >= '0' && tail[end] <= '9' {
		end++
	}

	offset, err := strconv.ParseInt(string(tail[start:end]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid startxref offset")
	}
	return offset, nil
}

// Close releases the document's backing buffer and caches.
func (d *Document) Close() error {
	d.data = nil
	d.objects = nil
	d.xref = nil
	return nil
}

// NewReader reads all of r and parses it as a PDF file.
func NewReader(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewDocument(data)
}

// DocumentInfo is the flattened, typed view of the trailer's Info dictionary
// plus a handful of catalog-derived facts (spec §4.9's "ambient" metadata).
type DocumentInfo struct {
	Title           string
	Author          string
	Subject         string
	Keywords        string
	Creator         string
	Producer        string
	CreationDate    time.Time
	ModDate         time.Time
	CreationDateRaw string
	ModDateRaw      string
	Custom          map[string]string
	Tagged          bool
	UserProperties  bool
	Suspects        bool
	Form            string
	JavaScript      bool
	Encrypted       bool
	Optimized       bool
	PDFVersion      string
}

// GetInfo returns the document's metadata.
func (d *Document) GetInfo() DocumentInfo {
	info := DocumentInfo{
		Custom:     make(map[string]string),
		PDFVersion: d.Version,
		Form:       "none",
	}

	if d.Info != nil {
		if v := d.Info.Get("Title"); v != nil {
			info.Title = objectToString(v)
		}
		if v := d.Info.Get("Author"); v != nil {
			info.Author = objectToString(v)
		}
		if v := d.Info.Get("Subject"); v != nil {
			info.Subject = objectToString(v)
		}
		if v := d.Info.Get("Keywords"); v != nil {
			info.Keywords = objectToString(v)
		}
		if v := d.Info.Get("Creator"); v != nil {
			info.Creator = objectToString(v)
		}
		if v := d.Info.Get("Producer"); v != nil {
			info.Producer = objectToString(v)
		}
		if v := d.Info.Get("CreationDate"); v != nil {
			info.CreationDateRaw = objectToString(v)
			info.CreationDate = parsePDFDate(info.CreationDateRaw)
		}
		if v := d.Info.Get("ModDate"); v != nil {
			info.ModDateRaw = objectToString(v)
			info.ModDate = parsePDFDate(info.ModDateRaw)
		}

		standardKeys := map[string]bool{
			"Title": true, "Author": true, "Subject": true, "Keywords": true,
			"Creator": true, "Producer": true, "CreationDate": true, "ModDate": true,
			"Trapped": true,
		}
		for key, val := range d.Info {
			if !standardKeys[string(key)] {
				info.Custom[string(key)] = objectToString(val)
			}
		}
	}

	if d.Trailer.Get("Encrypt") != nil {
		info.Encrypted = true
	}

	if markInfo := d.Root.Get("MarkInfo"); markInfo != nil {
		if markDict, err := d.ResolveObject(markInfo); err == nil {
			if dict, ok := markDict.(Dictionary); ok {
				if b, ok := dict.GetBool("Marked"); ok {
					info.Tagged = b
				}
				if b, ok := dict.GetBool("Suspects"); ok {
					info.Suspects = b
				}
				if b, ok := dict.GetBool("UserProperties"); ok {
					info.UserProperties = b
				}
			}
		}
	}

	if acroForm := d.Root.Get("AcroForm"); acroForm != nil {
		info.Form = "AcroForm"
		if formDict, err := d.ResolveObject(acroForm); err == nil {
			if dict, ok := formDict.(Dictionary); ok {
				if dict.Get("XFA") != nil {
					info.Form = "XFA"
				}
			}
		}
	}

	if names := d.Root.Get("Names"); names != nil {
		if namesObj, err := d.ResolveObject(names); err == nil {
			if dict, ok := namesObj.(Dictionary); ok {
				if dict.Get("JavaScript") != nil {
					info.JavaScript = true
				}
			}
		}
	}

	if len(d.data) > 100 && bytes.Contains(d.data[:100], []byte("/Linearized")) {
		info.Optimized = true
	}

	return info
}

func objectToString(obj Object) string {
	switch v := obj.(type) {
	case String:
		return v.Text()
	case Name:
		return string(v)
	}
	return ""
}

// parsePDFDate parses a PDF date string (D:YYYYMMDDHHmmSSOHH'mm').
func parsePDFDate(s string) time.Time {
	if len(s) < 2 {
		return time.Time{}
	}
	if s[0:2] == "D:" {
		s = s[2:]
	}

	var year, month, day, hour, min, sec int
	var tzHour, tzMin int
	var tzSign byte = '+'

	if len(s) >= 4 {
		year, _ = strconv.Atoi(s[0:4])
	}
	month = 1
	if len(s) >= 6 {
		month, _ = strconv.Atoi(s[4:6])
	}
	day = 1
	if len(s) >= 8 {
		day, _ = strconv.Atoi(s[6:8])
	}
	if len(s) >= 10 {
		hour, _ = strconv.Atoi(s[8:10])
	}
	if len(s) >= 12 {
		min, _ = strconv.Atoi(s[10:12])
	}
	if len(s) >= 14 {
		sec, _ = strconv.Atoi(s[12:14])
	}
	if len(s) >= 15 {
		tzSign = s[14]
		if len(s) >= 17 {
			tzHour, _ = strconv.Atoi(s[15:17])
		}
		if len(s) >= 20 && s[17] == '\'' {
			tzMin, _ = strconv.Atoi(s[18:20])
		}
	}

	offset := tzHour*3600 + tzMin*60
	if tzSign == '-' {
		offset = -offset
	}
	loc := time.FixedZone("", offset)
	return time.Date(year, time.Month(month), day, hour, min, sec, 0, loc)
}

// GetVersion returns the PDF header version string.
func (d *Document) GetVersion() string { return d.Version }

// GetMetadata returns the catalog's XMP metadata stream, decoded, or "" if
// absent.
func (d *Document) GetMetadata() string {
	metadataRef := d.Root.Get("Metadata")
	if metadataRef == nil {
		return ""
	}
	metadataObj, err := d.ResolveObject(metadataRef)
	if err != nil {
		return ""
	}
	stream, ok := metadataObj.(Stream)
	if !ok {
		return ""
	}
	val, err := DecodeStream(stream)
	if err != nil {
		return ""
	}
	return string(val.Bytes)
}

// GetJavaScript returns the source of every document-level JavaScript action
// reachable from the Names tree.
func (d *Document) GetJavaScript() []string {
	var scripts []string

	namesObj, err := d.ResolveObject(d.Root.Get("Names"))
	if err != nil {
		return scripts
	}
	namesDict, ok := namesObj.(Dictionary)
	if !ok {
		return scripts
	}

	jsObj, err := d.ResolveObject(namesDict.Get("JavaScript"))
	if err != nil {
		return scripts
	}
	jsDict, ok := jsObj.(Dictionary)
	if !ok {
		return scripts
	}

	namesArrObj, err := d.ResolveObject(jsDict.Get("Names"))
	if err != nil {
		return scripts
	}
	arr, ok := namesArrObj.(Array)
	if !ok {
		return scripts
	}

	for i := 1; i < len(arr); i += 2 {
		actionObj, err := d.ResolveObject(arr[i])
		if err != nil {
			continue
		}
		actionDict, ok := actionObj.(Dictionary)
		if !ok {
			continue
		}
		jsCodeObj, err := d.ResolveObject(actionDict.Get("JS"))
		if err != nil {
			continue
		}
		switch v := jsCodeObj.(type) {
		case String:
			scripts = append(scripts, v.Text())
		case Stream:
			if val, err := DecodeStream(v); err == nil {
				scripts = append(scripts, string(val.Bytes))
			}
		}
	}

	return scripts
}

// GetNamedDestinations returns the names of every named destination, from
// both the legacy Dests dictionary and the Names tree.
func (d *Document) GetNamedDestinations() map[string]interface{} {
	dests := make(map[string]interface{})

	if destsObj, err := d.ResolveObject(d.Root.Get("Dests")); err == nil {
		if destsDict, ok := destsObj.(Dictionary); ok {
			for name := range destsDict {
				dests[string(name)] = "destination"
			}
		}
	}

	if namesObj, err := d.ResolveObject(d.Root.Get("Names")); err == nil {
		if namesDict, ok := namesObj.(Dictionary); ok {
			if destsRef := namesDict.Get("Dests"); destsRef != nil {
				d.collectNameTreeDests(destsRef, dests)
			}
		}
	}

	return dests
}

func (d *Document) collectNameTreeDests(ref Object, dests map[string]interface{}) {
	obj, err := d.ResolveObject(ref)
	if err != nil {
		return
	}
	dict, ok := obj.(Dictionary)
	if !ok {
		return
	}

	if namesObj, err := d.ResolveObject(dict.Get("Names")); err == nil {
		if arr, ok := namesObj.(Array); ok {
			for i := 0; i+1 < len(arr); i += 2 {
				if name, ok := arr[i].(String); ok {
					dests[string(name.Value)] = "destination"
				}
			}
		}
	}

	if kidsObj, err := d.ResolveObject(dict.Get("Kids")); err == nil {
		if arr, ok := kidsObj.(Array); ok {
			for _, kid := range arr {
				d.collectNameTreeDests(kid, dests)
			}
		}
	}
}
