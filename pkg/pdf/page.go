package pdf

import "fmt"

// Rectangle is a PDF rectangle in default user space.
type Rectangle struct {
	LLX, LLY, URX, URY float64
}

// Width returns the rectangle width.
func (r Rectangle) Width() float64 { return r.URX - r.LLX }

// Height returns the rectangle height.
func (r Rectangle) Height() float64 { return r.URY - r.LLY }

// Page is one leaf of the page tree, with every inheritable attribute
// (spec §4.9: Resources, MediaBox, CropBox, Rotate) already resolved down
// from its ancestors.
type Page struct {
	doc        *Document
	Dictionary Dictionary
	Number     int
	MediaBox   Rectangle
	CropBox    Rectangle
	Resources  Dictionary
	Rotate     int
}

// pageInherited carries the page-tree attributes spec §4.9 says a Pages node
// passes down to its Kids unless a Kid overrides them.
type pageInherited struct {
	resources      Dictionary
	mediaBox       Rectangle
	haveMediaBox   bool
	cropBox        Rectangle
	haveCropBox    bool
	rotate         int
}

// parsePages walks the page tree from the catalog's Pages entry, in order,
// flattening it into d.Pages. A node reached a second time (a Kid that is its
// own ancestor, which a well-formed file never has but a hostile one might,
// or a Kid listed twice) is skipped via a visited-node set rather than
// looping forever.
func (d *Document) parsePages() error {
	pagesRef := d.Root.Get("Pages")
	if pagesRef == nil {
		return fmt.Errorf("missing Pages in catalog")
	}

	pagesObj, err := d.ResolveObject(pagesRef)
	if err != nil {
		return err
	}
	pagesDict, ok := pagesObj.(Dictionary)
	if !ok {
		return fmt.Errorf("Pages is not a dictionary")
	}

	visited := make(map[uint32]bool)
	var rootID ObjectID
	if ref, ok := pagesRef.(Reference); ok {
		rootID = ref.ID
		visited[rootID.Num] = true
	}

	return d.walkPagesNode(pagesDict, pageInherited{}, visited)
}

func (d *Document) walkPagesNode(node Dictionary, inherited pageInherited, visited map[uint32]bool) error {
	nodeType, _ := node.GetName("Type")

	inh := inherited
	if res := node.Get("Resources"); res != nil {
		if resObj, err := d.ResolveObject(res); err == nil {
			if resDict, ok := resObj.(Dictionary); ok {
				inh.resources = resDict
			}
		}
	}
	if mb := node.Get("MediaBox"); mb != nil {
		if mbObj, err := d.ResolveObject(mb); err == nil {
			if mbArray, ok := mbObj.(Array); ok && len(mbArray) == 4 {
				inh.mediaBox = arrayToRectangle(mbArray)
				inh.haveMediaBox = true
			}
		}
	}
	if cb := node.Get("CropBox"); cb != nil {
		if cbObj, err := d.ResolveObject(cb); err == nil {
			if cbArray, ok := cbObj.(Array); ok && len(cbArray) == 4 {
				inh.cropBox = arrayToRectangle(cbArray)
				inh.haveCropBox = true
			}
		}
	}
	if rot := node.Get("Rotate"); rot != nil {
		if rotObj, err := d.ResolveObject(rot); err == nil {
			if n, ok := asInt(rotObj); ok {
				inh.rotate = normalizeRotation(int(n))
			}
		}
	}

	if nodeType == "Pages" {
		kidsRef := node.Get("Kids")
		if kidsRef == nil {
			return nil
		}
		kidsObj, err := d.ResolveObject(kidsRef)
		if err != nil {
			return err
		}
		kids, ok := kidsObj.(Array)
		if !ok {
			return fmt.Errorf("Kids is not an array")
		}

		for _, kidRef := range kids {
			if ref, ok := kidRef.(Reference); ok {
				if visited[ref.ID.Num] {
					continue // already visited: a cycle or a repeated kid
				}
				visited[ref.ID.Num] = true
			}

			kidObj, err := d.ResolveObject(kidRef)
			if err != nil {
				continue
			}
			kidDict, ok := kidObj.(Dictionary)
			if !ok {
				continue
			}
			if err := d.walkPagesNode(kidDict, inh, visited); err != nil {
				return err
			}
		}
		return nil
	}

	if nodeType == "Page" || nodeType == "" {
		page := &Page{
			doc:        d,
			Dictionary: node,
			Number:     len(d.Pages) + 1,
			Resources:  inh.resources,
			Rotate:     inh.rotate,
		}
		if inh.haveMediaBox {
			page.MediaBox = inh.mediaBox
		}
		if inh.haveCropBox {
			page.CropBox = inh.cropBox
		} else {
			page.CropBox = page.MediaBox
		}
		d.Pages = append(d.Pages, page)
	}

	return nil
}

// normalizeRotation folds a /Rotate value into [0, 360) in steps of 90, per
// spec §4.9 ("a multiple of 90; negative or >=360 values wrap").
func normalizeRotation(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return (deg / 90) * 90
}

func arrayToRectangle(arr Array) Rectangle {
	var r Rectangle
	if len(arr) >= 4 {
		r.LLX, _ = asFloatFallback(arr[0])
		r.LLY, _ = asFloatFallback(arr[1])
		r.URX, _ = asFloatFallback(arr[2])
		r.URY, _ = asFloatFallback(arr[3])
	}
	return r
}

func asFloatFallback(o Object) (float64, bool) {
	f, ok := asFloat(o)
	return float64(f), ok
}

func rectangleToArray(r Rectangle) Array {
	return Array{Real(r.LLX), Real(r.LLY), Real(r.URX), Real(r.URY)}
}

// NumPages returns the number of pages.
func (d *Document) NumPages() int { return len(d.Pages) }

// GetPage returns a page by number (1-indexed).
func (d *Document) GetPage(num int) (*Page, error) {
	if num < 1 || num > len(d.Pages) {
		return nil, fmt.Errorf("page %d out of range", num)
	}
	return d.Pages[num-1], nil
}

// GetContents returns the page's content stream(s), concatenated and
// decoded (spec §4.9: multiple content streams behave as if they were one).
func (p *Page) GetContents() ([]byte, error) {
	contentsRef := p.Dictionary.Get("Contents")
	if contentsRef == nil {
		return nil, nil
	}

	contentsObj, err := p.doc.ResolveObject(contentsRef)
	if err != nil {
		return nil, err
	}

	switch contents := contentsObj.(type) {
	case Stream:
		val, err := DecodeStream(contents)
		if err != nil {
			return nil, err
		}
		return val.Bytes, nil
	case Array:
		var out []byte
		for _, ref := range contents {
			streamObj, err := p.doc.ResolveObject(ref)
			if err != nil {
				continue
			}
			stream, ok := streamObj.(Stream)
			if !ok {
				continue
			}
			val, err := DecodeStream(stream)
			if err != nil {
				continue
			}
			out = append(out, val.Bytes...)
			out = append(out, '\n')
		}
		return out, nil
	}

	return nil, fmt.Errorf("invalid Contents type")
}

// Width returns the page width in default user space.
func (p *Page) Width() float64 { return p.MediaBox.Width() }

// Height returns the page height in default user space.
func (p *Page) Height() float64 { return p.MediaBox.Height() }

// GetMediaBox returns the page's media box.
func (p *Page) GetMediaBox() Rectangle { return p.MediaBox }

// GetCropBox returns the page's crop box, defaulting to the media box.
func (p *Page) GetCropBox() Rectangle {
	if p.CropBox != (Rectangle{}) {
		return p.CropBox
	}
	return p.MediaBox
}

func (p *Page) boxOrCropBox(key string) Rectangle {
	if bb := p.Dictionary.Get(key); bb != nil {
		if bbObj, err := p.doc.ResolveObject(bb); err == nil {
			if arr, ok := bbObj.(Array); ok && len(arr) == 4 {
				return arrayToRectangle(arr)
			}
		}
	}
	return p.GetCropBox()
}

// GetBleedBox returns the page's bleed box, defaulting to the crop box.
func (p *Page) GetBleedBox() Rectangle { return p.boxOrCropBox("BleedBox") }

// GetTrimBox returns the page's trim box, defaulting to the crop box.
func (p *Page) GetTrimBox() Rectangle { return p.boxOrCropBox("TrimBox") }

// GetArtBox returns the page's art box, defaulting to the crop box.
func (p *Page) GetArtBox() Rectangle { return p.boxOrCropBox("ArtBox") }

// GetRotation returns the page's inherited rotation in degrees (0/90/180/270).
func (p *Page) GetRotation() int { return p.Rotate }
