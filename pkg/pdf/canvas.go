package pdf

// FillRule selects the in/out test a fill or clip uses (spec §4.8: "fill
// rule is winding for non-star, even-odd for star").
type FillRule int

const (
	FillNonZero FillRule = iota
	FillEvenOdd
)

// GradientStop is one color stop of a linear or radial shading.
type GradientStop struct {
	Offset  float32
	R, G, B float32
	A       float32
}

// Paint is what a fill, stroke, or pixmap draw is painted with (spec §3,
// §4.8: solid color, axial/radial shading, or a tiling-pattern bitmap).
type Paint interface{ isPaint() }

type SolidPaint struct{ R, G, B, A float32 }

type LinearGradientPaint struct {
	X0, Y0, X1, Y1 float64
	Stops          []GradientStop
	Extend0, Extend1 bool
}

type RadialGradientPaint struct {
	X0, Y0, R0 float64
	X1, Y1, R1 float64
	Stops      []GradientStop
	Extend0, Extend1 bool
}

type PatternBitmapPaint struct {
	Image  *DecodedImage
	Matrix [6]float64 // pattern space -> device space
}

func (SolidPaint) isPaint()           {}
func (LinearGradientPaint) isPaint()  {}
func (RadialGradientPaint) isPaint()  {}
func (PatternBitmapPaint) isPaint()   {}

// StrokeStyle carries the subset of GraphicsState a stroke needs (spec §3:
// line width/cap/join/miter/dash), already in device-space units.
type StrokeStyle struct {
	Width      float64
	Cap        int
	Join       int
	MiterLimit float64
	DashArray  []float64
	DashPhase  float64
}

// Mask is a rasterized coverage buffer, one byte per pixel (0 = fully
// clipped, 255 = fully visible), the cached product of intersecting
// successive clip paths (spec §3, §4.8, §9).
type Mask struct {
	X, Y, W, H int
	Alpha      []byte
}

// Canvas is the external rendering sink the interpreter paints onto (spec
// §4.8: "A canvas sink (external)"). pdfcore never rasterizes pixels
// itself; a Canvas implementation owns that.
type Canvas interface {
	FillPath(p *Path, rule FillRule, paint Paint, clip *Mask, alpha float32)
	StrokePath(p *Path, style StrokeStyle, paint Paint, clip *Mask, alpha float32)
	DrawPixmap(img *DecodedImage, matrix [6]float64, clip *Mask, alpha float32)
	FillRect(r Rectangle, paint Paint, clip *Mask, alpha float32)

	// Rasterize converts a path plus fill rule into a Mask, and
	// IntersectMask combines two Masks (both called only on a mask-cache
	// miss; see maskCache below).
	Rasterize(p *Path, rule FillRule) *Mask
	IntersectMask(a, b *Mask) *Mask
}

// maskCache is the bounded LRU (size 4) of accumulated-clip-path -> Mask
// that keeps successive "q/W n/Q" sequences from re-rasterizing the same
// clip repeatedly (spec §3, §4.8, §9).
type maskCache struct {
	capacity int
	order    []string
	entries  map[string]*Mask
}

func newMaskCache(capacity int) *maskCache {
	return &maskCache{capacity: capacity, entries: make(map[string]*Mask)}
}

func (c *maskCache) get(key string) (*Mask, bool) {
	m, ok := c.entries[key]
	if ok {
		c.touch(key)
	}
	return m, ok
}

func (c *maskCache) put(key string, m *Mask) {
	if _, exists := c.entries[key]; !exists && len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = m
	c.touch(key)
}

func (c *maskCache) touch(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.order = append(c.order, key)
}
