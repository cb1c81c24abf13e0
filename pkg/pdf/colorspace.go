package pdf

import (
	"fmt"
	"math"
)

// ColorSpace converts a pixel's raw component values (already normalized to
// each component's natural range) to RGB in [0,1], and reports how many
// components a pixel in this space carries (spec §4.7).
type ColorSpace interface {
	NumComponents() int
	ToRGB(comps []float32) (r, g, b float32)
}

// DeviceGray, DeviceRGB and DeviceCMYK are the three device color spaces
// every PDF consumer must support directly (spec §4.7.1).
type DeviceGray struct{}

func (DeviceGray) NumComponents() int { return 1 }
func (DeviceGray) ToRGB(c []float32) (float32, float32, float32) {
	g := comp(c, 0)
	return g, g, g
}

type DeviceRGB struct{}

func (DeviceRGB) NumComponents() int { return 3 }
func (DeviceRGB) ToRGB(c []float32) (float32, float32, float32) {
	return comp(c, 0), comp(c, 1), comp(c, 2)
}

type DeviceCMYK struct{}

func (DeviceCMYK) NumComponents() int { return 4 }
func (DeviceCMYK) ToRGB(c []float32) (float32, float32, float32) {
	cy, m, y, k := comp(c, 0), comp(c, 1), comp(c, 2), comp(c, 3)
	r := (1 - cy) * (1 - k)
	g := (1 - m) * (1 - k)
	b := (1 - y) * (1 - k)
	return r, g, b
}

func comp(c []float32, i int) float32 {
	if i >= len(c) {
		return 0
	}
	return c[i]
}

// CalGray and CalRGB (spec §4.7.2) are CIE-based spaces whose accurate
// rendering needs a color-managed pipeline; readers that don't have one
// (this one doesn't) treat them as their Device analogues, which is what
// their WhitePoint/Gamma parameters approximate under D50/D65 viewing
// conditions in the common case.
type CalGray struct {
	WhitePoint [3]float32
	Gamma      float32
}

func (CalGray) NumComponents() int { return 1 }
func (c CalGray) ToRGB(v []float32) (float32, float32, float32) {
	return DeviceGray{}.ToRGB(v)
}

type CalRGB struct {
	WhitePoint [3]float32
	Gamma      [3]float32
	Matrix     [9]float32
}

func (CalRGB) NumComponents() int { return 3 }
func (c CalRGB) ToRGB(v []float32) (float32, float32, float32) {
	return DeviceRGB{}.ToRGB(v)
}

// Lab is the CIE 1976 L*a*b* space (spec §4.7.2). L is in [0,100], a/b in
// Range (default [-100,100]).
type Lab struct {
	WhitePoint [3]float32
	Range      [4]float32
}

func (Lab) NumComponents() int { return 3 }

func (c Lab) ToRGB(v []float32) (float32, float32, float32) {
	l, a, b := comp(v, 0), comp(v, 1), comp(v, 2)

	fy := (l + 16) / 116
	fx := fy + a/500
	fz := fy - b/200

	wx, wy, wz := c.whitePoint()
	x := wx * labInv(fx)
	y := wy * labInv(fy)
	z := wz * labInv(fz)

	// CIE XYZ to linear sRGB, then gamma-encoded.
	r := 3.2406*x - 1.5372*y - 0.4986*z
	g := -0.9689*x + 1.8758*y + 0.0415*z
	bl := 0.0557*x - 0.2040*y + 1.0570*z

	return gammaEncode(r), gammaEncode(g), gammaEncode(bl)
}

func (c Lab) whitePoint() (float32, float32, float32) {
	if c.WhitePoint == ([3]float32{}) {
		return 0.9505, 1.0, 1.089
	}
	return c.WhitePoint[0], c.WhitePoint[1], c.WhitePoint[2]
}

func labInv(t float32) float32 {
	if t > 6.0/29.0 {
		return t * t * t
	}
	return 3 * (6.0 / 29.0) * (6.0 / 29.0) * (t - 4.0/29.0)
}

func gammaEncode(v float32) float32 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	if v <= 0.0031308 {
		return 12.92 * v
	}
	return float32(1.055*math.Pow(float64(v), 1/2.4) - 0.055)
}

// ICCBased wraps an ICC profile stream (spec §4.7.2.3). Without an ICC
// engine, color is approximated from the profile's declared component count
// via its Alternate space, or a Device space of the same arity.
type ICCBased struct {
	N         int
	Alternate ColorSpace
}

func (c ICCBased) NumComponents() int { return c.N }
func (c ICCBased) ToRGB(v []float32) (float32, float32, float32) {
	if c.Alternate != nil {
		return c.Alternate.ToRGB(v)
	}
	switch c.N {
	case 1:
		return DeviceGray{}.ToRGB(v)
	case 4:
		return DeviceCMYK{}.ToRGB(v)
	default:
		return DeviceRGB{}.ToRGB(v)
	}
}

// Indexed looks up a single-component palette index in a base color space's
// lookup table (spec §4.7.3).
type Indexed struct {
	Base    ColorSpace
	HiVal   int
	Lookup  []byte
}

func (Indexed) NumComponents() int { return 1 }

func (c Indexed) ToRGB(v []float32) (float32, float32, float32) {
	idx := int(comp(v, 0))
	if idx < 0 {
		idx = 0
	}
	if idx > c.HiVal {
		idx = c.HiVal
	}
	n := c.Base.NumComponents()
	start := idx * n
	if start+n > len(c.Lookup) {
		return 0, 0, 0
	}
	comps := make([]float32, n)
	for i := 0; i < n; i++ {
		comps[i] = float32(c.Lookup[start+i]) / 255
	}
	return c.Base.ToRGB(comps)
}

// Separation and DeviceN (spec §4.7.4) run their component values (tint
// amounts, [0,1] each) through a tint-transform Function into the alternate
// space.
type Separation struct {
	NumColorants int
	Alternate    ColorSpace
	TintTransform Function
}

func (c Separation) NumComponents() int { return c.NumColorants }

func (c Separation) ToRGB(v []float32) (float32, float32, float32) {
	out, err := c.TintTransform.Eval(v)
	if err != nil || c.Alternate == nil {
		g := 1 - comp(v, 0)
		return g, g, g
	}
	return c.Alternate.ToRGB(out)
}

// PatternSpace wraps an underlying color space for uncolored tiling
// patterns (spec §4.7.5); painting the pattern itself is the content
// interpreter's job, not the color space's.
type PatternSpace struct {
	Under ColorSpace
}

func (c PatternSpace) NumComponents() int {
	if c.Under != nil {
		return c.Under.NumComponents()
	}
	return 1
}

func (c PatternSpace) ToRGB(v []float32) (float32, float32, float32) {
	if c.Under != nil {
		return c.Under.ToRGB(v)
	}
	return 0, 0, 0
}

// ParseColorSpace resolves obj into a ColorSpace, dispatching on a bare Name
// (device spaces, or a Resources/ColorSpace lookup) or a [Family ...] array
// (spec §4.7).
func ParseColorSpace(r Resolver, res Dictionary, obj Object) (ColorSpace, error) {
	resolved, err := Resolve(r, obj)
	if err != nil {
		return nil, err
	}

	switch v := resolved.(type) {
	case Name:
		return namedColorSpace(r, res, string(v))
	case Array:
		return parseColorSpaceArray(r, res, v)
	default:
		return nil, fmt.Errorf("pdf: unexpected ColorSpace object %s", resolved.Type())
	}
}

func namedColorSpace(r Resolver, res Dictionary, name string) (ColorSpace, error) {
	switch name {
	case "DeviceGray", "CalGray", "G":
		return DeviceGray{}, nil
	case "DeviceRGB", "RGB":
		return DeviceRGB{}, nil
	case "DeviceCMYK", "CMYK":
		return DeviceCMYK{}, nil
	case "Pattern":
		return PatternSpace{}, nil
	}

	if res == nil {
		return nil, fmt.Errorf("pdf: unknown named ColorSpace %q", name)
	}
	csDict, ok := OptDict(r, res, "ColorSpace")
	if !ok {
		return nil, fmt.Errorf("pdf: unknown named ColorSpace %q", name)
	}
	entry := csDict.Get(name)
	if entry == nil {
		return nil, fmt.Errorf("pdf: ColorSpace %q not found in Resources", name)
	}
	return ParseColorSpace(r, res, entry)
}

func parseColorSpaceArray(r Resolver, res Dictionary, arr Array) (ColorSpace, error) {
	if len(arr) == 0 {
		return nil, fmt.Errorf("pdf: empty ColorSpace array")
	}
	family, err := ResolveName(r, arr[0])
	if err != nil {
		return nil, err
	}

	switch family {
	case "ICCBased":
		if len(arr) < 2 {
			return nil, fmt.Errorf("pdf: ICCBased missing stream")
		}
		stream, err := ResolveStream(r, arr[1])
		if err != nil {
			return nil, err
		}
		n := int(OptInt(r, stream.Dict, "N", 3))
		var alt ColorSpace
		if altObj := stream.Dict.Get("Alternate"); altObj != nil {
			alt, _ = ParseColorSpace(r, res, altObj)
		}
		return ICCBased{N: n, Alternate: alt}, nil

	case "CalGray":
		dict, _ := ResolveDict(r, arr[1])
		return CalGray{
			WhitePoint: floatArray3(r, dict, "WhitePoint"),
			Gamma:      OptFloat(r, dict, "Gamma", 1),
		}, nil

	case "CalRGB":
		dict, _ := ResolveDict(r, arr[1])
		g := floatArray(r, dict, "Gamma")
		var gamma [3]float32
		if len(g) == 3 {
			gamma = [3]float32{g[0], g[1], g[2]}
		} else {
			gamma = [3]float32{1, 1, 1}
		}
		return CalRGB{WhitePoint: floatArray3(r, dict, "WhitePoint"), Gamma: gamma}, nil

	case "Lab":
		dict, _ := ResolveDict(r, arr[1])
		rng := floatArray(r, dict, "Range")
		var rangeArr [4]float32
		if len(rng) == 4 {
			rangeArr = [4]float32{rng[0], rng[1], rng[2], rng[3]}
		} else {
			rangeArr = [4]float32{-100, 100, -100, 100}
		}
		return Lab{WhitePoint: floatArray3(r, dict, "WhitePoint"), Range: rangeArr}, nil

	case "Indexed":
		if len(arr) < 4 {
			return nil, fmt.Errorf("pdf: Indexed array too short")
		}
		base, err := ParseColorSpace(r, res, arr[1])
		if err != nil {
			return nil, err
		}
		hiVal, err := ResolveInt(r, arr[2])
		if err != nil {
			return nil, err
		}
		lookup, err := indexedLookupBytes(r, arr[3])
		if err != nil {
			return nil, err
		}
		return Indexed{Base: base, HiVal: int(hiVal), Lookup: lookup}, nil

	case "Separation", "DeviceN":
		if len(arr) < 4 {
			return nil, fmt.Errorf("pdf: %s array too short", family)
		}
		n := 1
		if family == "DeviceN" {
			names, err := ResolveArray(r, arr[1])
			if err != nil {
				return nil, err
			}
			n = len(names)
		}
		alt, err := ParseColorSpace(r, res, arr[2])
		if err != nil {
			return nil, err
		}
		fn, err := ParseFunction(r, arr[3])
		if err != nil {
			return nil, err
		}
		return Separation{NumColorants: n, Alternate: alt, TintTransform: fn}, nil

	case "Pattern":
		if len(arr) < 2 {
			return PatternSpace{}, nil
		}
		under, err := ParseColorSpace(r, res, arr[1])
		if err != nil {
			return PatternSpace{}, nil
		}
		return PatternSpace{Under: under}, nil

	case "DeviceGray", "DeviceRGB", "DeviceCMYK":
		return namedColorSpace(r, res, string(family))

	default:
		return nil, fmt.Errorf("pdf: unsupported ColorSpace family %q", family)
	}
}

func floatArray3(r Resolver, d Dictionary, key string) [3]float32 {
	a := floatArray(r, d, key)
	if len(a) != 3 {
		return [3]float32{}
	}
	return [3]float32{a[0], a[1], a[2]}
}

// indexedLookupBytes reads an Indexed color space's lookup table, which may
// be either a literal String or a Stream of raw bytes (spec §4.7.3).
func indexedLookupBytes(r Resolver, obj Object) ([]byte, error) {
	resolved, err := Resolve(r, obj)
	if err != nil {
		return nil, err
	}
	switch v := resolved.(type) {
	case String:
		return v.Value, nil
	case Stream:
		val, err := DecodeStream(v)
		if err != nil {
			return nil, err
		}
		return val.Bytes, nil
	default:
		return nil, fmt.Errorf("pdf: Indexed lookup must be a string or stream, got %s", resolved.Type())
	}
}
