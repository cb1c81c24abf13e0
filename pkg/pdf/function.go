package pdf

import (
	"fmt"
	"math"
)

// Function is a PDF function object (spec §4.5): Domain-clamped input in,
// Range-clamped output out, regardless of which of the four FunctionType
// variants computes the middle step.
type Function interface {
	NumInputs() int
	NumOutputs() int
	Eval(args []float32) ([]float32, error)
}

// NFunc evaluates several single-output functions (or one multi-output
// function) as one vector-valued function, the shape color spaces need for
// a Separation/DeviceN tint transform backed by an array of Type 2
// functions, one per output component (spec §4.6).
type NFunc struct {
	fns []Function
}

func NewNFunc(fns []Function) *NFunc { return &NFunc{fns: fns} }

func (f *NFunc) NumInputs() int {
	if len(f.fns) == 0 {
		return 0
	}
	return f.fns[0].NumInputs()
}

func (f *NFunc) NumOutputs() int {
	n := 0
	for _, fn := range f.fns {
		n += fn.NumOutputs()
	}
	return n
}

func (f *NFunc) Eval(args []float32) ([]float32, error) {
	var out []float32
	for _, fn := range f.fns {
		r, err := fn.Eval(args)
		if err != nil {
			return nil, err
		}
		out = append(out, r...)
	}
	return out, nil
}

// clippedFunction applies the Domain/Range clip_args -> inner_call ->
// clip_returns pattern every function type shares (spec §4.5): inputs are
// clamped to Domain before the type-specific computation runs, and outputs
// are clamped to Range (when present) afterward.
type clippedFunction struct {
	domain   []float32 // pairs: lo0,hi0,lo1,hi1,...
	rangeOut []float32 // pairs, nil if the function has no Range
	nIn      int
	nOut     int
	compute  func(args []float32) ([]float32, error)
}

func (f *clippedFunction) NumInputs() int  { return f.nIn }
func (f *clippedFunction) NumOutputs() int { return f.nOut }

func (f *clippedFunction) Eval(args []float32) ([]float32, error) {
	clipped := clipToPairs(args, f.domain)
	out, err := f.compute(clipped)
	if err != nil {
		return nil, err
	}
	return clipToPairs(out, f.rangeOut), nil
}

func clipToPairs(vals []float32, pairs []float32) []float32 {
	if len(pairs) < 2*len(vals) {
		return vals
	}
	out := make([]float32, len(vals))
	for i, v := range vals {
		lo, hi := pairs[2*i], pairs[2*i+1]
		out[i] = clampF(v, lo, hi)
	}
	return out
}

func clampF(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func interpolate(x, xmin, xmax, ymin, ymax float32) float32 {
	if xmax == xmin {
		return ymin
	}
	return ymin + (x-xmin)*(ymax-ymin)/(xmax-xmin)
}

func floatArray(r Resolver, d Dictionary, key string) []float32 {
	arr, ok := OptArray(r, d, key)
	if !ok {
		return nil
	}
	out := make([]float32, 0, len(arr))
	for _, o := range arr {
		f, _ := asFloat(o)
		out = append(out, f)
	}
	return out
}

// ParseFunction builds the Function named by obj (spec §4.5): a Function
// dictionary or stream, dispatched on its required FunctionType key.
func ParseFunction(r Resolver, obj Object) (Function, error) {
	resolved, err := Resolve(r, obj)
	if err != nil {
		return nil, err
	}

	var dict Dictionary
	var stream Stream
	isStream := false
	switch v := resolved.(type) {
	case Dictionary:
		dict = v
	case Stream:
		dict = v.Dict
		stream = v
		isStream = true
	case Array:
		// A color space tint transform may itself be expressed as an array
		// of single-output functions (spec §4.6); wrap them as one NFunc.
		var fns []Function
		for _, o := range v {
			fn, err := ParseFunction(r, o)
			if err != nil {
				return nil, err
			}
			fns = append(fns, fn)
		}
		return NewNFunc(fns), nil
	default:
		return nil, fmt.Errorf("pdf: Function: unexpected object type %s", resolved.Type())
	}

	ftype := OptInt(r, dict, "FunctionType", -1)
	domain := floatArray(r, dict, "Domain")
	rangeOut := floatArray(r, dict, "Range")
	nIn := len(domain) / 2

	switch ftype {
	case 0:
		if !isStream {
			return nil, fmt.Errorf("pdf: Type 0 Function must be a stream")
		}
		return parseSampledFunction(r, stream, domain, rangeOut)
	case 2:
		return parseExponentialFunction(r, dict, domain, nIn)
	case 3:
		return parseStitchingFunction(r, dict, domain)
	case 4:
		if !isStream {
			return nil, fmt.Errorf("pdf: Type 4 Function must be a stream")
		}
		return parsePostScriptFunction(stream, domain, rangeOut)
	default:
		return nil, fmt.Errorf("pdf: unsupported FunctionType %d", ftype)
	}
}

// parseExponentialFunction builds a Type 2 function: out[i] = C0[i] +
// x^N * (C1[i]-C0[i]) (spec §4.5.2).
func parseExponentialFunction(r Resolver, dict Dictionary, domain []float32, nIn int) (Function, error) {
	c0 := floatArray(r, dict, "C0")
	if c0 == nil {
		c0 = []float32{0}
	}
	c1 := floatArray(r, dict, "C1")
	if c1 == nil {
		c1 = []float32{1}
	}
	n := OptFloat(r, dict, "N", 1)

	nOut := len(c0)
	compute := func(args []float32) ([]float32, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("pdf: exponential function requires one input")
		}
		x := args[0]
		xn := float32(math.Pow(float64(x), float64(n)))
		out := make([]float32, nOut)
		for i := 0; i < nOut; i++ {
			out[i] = c0[i] + xn*(c1[i]-c0[i])
		}
		return out, nil
	}

	if nIn == 0 {
		nIn = 1
	}
	return &clippedFunction{domain: domain, rangeOut: floatArray(r, dict, "Range"), nIn: nIn, nOut: nOut, compute: compute}, nil
}

// parseStitchingFunction builds a Type 3 function: Domain is partitioned by
// Bounds into len(Functions) sub-intervals, each re-mapped through Encode
// before being handed to its sub-function (spec §4.5.3).
func parseStitchingFunction(r Resolver, dict Dictionary, domain []float32) (Function, error) {
	fnsArr, err := RequiredArray(r, dict, "StitchingFunction", "Functions")
	if err != nil {
		return nil, err
	}
	var subs []Function
	for _, o := range fnsArr {
		fn, err := ParseFunction(r, o)
		if err != nil {
			return nil, err
		}
		subs = append(subs, fn)
	}
	bounds := floatArray(r, dict, "Bounds")
	encode := floatArray(r, dict, "Encode")

	if len(domain) < 2 {
		domain = []float32{0, 1}
	}
	dLo, dHi := domain[0], domain[1]

	nOut := 0
	if len(subs) > 0 {
		nOut = subs[0].NumOutputs()
	}

	compute := func(args []float32) ([]float32, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("pdf: stitching function requires one input")
		}
		x := args[0]

		k := 0
		for k < len(bounds) && x >= bounds[k] {
			k++
		}
		if k >= len(subs) {
			k = len(subs) - 1
		}
		if k < 0 {
			return nil, fmt.Errorf("pdf: stitching function has no sub-functions")
		}

		lo := dLo
		if k > 0 {
			lo = bounds[k-1]
		}
		hi := dHi
		if k < len(bounds) {
			hi = bounds[k]
		}
		if lo == hi {
			// A zero-width sub-domain (adjacent equal Bounds entries) can't
			// be interpolated across; fall back to the function's full
			// Domain so encoded still lands somewhere defined.
			lo, hi = dLo, dHi
		}

		eLo, eHi := float32(0), float32(1)
		if len(encode) >= 2*(k+1) {
			eLo, eHi = encode[2*k], encode[2*k+1]
		}
		encoded := interpolate(x, lo, hi, eLo, eHi)

		return subs[k].Eval([]float32{encoded})
	}

	return &clippedFunction{domain: domain, rangeOut: floatArray(r, dict, "Range"), nIn: 1, nOut: nOut, compute: compute}, nil
}

// sampledFunction is a Type 0 function: an m-dimensional table of n-tuples,
// looked up by multilinear interpolation between the 2^m grid corners
// nearest the (Encode-mapped) input point (spec §4.5.1).
type sampledFunction struct {
	size          []int
	bitsPerSample int
	encode        []float32
	decode        []float32
	data          []byte
	nOut          int
}

func parseSampledFunction(r Resolver, s Stream, domain, rangeOut []float32) (Function, error) {
	sizeArr, err := RequiredArray(r, s.Dict, "SampledFunction", "Size")
	if err != nil {
		return nil, err
	}
	size := make([]int, len(sizeArr))
	for i, o := range sizeArr {
		n, _ := asInt(o)
		size[i] = int(n)
	}

	bps := OptInt(r, s.Dict, "BitsPerSample", 8)
	nIn := len(domain) / 2
	nOut := len(rangeOut) / 2
	if nOut == 0 {
		return nil, fmt.Errorf("pdf: Type 0 Function requires Range")
	}

	encode := floatArray(r, s.Dict, "Encode")
	if encode == nil {
		encode = make([]float32, 0, 2*nIn)
		for i := 0; i < nIn; i++ {
			encode = append(encode, 0, float32(size[i]-1))
		}
	}
	decode := floatArray(r, s.Dict, "Decode")
	if decode == nil {
		decode = rangeOut
	}

	val, err := DecodeStream(s)
	if err != nil {
		return nil, err
	}

	sf := &sampledFunction{
		size: size, bitsPerSample: int(bps), encode: encode, decode: decode,
		data: val.Bytes, nOut: nOut,
	}

	compute := func(args []float32) ([]float32, error) {
		return sf.eval(args)
	}
	return &clippedFunction{domain: domain, rangeOut: rangeOut, nIn: nIn, nOut: nOut, compute: compute}, nil
}

func (sf *sampledFunction) eval(args []float32) ([]float32, error) {
	m := len(sf.size)
	if len(args) < m {
		return nil, fmt.Errorf("pdf: sampled function expects %d inputs, got %d", m, len(args))
	}

	// Encode each input into continuous sample-grid coordinates, then clamp
	// to the grid bounds.
	coord := make([]float32, m)
	for i := 0; i < m; i++ {
		lo, hi := sf.encode[2*i], sf.encode[2*i+1]
		var dLo, dHi float32 = 0, 1
		coord[i] = interpolate(args[i], dLo, dHi, lo, hi)
		_ = dHi
		if coord[i] < 0 {
			coord[i] = 0
		}
		if max := float32(sf.size[i] - 1); coord[i] > max {
			coord[i] = max
		}
	}

	out := make([]float32, sf.nOut)
	corners := 1 << m
	for c := 0; c < corners; c++ {
		weight := float32(1)
		idx := make([]int, m)
		for i := 0; i < m; i++ {
			floor := int(coord[i])
			frac := coord[i] - float32(floor)
			if (c>>i)&1 == 1 {
				if floor+1 < sf.size[i] {
					idx[i] = floor + 1
				} else {
					idx[i] = floor
				}
				weight *= frac
			} else {
				idx[i] = floor
				weight *= 1 - frac
			}
		}
		if weight == 0 {
			continue
		}
		samples := sf.sampleAt(idx)
		for j := 0; j < sf.nOut && j < len(samples); j++ {
			out[j] += weight * samples[j]
		}
	}

	max := float32((uint64(1) << uint(sf.bitsPerSample)) - 1)
	for j := 0; j < sf.nOut; j++ {
		dLo, dHi := float32(0), float32(1)
		if len(sf.decode) >= 2*(j+1) {
			dLo, dHi = sf.decode[2*j], sf.decode[2*j+1]
		}
		out[j] = interpolate(out[j], 0, max, dLo, dHi)
	}
	return out, nil
}

// sampleAt reads the nOut-tuple at grid coordinate idx, raw (undecoded)
// values, the first dimension varying fastest in the packed bit stream
// (spec §4.5.1).
func (sf *sampledFunction) sampleAt(idx []int) []float32 {
	linear := 0
	stride := 1
	for i := 0; i < len(idx); i++ {
		linear += idx[i] * stride
		stride *= sf.size[i]
	}

	bitOffset := linear * sf.nOut * sf.bitsPerSample
	out := make([]float32, sf.nOut)
	for j := 0; j < sf.nOut; j++ {
		out[j] = float32(readBits(sf.data, bitOffset+j*sf.bitsPerSample, sf.bitsPerSample))
	}
	return out
}

// readBits reads an n-bit (n<=32) big-endian unsigned value starting at the
// given bit offset.
func readBits(data []byte, bitOffset, n int) uint64 {
	var val uint64
	for i := 0; i < n; i++ {
		bit := bitOffset + i
		byteIdx := bit / 8
		if byteIdx >= len(data) {
			val <<= 1
			continue
		}
		bitIdx := 7 - uint(bit%8)
		b := (data[byteIdx] >> bitIdx) & 1
		val = (val << 1) | uint64(b)
	}
	return val
}
