package cff

import "fmt"

// dict operator keys (spec §4.10): a plain byte 0-21, or 1200+n for the
// escaped two-byte operators (12 n).
const (
	opFontMatrix    = 1207
	opFontBBox      = 5
	opCharset       = 15
	opEncoding      = 16
	opCharStrings   = 17
	opPrivate       = 18
	opSubrs         = 19
	opDefaultWidthX = 20
	opNominalWidthX = 21
	opROS           = 1230
	opFDArray       = 1236
	opFDSelect      = 1237
)

// dict maps an operator key to its operand list (spec §4.10: "byte stream of
// operand,operand,...,operator pairs").
type dict map[int][]float64

func (d dict) singleInt(op int) (int, bool) {
	v, ok := d[op]
	if !ok || len(v) == 0 {
		return 0, false
	}
	return int(v[0]), true
}

func (d dict) singleFloat(op int) (float64, bool) {
	v, ok := d[op]
	if !ok || len(v) == 0 {
		return 0, false
	}
	return v[0], true
}

// parseDict parses a CFF Dict byte stream (spec §4.10).
func parseDict(data []byte) (dict, error) {
	d := make(dict)
	var operands []float64
	i := 0
	for i < len(data) {
		b0 := data[i]
		switch {
		case b0 <= 21:
			op := int(b0)
			i++
			if b0 == 12 {
				if i >= len(data) {
					return nil, fmt.Errorf("cff: dict truncated escape operator")
				}
				op = 1200 + int(data[i])
				i++
			}
			d[op] = operands
			operands = nil

		case b0 == 28:
			if i+3 > len(data) {
				return nil, fmt.Errorf("cff: dict truncated int16 operand")
			}
			v := int16(uint16(data[i+1])<<8 | uint16(data[i+2]))
			operands = append(operands, float64(v))
			i += 3

		case b0 == 29:
			if i+5 > len(data) {
				return nil, fmt.Errorf("cff: dict truncated int32 operand")
			}
			v := int32(be32(data[i+1 : i+5]))
			operands = append(operands, float64(v))
			i += 5

		case b0 == 30:
			v, n, err := parseReal(data[i+1:])
			if err != nil {
				return nil, err
			}
			operands = append(operands, v)
			i += 1 + n

		case b0 >= 32 && b0 <= 246:
			operands = append(operands, float64(int(b0)-139))
			i++

		case b0 >= 247 && b0 <= 250:
			if i+2 > len(data) {
				return nil, fmt.Errorf("cff: dict truncated operand")
			}
			v := (int(b0)-247)*256 + int(data[i+1]) + 108
			operands = append(operands, float64(v))
			i += 2

		case b0 >= 251 && b0 <= 254:
			if i+2 > len(data) {
				return nil, fmt.Errorf("cff: dict truncated operand")
			}
			v := -(int(b0)-251)*256 - int(data[i+1]) - 108
			operands = append(operands, float64(v))
			i += 2

		default:
			return nil, fmt.Errorf("cff: reserved dict operand byte %d", b0)
		}
	}
	return d, nil
}

// parseReal decodes a nibble-packed real number (spec §4.10: ".", "E",
// "E-", "-", end-of-number nibbles), returning the value and the number of
// bytes consumed.
func parseReal(data []byte) (float64, int, error) {
	var sb []byte
	i := 0
	for {
		if i >= len(data) {
			return 0, 0, fmt.Errorf("cff: truncated real number")
		}
		b := data[i]
		i++
		nibbles := [2]byte{b >> 4, b & 0x0f}
		done := false
		for _, n := range nibbles {
			switch {
			case n <= 9:
				sb = append(sb, '0'+n)
			case n == 0xa:
				sb = append(sb, '.')
			case n == 0xb:
				sb = append(sb, 'E')
			case n == 0xc:
				sb = append(sb, 'E', '-')
			case n == 0xe:
				sb = append(sb, '-')
			case n == 0xf:
				done = true
			}
			if done {
				break
			}
		}
		if done {
			break
		}
	}
	var v float64
	_, err := fmt.Sscanf(string(sb), "%g", &v)
	if err != nil {
		return 0, i, nil // malformed real: treat as 0 rather than fail the whole dict
	}
	return v, i, nil
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
