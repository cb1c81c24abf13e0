// Package pdf provides CCITT Group 4 fax decoding for the stream filter
// pipeline (C3).
package pdf

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/image/ccitt"
)

// CCITTParams holds the subset of DecodeParms fields spec.md §4.3 requires.
// Only Group 4 (K < 0) is supported; the other fields are required
// invariants rather than free parameters — a file that sets them
// differently is rejected rather than silently mis-decoded.
type CCITTParams struct {
	K                      int
	Columns                int
	Rows                   int
	EncodedByteAlign       bool
	BlackIs1               bool
	EndOfLine              bool
	EndOfBlock             bool
	DamagedRowsBeforeError int
}

// DefaultCCITTParams returns the DecodeParms defaults from the PDF spec.
func DefaultCCITTParams() CCITTParams {
	return CCITTParams{
		K:                      0,
		Columns:                1728,
		Rows:                   0,
		EncodedByteAlign:       false,
		BlackIs1:               false,
		EndOfLine:              false,
		EndOfBlock:             true,
		DamagedRowsBeforeError: 0,
	}
}

// ccittParamsFromDict reads CCITTFaxDecode parameters out of a DecodeParms
// dictionary, applying spec.md §4.3 defaults for absent fields.
func ccittParamsFromDict(dict Dictionary) CCITTParams {
	p := DefaultCCITTParams()
	if dict == nil {
		return p
	}
	if v, ok := dict.GetInt("K"); ok {
		p.K = int(v)
	}
	if v, ok := dict.GetInt("Columns"); ok {
		p.Columns = int(v)
	}
	if v, ok := dict.GetInt("Rows"); ok {
		p.Rows = int(v)
	}
	if v, ok := dict.GetBool("EncodedByteAlign"); ok {
		p.EncodedByteAlign = v
	}
	if v, ok := dict.GetBool("BlackIs1"); ok {
		p.BlackIs1 = v
	}
	if v, ok := dict.GetBool("EndOfLine"); ok {
		p.EndOfLine = v
	}
	if v, ok := dict.GetBool("EndOfBlock"); ok {
		p.EndOfBlock = v
	}
	if v, ok := dict.GetInt("DamagedRowsBeforeError"); ok {
		p.DamagedRowsBeforeError = int(v)
	}
	return p
}

// DecodeCCITTFax decodes Group 4 CCITT fax data into packed 1-bpp rows,
// MSB first, one padding bit per row dropped to the next byte boundary.
// Only Group 4 (K < 0) is required by spec.md §4.3; any other invariant
// violation panics rather than silently mis-decoding, per the same section.
func DecodeCCITTFax(data []byte, params CCITTParams) ([]byte, error) {
	if params.K >= 0 {
		panic(fmt.Sprintf("pdf: CCITTFaxDecode: only Group 4 (K < 0) is supported, got K=%d", params.K))
	}
	if params.EndOfLine {
		panic("pdf: CCITTFaxDecode: EndOfLine=true is not a supported invariant")
	}
	if !params.EndOfBlock {
		panic("pdf: CCITTFaxDecode: EndOfBlock=false is not a supported invariant")
	}
	if params.DamagedRowsBeforeError != 0 {
		panic("pdf: CCITTFaxDecode: DamagedRowsBeforeError != 0 is not a supported invariant")
	}

	columns := params.Columns
	if columns == 0 {
		columns = 1728
	}
	rows := params.Rows

	r := ccitt.NewReader(bytes.NewReader(data), ccitt.MSB, ccitt.Group4, columns, rows, &ccitt.Options{
		Invert: !params.BlackIs1,
		Align:  params.EncodedByteAlign,
	})

	out, err := io.ReadAll(r)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("pdf: CCITTFaxDecode: %w", err)
	}
	return out, nil
}
