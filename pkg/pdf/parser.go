package pdf

import (
	"bytes"
	"fmt"
	"io"
)

// Parser parses PDF objects from tokens: the Lexer turns bytes into Tokens,
// Parser turns Tokens into Objects.
type Parser struct {
	lexer  *Lexer
	tokens []Token
	pos    int

	// data is the full buffer the lexer was built from, when known. Stream
	// values borrow byte ranges into this buffer rather than copying
	// (objects.go's Stream/ByteRange contract); when a Parser is built
	// directly atop a Lexer of unknown origin, data is nil and stream
	// bytes are copied into a private buffer instead.
	data []byte
}

// NewParser creates a new parser for the given lexer.
func NewParser(lexer *Lexer) *Parser {
	return &Parser{
		lexer:  lexer,
		tokens: make([]Token, 0),
	}
}

// NewParserFromBytes creates a new parser from a byte slice. Streams parsed
// through this Parser borrow byte ranges directly into data.
func NewParserFromBytes(data []byte) *Parser {
	p := NewParser(NewLexerFromBytes(data))
	p.data = data
	return p
}

// nextToken gets the next token, buffering for lookahead.
func (p *Parser) nextToken() (Token, error) {
	if p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		p.pos++
		return tok, nil
	}

	tok, err := p.lexer.NextToken()
	if err != nil {
		return Token{}, err
	}

	p.tokens = append(p.tokens, tok)
	p.pos++
	return tok, nil
}

// peekToken peeks at the next token without consuming it.
func (p *Parser) peekToken() (Token, error) {
	tok, err := p.nextToken()
	if err != nil {
		return Token{}, err
	}
	p.pos--
	return tok, nil
}

// peekTokenN peeks at the nth token ahead (0-indexed).
func (p *Parser) peekTokenN(n int) (Token, error) {
	for i := len(p.tokens); i <= p.pos+n; i++ {
		tok, err := p.lexer.NextToken()
		if err != nil {
			return Token{}, err
		}
		p.tokens = append(p.tokens, tok)
	}
	return p.tokens[p.pos+n], nil
}

// ParseObject parses a single PDF object, resolving the "num gen R"
// lookahead into a Reference.
func (p *Parser) ParseObject() (Object, error) {
	tok, err := p.nextToken()
	if err != nil {
		return nil, err
	}

	switch tok.Type {
	case TokenEOF:
		return nil, io.EOF

	case TokenNull:
		return Null{}, nil

	case TokenBoolean:
		return Boolean(tok.Value.(bool)), nil

	case TokenInteger:
		next1, err := p.peekToken()
		if err == nil && next1.Type == TokenInteger {
			next2, err := p.peekTokenN(1)
			if err == nil && next2.Type == TokenRef {
				p.nextToken() // consume generation number
				p.nextToken() // consume R
				return Reference{ID: ObjectID{
					Num: uint32(tok.Value.(int64)),
					Gen: uint16(next1.Value.(int64)),
				}}, nil
			}
		}
		return Integer(tok.Value.(int64)), nil

	case TokenReal:
		return Real(tok.Value.(float64)), nil

	case TokenString:
		return String{Value: tok.Value.([]byte), IsHex: false}, nil

	case TokenHexString:
		return String{Value: tok.Value.([]byte), IsHex: true}, nil

	case TokenName:
		return Name(tok.Value.(string)), nil

	case TokenArrayStart:
		return p.parseArray()

	case TokenDictStart:
		return p.parseDictionary()

	default:
		return nil, fmt.Errorf("unexpected token type %d at position %d", tok.Type, tok.Pos)
	}
}

// parseArray parses a PDF array [...].
func (p *Parser) parseArray() (Array, error) {
	var arr Array

	for {
		tok, err := p.peekToken()
		if err != nil {
			return nil, err
		}

		if tok.Type == TokenArrayEnd {
			p.nextToken()
			return arr, nil
		}

		obj, err := p.ParseObject()
		if err != nil {
			return nil, err
		}

		arr = append(arr, obj)
	}
}

// parseDictionary parses a PDF dictionary <<...>>.
func (p *Parser) parseDictionary() (Dictionary, error) {
	dict := make(Dictionary)

	for {
		tok, err := p.peekToken()
		if err != nil {
			return nil, err
		}

		if tok.Type == TokenDictEnd {
			p.nextToken()
			return dict, nil
		}

		keyTok, err := p.nextToken()
		if err != nil {
			return nil, err
		}
		if keyTok.Type != TokenName {
			return nil, fmt.Errorf("expected name as dictionary key at position %d", keyTok.Pos)
		}
		key := Name(keyTok.Value.(string))

		value, err := p.ParseObject()
		if err != nil {
			return nil, err
		}

		dict[key] = value
	}
}

// ParseIndirectObject parses one "num gen obj ... endobj" definition,
// including an embedded stream body if the object is a stream dictionary.
func (p *Parser) ParseIndirectObject() (ObjectID, Object, error) {
	numTok, err := p.nextToken()
	if err != nil {
		return ObjectID{}, nil, err
	}
	if numTok.Type != TokenInteger {
		return ObjectID{}, nil, fmt.Errorf("expected object number at position %d", numTok.Pos)
	}
	id := ObjectID{Num: uint32(numTok.Value.(int64))}

	genTok, err := p.nextToken()
	if err != nil {
		return ObjectID{}, nil, err
	}
	if genTok.Type != TokenInteger {
		return ObjectID{}, nil, fmt.Errorf("expected generation number at position %d", genTok.Pos)
	}
	id.Gen = uint16(genTok.Value.(int64))

	objTok, err := p.nextToken()
	if err != nil {
		return ObjectID{}, nil, err
	}
	if objTok.Type != TokenObjStart {
		return ObjectID{}, nil, fmt.Errorf("expected 'obj' keyword at position %d", objTok.Pos)
	}

	obj, err := p.ParseObject()
	if err != nil {
		return ObjectID{}, nil, err
	}

	nextTok, err := p.peekToken()
	if err == nil && nextTok.Type == TokenStreamStart {
		p.nextToken() // consume stream keyword

		dict, ok := obj.(Dictionary)
		if !ok {
			return ObjectID{}, nil, fmt.Errorf("stream must have dictionary at position %d", nextTok.Pos)
		}

		raw, buf, scanned, err := p.readStreamBody(dict)
		if err != nil {
			return ObjectID{}, nil, err
		}

		obj = Stream{Dict: dict, Raw: raw, OwnerID: id, buf: buf}

		if !scanned {
			endTok, err := p.nextToken()
			if err != nil {
				return ObjectID{}, nil, err
			}
			if endTok.Type != TokenStreamEnd {
				return ObjectID{}, nil, fmt.Errorf("expected 'endstream' at position %d", endTok.Pos)
			}
		}
	}

	endTok, err := p.nextToken()
	if err != nil {
		return ObjectID{}, nil, err
	}
	if endTok.Type != TokenObjEnd {
		return ObjectID{}, nil, fmt.Errorf("expected 'endobj' keyword at position %d", endTok.Pos)
	}

	return id, obj, nil
}

// skipStreamEOL consumes the single CRLF or LF that must follow the stream
// keyword, without disturbing a byte that turns out to belong to the data
// (some encoders omit the EOL despite the spec requiring it).
func (p *Parser) skipStreamEOL() error {
	b, err := p.lexer.readByte()
	if err != nil {
		return err
	}
	if b == '\r' {
		if nb, err := p.lexer.peekByte(); err == nil && nb == '\n' {
			p.lexer.readByte()
		}
		return nil
	}
	if b == '\n' {
		return nil
	}
	return p.lexer.unreadByte()
}

// readStreamBody reads the raw stream bytes following the stream keyword,
// returning a ByteRange plus the buffer it indexes into (objects.go's
// Stream/ByteRange "borrowed range" contract). When dict's Length is a
// direct integer, exactly that many bytes are read; when Length is an
// indirect reference the resolver hasn't resolved yet, it scans for
// "endstream" instead and reports scanned=true, since in that case it has
// already consumed the endstream keyword as raw bytes rather than a token.
func (p *Parser) readStreamBody(dict Dictionary) (raw ByteRange, buf []byte, scanned bool, err error) {
	if err := p.skipStreamEOL(); err != nil {
		return ByteRange{}, nil, false, err
	}

	if n, ok := dict.Get("Length").(Integer); ok {
		if p.data != nil {
			start := p.lexer.Position()
			if _, err := p.lexer.ReadBytes(int(n)); err != nil {
				return ByteRange{}, nil, false, err
			}
			end := p.lexer.Position()
			return ByteRange{Start: start, End: end}, p.data, false, nil
		}
		data, err := p.lexer.ReadBytes(int(n))
		if err != nil {
			return ByteRange{}, nil, false, err
		}
		return ByteRange{Start: 0, End: int64(len(data))}, data, false, nil
	}

	// Length missing or an indirect reference the resolver hasn't resolved
	// yet: scan for "endstream". The scanned range is used as the stream's
	// data, minus any CR/LF bytes just before the keyword.
	r, b, err := p.readStreamUntilEnd()
	return r, b, true, err
}

// readStreamUntilEnd reads stream data until "endstream" is found, consuming
// the whole line that holds "endstream" as raw text rather than tokens; an
// "endobj" on a later line is left for the token stream.
func (p *Parser) readStreamUntilEnd() (ByteRange, []byte, error) {
	var out bytes.Buffer
	endMarker := []byte("endstream")
	startPos := p.lexer.Position()

	for {
		line, err := p.lexer.ReadLine()
		if err != nil {
			if err == io.EOF {
				break
			}
			return ByteRange{}, nil, err
		}

		if idx := bytes.Index(line, endMarker); idx >= 0 {
			if idx > 0 {
				out.Write(line[:idx])
			}
			break
		}

		out.Write(line)
		out.WriteByte('\n')
	}

	data := out.Bytes()
	for len(data) > 0 && (data[len(data)-1] == '\n' || data[len(data)-1] == '\r') {
		data = data[:len(data)-1]
	}

	if p.data != nil && startPos >= 0 && startPos+int64(len(data)) <= int64(len(p.data)) &&
		bytes.Equal(p.data[startPos:startPos+int64(len(data))], data) {
		return ByteRange{Start: startPos, End: startPos + int64(len(data))}, p.data, nil
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	return ByteRange{Start: 0, End: int64(len(cp))}, cp, nil
}

// ContentStreamParser parses content streams into Operations (spec §4.8's
// ~60 operators), independent of the indirect-object Parser above.
type ContentStreamParser struct {
	lexer *Lexer
}

// NewContentStreamParser creates a new content stream parser.
func NewContentStreamParser(data []byte) *ContentStreamParser {
	return &ContentStreamParser{
		lexer: NewLexerFromBytes(data),
	}
}

// Operation represents a content stream operation: zero or more operand
// objects followed by one operator keyword.
type Operation struct {
	Operator string
	Operands []Object
}

// ParseOperations parses all operations from a content stream.
func (p *ContentStreamParser) ParseOperations() ([]Operation, error) {
	var operations []Operation
	var operands []Object

	for {
		tok, err := p.lexer.NextToken()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}

		if tok.Type == TokenEOF {
			break
		}

		if isOperator(tok) {
			op := Operation{
				Operator: getOperatorName(tok),
				Operands: operands,
			}
			operations = append(operations, op)
			operands = nil
			continue
		}

		obj, err := p.parseOperand(tok)
		if err != nil {
			if tok.Type == TokenName {
				operands = append(operands, Name(tok.Value.(string)))
				continue
			}
			return nil, err
		}

		operands = append(operands, obj)
	}

	return operations, nil
}

// parseOperand parses a content stream operand.
func (p *ContentStreamParser) parseOperand(tok Token) (Object, error) {
	switch tok.Type {
	case TokenNull:
		return Null{}, nil
	case TokenBoolean:
		return Boolean(tok.Value.(bool)), nil
	case TokenInteger:
		return Integer(tok.Value.(int64)), nil
	case TokenReal:
		return Real(tok.Value.(float64)), nil
	case TokenString:
		return String{Value: tok.Value.([]byte), IsHex: false}, nil
	case TokenHexString:
		return String{Value: tok.Value.([]byte), IsHex: true}, nil
	case TokenName:
		return Name(tok.Value.(string)), nil
	case TokenArrayStart:
		return p.parseArray()
	case TokenDictStart:
		return p.parseDictionary()
	default:
		return nil, fmt.Errorf("unexpected token in content stream")
	}
}

// parseArray parses an array in a content stream.
func (p *ContentStreamParser) parseArray() (Array, error) {
	var arr Array

	for {
		tok, err := p.lexer.NextToken()
		if err != nil {
			return nil, err
		}

		if tok.Type == TokenArrayEnd {
			return arr, nil
		}

		obj, err := p.parseOperand(tok)
		if err != nil {
			return nil, err
		}

		arr = append(arr, obj)
	}
}

// parseDictionary parses a dictionary in a content stream (BDC properties,
// inline image dictionaries).
func (p *ContentStreamParser) parseDictionary() (Dictionary, error) {
	dict := make(Dictionary)

	for {
		tok, err := p.lexer.NextToken()
		if err != nil {
			return nil, err
		}

		if tok.Type == TokenDictEnd {
			return dict, nil
		}

		if tok.Type != TokenName {
			return nil, fmt.Errorf("expected name as dictionary key")
		}
		key := Name(tok.Value.(string))

		valueTok, err := p.lexer.NextToken()
		if err != nil {
			return nil, err
		}

		value, err := p.parseOperand(valueTok)
		if err != nil {
			return nil, err
		}

		dict[key] = value
	}
}

// isOperator checks if a token is a content stream operator.
func isOperator(tok Token) bool {
	switch tok.Type {
	case TokenObjStart, TokenObjEnd, TokenStreamStart, TokenStreamEnd,
		TokenXRef, TokenTrailer, TokenStartXRef:
		return false
	case TokenName:
		if str, ok := tok.Value.(string); ok && len(str) > 0 && str[0] == '/' {
			return false
		}
		if str, ok := tok.Value.(string); ok {
			_, isKnown := ContentStreamOperators[str]
			return isKnown
		}
		return false
	}
	return false
}

// getOperatorName returns the operator name from a token.
func getOperatorName(tok Token) string {
	if tok.Value != nil {
		return fmt.Sprintf("%v", tok.Value)
	}
	return ""
}

// ContentStreamOperators lists all PDF content stream operators (spec §4.8).
var ContentStreamOperators = map[string]string{
	"w": "SetLineWidth", "J": "SetLineCap", "j": "SetLineJoin", "M": "SetMiterLimit",
	"d": "SetDashPattern", "ri": "SetRenderingIntent", "i": "SetFlatness", "gs": "SetGraphicsState",

	"q": "SaveGraphicsState", "Q": "RestoreGraphicsState", "cm": "ConcatMatrix",

	"m": "MoveTo", "l": "LineTo", "c": "CurveTo", "v": "CurveToV", "y": "CurveToY",
	"h": "ClosePath", "re": "Rectangle",

	"S": "Stroke", "s": "CloseAndStroke", "f": "Fill", "F": "FillOld", "f*": "FillEvenOdd",
	"B": "FillAndStroke", "B*": "FillAndStrokeEvenOdd",
	"b": "CloseAndFillAndStroke", "b*": "CloseAndFillAndStrokeEvenOdd", "n": "EndPath",

	"W": "Clip", "W*": "ClipEvenOdd",

	"BT": "BeginText", "ET": "EndText",

	"Tc": "SetCharSpacing", "Tw": "SetWordSpacing", "Tz": "SetHorizontalScaling",
	"TL": "SetTextLeading", "Tf": "SetFont", "Tr": "SetTextRenderingMode", "Ts": "SetTextRise",

	"Td": "MoveText", "TD": "MoveTextAndSetLeading", "Tm": "SetTextMatrix", "T*": "MoveToNextLine",

	"Tj": "ShowText", "TJ": "ShowTextArray", "'": "MoveAndShowText", "\"": "MoveAndShowTextWithSpacing",

	"d0": "SetCharWidth", "d1": "SetCharWidthAndBBox",

	"CS": "SetStrokeColorSpace", "cs": "SetFillColorSpace",
	"SC": "SetStrokeColor", "SCN": "SetStrokeColorN", "sc": "SetFillColor", "scn": "SetFillColorN",
	"G": "SetStrokeGray", "g": "SetFillGray", "RG": "SetStrokeRGB", "rg": "SetFillRGB",
	"K": "SetStrokeCMYK", "k": "SetFillCMYK",

	"sh": "PaintShading",

	"BI": "BeginInlineImage", "ID": "BeginInlineImageData", "EI": "EndInlineImage",

	"Do": "PaintXObject",

	"MP": "MarkPoint", "DP": "MarkPointWithProperties",
	"BMC": "BeginMarkedContent", "BDC": "BeginMarkedContentWithProperties", "EMC": "EndMarkedContent",

	"BX": "BeginCompatibility", "EX": "EndCompatibility",
}
