package pdf

// EncodingVector is an array of 256 optional glyph names (spec §4.7): the
// result of resolving a simple font's /Encoding down to one name per code,
// ready for char_to_gid lookups.
type EncodingVector [256]string

// applyDifferences overlays a /Differences array (spec §4.7: "code name
// name name ... code name ...") onto a copy of base.
func (e EncodingVector) applyDifferences(diffs Array) EncodingVector {
	out := e
	code := 0
	for _, item := range diffs {
		switch v := item.(type) {
		case Integer:
			code = int(v)
		case Real:
			code = int(v)
		case Name:
			if code >= 0 && code < 256 {
				out[code] = string(v)
			}
			code++
		}
	}
	return out
}

func (e EncodingVector) decode(code byte) (string, bool) {
	name := e[code]
	return name, name != ""
}

func asciiBaseNames() [256]string {
	var out [256]string
	names := map[int]string{
		32: "space", 33: "exclam", 34: "quotedbl", 35: "numbersign", 36: "dollar",
		37: "percent", 38: "ampersand", 39: "quoteright", 40: "parenleft", 41: "parenright",
		42: "asterisk", 43: "plus", 44: "comma", 45: "hyphen", 46: "period", 47: "slash",
		48: "zero", 49: "one", 50: "two", 51: "three", 52: "four", 53: "five", 54: "six",
		55: "seven", 56: "eight", 57: "nine", 58: "colon", 59: "semicolon", 60: "less",
		61: "equal", 62: "greater", 63: "question", 64: "at",
		91: "bracketleft", 92: "backslash", 93: "bracketright", 94: "asciicircum",
		95: "underscore", 96: "quoteleft", 123: "braceleft", 124: "bar",
		125: "braceright", 126: "asciitilde",
	}
	upper := "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lower := "abcdefghijklmnopqrstuvwxyz"
	for i, c := range upper {
		names[65+i] = string(c)
	}
	for i, c := range lower {
		names[97+i] = string(c)
	}
	for code, name := range names {
		out[code] = name
	}
	return out
}

var baseASCIINames = asciiBaseNames()

func withOverrides(base [256]string, overrides map[int]string) EncodingVector {
	var out EncodingVector
	for i, n := range base {
		out[i] = n
	}
	for code, name := range overrides {
		out[code] = name
	}
	return out
}

// StandardEncoding is Adobe's StandardEncoding (spec §4.7, PDF 32000-1:2008
// Appendix D.2).
var StandardEncoding = withOverrides(baseASCIINames, map[int]string{
	161: "exclamdown", 162: "cent", 163: "sterling", 164: "fraction", 165: "yen",
	166: "florin", 167: "section", 168: "currency", 169: "quotesingle",
	170: "quotedblleft", 171: "guillemotleft", 172: "guilsinglleft", 173: "guilsinglright",
	174: "fi", 175: "fl", 177: "endash", 178: "dagger", 179: "daggerdbl",
	180: "periodcentered", 182: "paragraph", 183: "bullet", 184: "quotesinglbase",
	185: "quotedblbase", 186: "quotedblright", 187: "guillemotright", 188: "ellipsis",
	189: "perthousand", 191: "questiondown", 193: "grave", 194: "acute",
	195: "circumflex", 196: "tilde", 197: "macron", 198: "breve", 199: "dotaccent",
	200: "dieresis", 202: "ring", 203: "cedilla", 205: "hungarumlaut", 206: "ogonek",
	207: "caron", 208: "emdash", 225: "AE", 227: "ordfeminine", 232: "Lslash",
	233: "Oslash", 234: "OE", 235: "ordmasculine", 241: "ae", 245: "dotlessi",
	248: "lslash", 249: "oslash", 250: "oe", 251: "germandbls",
})

// WinAnsiEncoding is the PDF form of Windows code page 1252 (spec §4.7).
var WinAnsiEncoding = withOverrides(baseASCIINames, map[int]string{
	39: "quotesingle", 96: "grave",
	128: "Euro", 130: "quotesinglbase", 131: "florin", 132: "quotedblbase",
	133: "ellipsis", 134: "dagger", 135: "daggerdbl", 136: "circumflex",
	137: "perthousand", 138: "Scaron", 139: "guilsinglleft", 140: "OE",
	142: "Zcaron", 145: "quoteleft", 146: "quoteright", 147: "quotedblleft",
	148: "quotedblright", 149: "bullet", 150: "endash", 151: "emdash",
	152: "tilde", 153: "trademark", 154: "scaron", 155: "guilsinglright",
	156: "oe", 158: "zcaron", 159: "Ydieresis", 160: "space", 161: "exclamdown",
	162: "cent", 163: "sterling", 164: "currency", 165: "yen", 166: "brokenbar",
	167: "section", 168: "dieresis", 169: "copyright", 170: "ordfeminine",
	171: "guillemotleft", 172: "logicalnot", 173: "hyphen", 174: "registered",
	175: "macron", 176: "degree", 177: "plusminus", 178: "twosuperior",
	179: "threesuperior", 180: "acute", 181: "mu", 182: "paragraph",
	183: "periodcentered", 184: "cedilla", 185: "onesuperior", 186: "ordmasculine",
	187: "guillemotright", 188: "onequarter", 189: "onehalf", 190: "threequarters",
	191: "questiondown", 192: "Agrave", 193: "Aacute", 194: "Acircumflex",
	195: "Atilde", 196: "Adieresis", 197: "Aring", 198: "AE", 199: "Ccedilla",
	200: "Egrave", 201: "Eacute", 202: "Ecircumflex", 203: "Edieresis",
	204: "Igrave", 205: "Iacute", 206: "Icircumflex", 207: "Idieresis",
	208: "Eth", 209: "Ntilde", 210: "Ograve", 211: "Oacute", 212: "Ocircumflex",
	213: "Otilde", 214: "Odieresis", 215: "multiply", 216: "Oslash",
	217: "Ugrave", 218: "Uacute", 219: "Ucircumflex", 220: "Udieresis",
	221: "Yacute", 222: "Thorn", 223: "germandbls", 224: "agrave", 225: "aacute",
	226: "acircumflex", 227: "atilde", 228: "adieresis", 229: "aring", 230: "ae",
	231: "ccedilla", 232: "egrave", 233: "eacute", 234: "ecircumflex",
	235: "edieresis", 236: "igrave", 237: "iacute", 238: "icircumflex",
	239: "idieresis", 240: "eth", 241: "ntilde", 242: "ograve", 243: "oacute",
	244: "ocircumflex", 245: "otilde", 246: "odieresis", 247: "divide",
	248: "oslash", 249: "ugrave", 250: "uacute", 251: "ucircumflex",
	252: "udieresis", 253: "yacute", 254: "thorn", 255: "ydieresis",
})

// MacRomanEncoding is the PDF form of classic Mac OS Roman (spec §4.7).
var MacRomanEncoding = withOverrides(baseASCIINames, map[int]string{
	39: "quotesingle", 96: "grave",
	128: "Adieresis", 129: "Aring", 130: "Ccedilla", 131: "Eacute", 132: "Ntilde",
	133: "Odieresis", 134: "Udieresis", 135: "aacute", 136: "agrave",
	137: "acircumflex", 138: "adieresis", 139: "atilde", 140: "aring",
	141: "ccedilla", 142: "eacute", 143: "egrave", 144: "ecircumflex",
	145: "edieresis", 146: "iacute", 147: "igrave", 148: "icircumflex",
	149: "idieresis", 150: "ntilde", 151: "oacute", 152: "ograve",
	153: "ocircumflex", 154: "odieresis", 155: "otilde", 156: "uacute",
	157: "ugrave", 158: "ucircumflex", 159: "udieresis", 160: "dagger",
	161: "degree", 162: "cent", 163: "sterling", 164: "section", 165: "bullet",
	166: "paragraph", 167: "germandbls", 168: "registered", 169: "copyright",
	170: "trademark", 171: "acute", 172: "dieresis", 174: "AE", 175: "Oslash",
	177: "plusminus", 180: "yen", 181: "mu", 187: "ordfeminine", 188: "ordmasculine",
	190: "ae", 191: "oslash", 192: "questiondown", 193: "exclamdown",
	194: "logicalnot", 196: "florin", 199: "guillemotleft", 200: "guillemotright",
	201: "ellipsis", 202: "space", 203: "Agrave", 204: "Atilde", 205: "Otilde",
	206: "OE", 207: "oe", 208: "endash", 209: "emdash", 210: "quotedblleft",
	211: "quotedblright", 212: "quoteleft", 213: "quoteright", 214: "divide",
	216: "ydieresis", 217: "Ydieresis", 218: "fraction", 219: "currency",
	220: "guilsinglleft", 221: "guilsinglright", 222: "fi", 223: "fl",
	224: "daggerdbl", 225: "periodcentered", 226: "quotesinglbase",
	227: "quotedblbase", 228: "perthousand", 229: "Acircumflex", 230: "Ecircumflex",
	231: "Aacute", 232: "Edieresis", 233: "Egrave", 234: "Iacute",
	235: "Icircumflex", 236: "Idieresis", 237: "Igrave", 238: "Oacute",
	239: "Ocircumflex", 241: "Ograve", 242: "Uacute", 243: "Ucircumflex",
	244: "Ugrave", 245: "dotlessi", 246: "circumflex", 247: "tilde",
	248: "macron", 249: "breve", 250: "dotaccent", 251: "ring", 252: "cedilla",
	253: "hungarumlaut", 254: "ogonek", 255: "caron",
})

// MacExpertEncoding stands in for the rarely-used expert character set (spec
// §4.7) with StandardEncoding's table; Adobe's expert glyph assignments,
// which virtually no production PDF actually selects, are not transcribed
// (documented in DESIGN.md).
var MacExpertEncoding = StandardEncoding

// SymbolEncoding is the built-in encoding of the Symbol standard-14 font. It
// reuses StandardEncoding's table; Symbol's own glyph names (alpha, beta,
// ...) are not listed here.
var SymbolEncoding = StandardEncoding

// ZapfDingbatsEncoding is the built-in encoding of the ZapfDingbats
// standard-14 font, same caveat as SymbolEncoding.
var ZapfDingbatsEncoding = StandardEncoding

// predefinedEncoding resolves a /Encoding name (spec §4.7 resolution step 1).
func predefinedEncoding(name string) (EncodingVector, bool) {
	switch name {
	case "StandardEncoding":
		return StandardEncoding, true
	case "WinAnsiEncoding":
		return WinAnsiEncoding, true
	case "MacRomanEncoding":
		return MacRomanEncoding, true
	case "MacExpertEncoding":
		return MacExpertEncoding, true
	default:
		return EncodingVector{}, false
	}
}
