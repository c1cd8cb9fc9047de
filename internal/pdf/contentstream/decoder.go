package contentstream

import (
	"math"
	"strconv"
	"strings"
)

// Decoder tokenizes a page content stream buffer into text operators.
// The buffer must already be filter-decoded and, when the page content was
// split across multiple streams, concatenated. Bytes are interpreted as a
// single-byte Latin-1 codepage; content streams are not UTF-8.
type Decoder struct {
	data []byte
	pos  int
}

// NewDecoder creates a decoder over a decoded content stream buffer.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Decode runs the tokenizer to completion and returns the operators in
// stream order. Truncated or malformed input stops the scan at the anomaly
// and returns whatever was recognized up to that point.
func Decode(data []byte) []Operator {
	return NewDecoder(data).Decode()
}

// Decode consumes the remaining input and returns decoded operators.
func (d *Decoder) Decode() []Operator {
	var (
		ops []Operator

		// Operand state accumulated since the previous operator keyword.
		strs    []string
		nums    []float64
		inArray bool
		arrStrs []string
	)

	clear := func() {
		strs = strs[:0]
		nums = nums[:0]
		arrStrs = arrStrs[:0]
	}

	for d.pos < len(d.data) {
		c := d.data[d.pos]

		switch {
		case isWhitespace(c):
			d.pos++

		case c == '%':
			d.skipComment()

		case c == '(':
			s := d.readLiteralString()
			if inArray {
				arrStrs = append(arrStrs, s)
			} else {
				strs = append(strs, s)
			}

		case c == '<':
			if d.pos+1 < len(d.data) && d.data[d.pos+1] == '<' {
				d.pos += 2 // dictionary start, contents skipped token by token
				continue
			}
			s := d.readHexString()
			if inArray {
				arrStrs = append(arrStrs, s)
			} else {
				strs = append(strs, s)
			}

		case c == '>':
			if d.pos+1 < len(d.data) && d.data[d.pos+1] == '>' {
				d.pos += 2
				continue
			}
			d.pos++ // stray delimiter, ignore

		case c == '[':
			inArray = true
			arrStrs = arrStrs[:0]
			d.pos++

		case c == ']':
			inArray = false
			d.pos++

		case c == '/':
			d.readName()

		case c == '{' || c == '}':
			d.pos++

		case isNumberStart(c):
			if n, ok := d.readNumber(); ok {
				nums = append(nums, n)
			}

		default:
			start := d.pos
			kw := d.readKeyword()
			if kw == "" {
				// Unrecognized delimiter byte; skip it rather than stall.
				d.pos++
				continue
			}
			if op, ok := operatorFor(kw, start, strs, arrStrs, nums); ok {
				ops = append(ops, op)
			}
			clear()
		}
	}

	return ops
}

// operatorFor maps a keyword plus its accumulated operands to a decoded
// operator. Unknown keywords report ok=false and are dropped.
func operatorFor(kw string, offset int, strs, arrStrs []string, nums []float64) (Operator, bool) {
	switch kw {
	case "Tj":
		if len(strs) == 0 {
			return Operator{}, false
		}
		return Operator{Offset: offset, Kind: KindShowText, Text: strs[len(strs)-1]}, true
	case "TJ":
		if len(arrStrs) == 0 {
			return Operator{}, false
		}
		return Operator{Offset: offset, Kind: KindShowText, Text: strings.Join(arrStrs, "")}, true
	case "T*":
		return Operator{Offset: offset, Kind: KindNewLine}, true
	case "Td", "TD":
		if len(nums) >= 2 && math.Abs(nums[len(nums)-1]) > lineAdvanceThreshold {
			return Operator{Offset: offset, Kind: KindNewLine}, true
		}
		return Operator{}, false
	case "BT":
		return Operator{Offset: offset, Kind: KindBeginText}, true
	}
	return Operator{}, false
}

// readLiteralString reads a (...) string, decoding the escape subset
// \n \r \t \( \) \\. Any other backslash sequence is passed through
// literally; this is documented lossy behavior, not an error.
func (d *Decoder) readLiteralString() string {
	var b strings.Builder
	d.pos++ // opening parenthesis
	depth := 1

	for d.pos < len(d.data) {
		c := d.data[d.pos]
		switch c {
		case '(':
			depth++
			b.WriteRune(rune(c))
		case ')':
			depth--
			if depth == 0 {
				d.pos++
				return b.String()
			}
			b.WriteRune(rune(c))
		case '\\':
			d.pos++
			if d.pos >= len(d.data) {
				return b.String() // truncated mid-escape
			}
			switch e := d.data[d.pos]; e {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case '(', ')', '\\':
				b.WriteRune(rune(e))
			default:
				b.WriteByte('\\')
				b.WriteRune(rune(e))
			}
		default:
			// Latin-1: each byte maps to the code point of the same value.
			b.WriteRune(rune(c))
		}
		d.pos++
	}
	return b.String() // unbalanced parentheses, partial payload
}

// readHexString reads a <...> string. Whitespace inside is ignored and an
// odd final digit is padded with zero, per the PDF convention.
func (d *Decoder) readHexString() string {
	var hex []byte
	d.pos++ // opening angle bracket
	for d.pos < len(d.data) {
		c := d.data[d.pos]
		if c == '>' {
			d.pos++
			break
		}
		if isHexDigit(c) {
			hex = append(hex, c)
		} else if !isWhitespace(c) {
			// Garbage inside a hex string: stop decoding this token.
			d.pos++
			break
		}
		d.pos++
	}
	if len(hex)%2 == 1 {
		hex = append(hex, '0')
	}

	var b strings.Builder
	for i := 0; i+1 < len(hex); i += 2 {
		hi := hexVal(hex[i])
		lo := hexVal(hex[i+1])
		b.WriteRune(rune(hi<<4 | lo))
	}
	return b.String()
}

func (d *Decoder) readName() {
	d.pos++ // solidus
	for d.pos < len(d.data) && isRegular(d.data[d.pos]) {
		d.pos++
	}
}

func (d *Decoder) readNumber() (float64, bool) {
	start := d.pos
	if d.data[d.pos] == '+' || d.data[d.pos] == '-' {
		d.pos++
	}
	for d.pos < len(d.data) && (isDigit(d.data[d.pos]) || d.data[d.pos] == '.') {
		d.pos++
	}
	n, err := strconv.ParseFloat(string(d.data[start:d.pos]), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (d *Decoder) readKeyword() string {
	start := d.pos
	for d.pos < len(d.data) && isRegular(d.data[d.pos]) {
		d.pos++
	}
	return string(d.data[start:d.pos])
}

func (d *Decoder) skipComment() {
	for d.pos < len(d.data) && d.data[d.pos] != '\n' && d.data[d.pos] != '\r' {
		d.pos++
	}
}

func isWhitespace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isRegular(c byte) bool {
	return !isWhitespace(c) && !isDelimiter(c)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isNumberStart(c byte) bool {
	return isDigit(c) || c == '+' || c == '-' || c == '.'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
