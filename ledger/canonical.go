package ledger

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// CanonicalJSON renders v as RFC 8785 style canonical JSON. Trace records and
// golden files embed this form, so two runs that produce the same values
// produce byte-identical output.
//
// Differences from encoding/json defaults:
//  1. Object keys sorted by UTF-16 code units (not UTF-8 bytes)
//  2. No HTML escaping (< > & stay literal)
//  3. Strings are NFC normalized
//
// Kinds JSON cannot express natively get fixed renderings:
//   - Uint as a decimal string, since values exceed float64 precision
//   - Bytes and Address as 0x-prefixed lowercase hex strings
//   - Map as an array of [key, value] pairs in canonical key order
//
// The JSON form is readable, not injective: a Str can render like a Bytes.
// Identity and hashing always use Encode, never this form.
func CanonicalJSON(v Value) []byte {
	return AppendCanonicalJSON(nil, v)
}

// AppendCanonicalJSON appends the canonical JSON of v to dst. It panics on a
// nil Value, same as Encode.
func AppendCanonicalJSON(dst []byte, v Value) []byte {
	switch val := v.(type) {
	case Bool:
		if val {
			return append(dst, "true"...)
		}
		return append(dst, "false"...)
	case Uint:
		dst = append(dst, '"')
		dst = append(dst, val.Dec()...)
		return append(dst, '"')
	case Bytes:
		return appendHexString(dst, val)
	case Str:
		return appendCanonicalString(dst, string(val))
	case Address:
		return appendHexString(dst, val[:])
	case List:
		dst = append(dst, '[')
		for i, elem := range val {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = AppendCanonicalJSON(dst, elem)
		}
		return append(dst, ']')
	case Map:
		dst = append(dst, '[')
		for i, e := range val.Entries() {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = append(dst, '[')
			dst = AppendCanonicalJSON(dst, e.Key)
			dst = append(dst, ',')
			dst = AppendCanonicalJSON(dst, e.Value)
			dst = append(dst, ']')
		}
		return append(dst, ']')
	default:
		panic(fmt.Sprintf("ledger: cannot render %T", v))
	}
}

func appendHexString(dst []byte, b []byte) []byte {
	dst = append(dst, '"', '0', 'x')
	dst = hex.AppendEncode(dst, b)
	return append(dst, '"')
}

// appendCanonicalString writes s as a canonical JSON string literal.
// CRITICAL: RFC 8785 requires < > & and U+2028/U+2029 to stay literal.
// encoding/json escapes all five; disabling HTML escaping covers the first
// three, and a second pass unescapes the two separators.
func appendCanonicalString(dst []byte, s string) []byte {
	// NFC normalize at the serialization boundary
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		// Encoding a string cannot fail; reaching this means a broken encoder.
		panic("ledger: encode string: " + err.Error())
	}

	// json.Encoder adds a trailing newline, remove it
	lit := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	return append(dst, unescapeSeparators(lit)...)
}

// unescapeSeparators rewrites   and   escapes back to literal
// characters. The input is a single JSON string literal, so scanning escape
// pairs left to right is unambiguous: a backslash that is itself escaped
// starts no sequence, which keeps \\u2028 (literal backslash then text)
// untouched.
func unescapeSeparators(lit []byte) []byte {
	if !bytes.Contains(lit, []byte(`\u202`)) {
		return lit
	}
	out := make([]byte, 0, len(lit))
	for i := 0; i < len(lit); {
		if lit[i] == '\\' && i+5 < len(lit) {
			if lit[i+1] == 'u' && lit[i+2] == '2' && lit[i+3] == '0' && lit[i+4] == '2' {
				switch lit[i+5] {
				case '8':
					out = append(out, " "...)
					i += 6
					continue
				case '9':
					out = append(out, " "...)
					i += 6
					continue
				}
			}
			// Some other escape pair. Copy both bytes so the backslash can
			// never pair with a later character.
			out = append(out, lit[i], lit[i+1])
			i += 2
			continue
		}
		out = append(out, lit[i])
		i++
	}
	return out
}

// compareUTF16 orders strings by UTF-16 code units as RFC 8785 requires for
// object keys. CRITICAL: plain string comparison orders by UTF-8 bytes and
// disagrees beyond the basic multilingual plane, where surrogate halves sort
// below later BMP code points.
func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	for i := 0; i < len(a16) && i < len(b16); i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}
