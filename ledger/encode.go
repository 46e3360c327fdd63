package ledger

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Kind tags for the canonical binary encoding. The tag makes the encoding
// injective across kinds: no Bytes value encodes like any Str value.
const (
	tagBool    = 0x01
	tagUint    = 0x02
	tagBytes   = 0x03
	tagStr     = 0x04
	tagAddress = 0x05
	tagList    = 0x06
	tagMap     = 0x07
	tagTree    = 0x08
)

// Encode produces the canonical binary form of v. The encoding is
// deterministic and injective, so byte comparison of encodings defines value
// equality and a total order. State roots hash this form.
//
// Layout per kind: a tag byte, then a fixed-width body (Bool, Uint, Address)
// or a uvarint length followed by the body (Bytes, Str) or a uvarint count
// followed by the encoded elements (List, Map). Strings are NFC normalized
// before encoding, so two spellings of the same text encode identically.
//
// Encode panics on a nil Value. The interface is sealed, so no other case
// can reach the panic.
func Encode(v Value) []byte {
	return appendValue(nil, v)
}

func appendValue(dst []byte, v Value) []byte {
	switch val := v.(type) {
	case Bool:
		dst = append(dst, tagBool)
		if val {
			return append(dst, 1)
		}
		return append(dst, 0)
	case Uint:
		b := val.Bytes32()
		dst = append(dst, tagUint)
		return append(dst, b[:]...)
	case Bytes:
		dst = append(dst, tagBytes)
		dst = binary.AppendUvarint(dst, uint64(len(val)))
		return append(dst, val...)
	case Str:
		s := norm.NFC.String(string(val))
		dst = append(dst, tagStr)
		dst = binary.AppendUvarint(dst, uint64(len(s)))
		return append(dst, s...)
	case Address:
		dst = append(dst, tagAddress)
		return append(dst, val[:]...)
	case List:
		dst = append(dst, tagList)
		dst = binary.AppendUvarint(dst, uint64(len(val)))
		for _, elem := range val {
			dst = appendValue(dst, elem)
		}
		return dst
	case Map:
		dst = append(dst, tagMap)
		dst = binary.AppendUvarint(dst, uint64(val.Len()))
		for _, e := range val.Entries() {
			dst = appendValue(dst, e.Key)
			dst = appendValue(dst, e.Value)
		}
		return dst
	default:
		panic(fmt.Sprintf("ledger: cannot encode %T", v))
	}
}
