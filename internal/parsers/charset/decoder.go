// Package charset detects and decodes the text encodings that Nordic retail
// feeds actually ship with. Most chains publish UTF-8, but older exports
// still arrive as ISO-8859-1 or Windows-1252.
package charset

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Encoding represents a text encoding
type Encoding string

const (
	EncodingUTF8        Encoding = "utf-8"
	EncodingISO88591    Encoding = "iso-8859-1"
	EncodingWindows1252 Encoding = "windows-1252"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// windows1252Extras are bytes in the 0x80-0x9F range that Windows-1252 maps
// to printable characters while ISO-8859-1 leaves them as control codes.
// Their presence distinguishes the two encodings.
var windows1252Extras = map[byte]bool{
	0x85: true, // ellipsis
	0x91: true, 0x92: true, // curly single quotes
	0x93: true, 0x94: true, // curly double quotes
	0x96: true, 0x97: true, // dashes
}

// DetectEncoding detects the encoding of a byte buffer.
func DetectEncoding(data []byte) Encoding {
	if bytes.HasPrefix(data, utf8BOM) {
		return EncodingUTF8
	}
	if utf8.Valid(data) {
		return EncodingUTF8
	}

	checkLen := len(data)
	if checkLen > 4096 {
		checkLen = 4096
	}
	for i := 0; i < checkLen; i++ {
		if windows1252Extras[data[i]] {
			return EncodingWindows1252
		}
	}
	return EncodingISO88591
}

// Decode converts data from the given encoding to UTF-8, stripping a BOM if
// present. An empty encoding triggers detection.
func Decode(data []byte, enc Encoding) (string, error) {
	if enc == "" {
		enc = DetectEncoding(data)
	}

	switch enc {
	case EncodingUTF8:
		return string(bytes.TrimPrefix(data, utf8BOM)), nil
	case EncodingISO88591:
		out, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), data)
		if err != nil {
			return "", fmt.Errorf("failed to decode iso-8859-1: %w", err)
		}
		return string(out), nil
	case EncodingWindows1252:
		out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
		if err != nil {
			return "", fmt.Errorf("failed to decode windows-1252: %w", err)
		}
		return string(out), nil
	default:
		return "", fmt.Errorf("unsupported encoding %q", enc)
	}
}
