package ingestion

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Encoding represents a text encoding
type Encoding string

const (
	EncodingAuto        Encoding = ""
	EncodingUTF8        Encoding = "utf-8"
	EncodingWindows1250 Encoding = "windows-1250"
	EncodingISO88592    Encoding = "iso-8859-2"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseEncoding validates a configured encoding name.
func ParseEncoding(s string) (Encoding, error) {
	switch enc := Encoding(strings.ToLower(strings.TrimSpace(s))); enc {
	case EncodingAuto, EncodingUTF8, EncodingWindows1250, EncodingISO88592:
		return enc, nil
	default:
		return "", fmt.Errorf("unsupported encoding %q", s)
	}
}

// DetectEncoding detects the encoding of a byte buffer. Valid UTF-8 wins;
// anything else is treated as Windows-1250.
func DetectEncoding(data []byte) Encoding {
	if bytes.HasPrefix(data, utf8BOM) || utf8.Valid(data) {
		return EncodingUTF8
	}
	return EncodingWindows1250
}

// Decode converts a byte buffer from the specified encoding to a UTF-8
// string. Content that is already valid UTF-8 is returned as is, whatever
// encoding was requested.
func Decode(data []byte, enc Encoding) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if enc == EncodingAuto {
		enc = DetectEncoding(data)
	}
	if utf8.Valid(data) {
		return string(data), nil
	}

	var decoder encoding.Encoding
	switch enc {
	case EncodingISO88592:
		decoder = charmap.ISO8859_2
	default:
		decoder = charmap.Windows1250
	}

	out, err := decoder.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s content: %w", enc, err)
	}
	return string(out), nil
}
