package parser

import (
	"bytes"
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText decodes file content, trying UTF-8 (with or without a byte-order
// mark) first and then the two Western European 8-bit encodings the POS
// terminals are known to emit.
func decodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	if utf8.Valid(data) {
		return string(data), nil
	}

	for _, cm := range []*charmap.Charmap{charmap.ISO8859_1, charmap.Windows1252} {
		if decoded, err := cm.NewDecoder().Bytes(data); err == nil {
			return string(decoded), nil
		}
	}

	return "", errors.New("unable to decode file content")
}
