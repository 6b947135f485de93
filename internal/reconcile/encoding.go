package reconcile

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeBytes converts an uploaded export file to UTF-8 text. The exports
// this handles are Japanese-locale CSVs: either UTF-8 (optionally with a
// byte-order mark) or Shift-JIS. A wrong guess corrupts multi-byte
// characters, so valid UTF-8 is trusted as-is and everything else goes
// through the Shift-JIS decoder.
func DecodeBytes(b []byte) (string, error) {
	b = bytes.TrimPrefix(b, utf8BOM)

	if utf8.Valid(b) {
		return string(b), nil
	}

	decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), b)
	if err != nil {
		return "", fmt.Errorf("DecodeBytes: shift-jis decode: %w", err)
	}
	return string(decoded), nil
}
