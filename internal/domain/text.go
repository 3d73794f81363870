package domain

import (
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodeText converts raw file bytes to a string. UTF-16 content is
// recognized by its byte order mark; everything else is read as UTF-8 with
// invalid sequences replaced, matching a lenient browser TextDecoder. Both
// decoders substitute U+FFFD for malformed input, so the only error left is
// one reported by the transform itself.
func DecodeText(content []byte) (string, error) {
	if len(content) == 0 {
		return "", nil
	}
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, content)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUndecodable, err)
	}
	return string(out), nil
}
