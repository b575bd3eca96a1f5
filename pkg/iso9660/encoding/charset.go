package encoding

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/rstms/isofs/pkg/consts"
	"github.com/rstms/isofs/pkg/iso9660/isoerr"
	"golang.org/x/text/encoding/unicode"
)

// CharacterEncoding identifies how identifiers of a volume descriptor and its directory
// records are encoded.
type CharacterEncoding int

const (
	// Iso9660 is plain a-characters/d-characters, read as UTF-8.
	Iso9660 CharacterEncoding = iota
	// Ucs2Level1 through Ucs2Level3 are the Joliet levels, all read as UTF-16 big-endian.
	Ucs2Level1
	Ucs2Level2
	Ucs2Level3
)

func (c CharacterEncoding) String() string {
	switch c {
	case Ucs2Level1:
		return "UCS-2 Level 1"
	case Ucs2Level2:
		return "UCS-2 Level 2"
	case Ucs2Level3:
		return "UCS-2 Level 3"
	default:
		return "ISO 9660"
	}
}

// IsJoliet reports whether the encoding is one of the Joliet UCS-2 levels.
func (c CharacterEncoding) IsJoliet() bool {
	return c == Ucs2Level1 || c == Ucs2Level2 || c == Ucs2Level3
}

// JolietLevel returns 1, 2 or 3 for Joliet encodings and 0 otherwise.
func (c CharacterEncoding) JolietLevel() int {
	if !c.IsJoliet() {
		return 0
	}
	return int(c)
}

// DetectCharacterEncoding inspects the 32-byte escape sequences field of a Primary or
// Supplementary descriptor. Unrecognised content is treated as plain ISO 9660.
func DetectCharacterEncoding(escapes []byte) CharacterEncoding {
	field := bytes.TrimRight(escapes, "\x00")
	switch {
	case bytes.HasPrefix(field, []byte(consts.JOLIET_LEVEL_1_ESCAPE)):
		return Ucs2Level1
	case bytes.HasPrefix(field, []byte(consts.JOLIET_LEVEL_2_ESCAPE)):
		return Ucs2Level2
	case bytes.HasPrefix(field, []byte(consts.JOLIET_LEVEL_3_ESCAPE)):
		return Ucs2Level3
	default:
		return Iso9660
	}
}

// Escapes returns the escape sequences field announcing the given encoding.
func (c CharacterEncoding) Escapes() [consts.ISO9660_ESCAPE_SEQUENCES_SIZE]byte {
	var out [consts.ISO9660_ESCAPE_SEQUENCES_SIZE]byte
	switch c {
	case Ucs2Level1:
		copy(out[:], consts.JOLIET_LEVEL_1_ESCAPE)
	case Ucs2Level2:
		copy(out[:], consts.JOLIET_LEVEL_2_ESCAPE)
	case Ucs2Level3:
		copy(out[:], consts.JOLIET_LEVEL_3_ESCAPE)
	}
	return out
}

var ucs2 = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

var errInvalidUTF16 = errors.New("invalid UTF-16 sequence")

// DecodeUCS2BigEndian converts a UCS-2 Big-Endian encoded string to a Go (UTF-8) string.
// Odd lengths and unpaired surrogates are errors rather than replacement characters.
func DecodeUCS2BigEndian(field string, b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", isoerr.TextDecode(field, errors.New("odd byte count for UTF-16"))
	}
	if err := checkSurrogates(b); err != nil {
		return "", isoerr.TextDecode(field, err)
	}
	out, err := ucs2.NewDecoder().Bytes(b)
	if err != nil {
		return "", isoerr.TextDecode(field, err)
	}
	return string(out), nil
}

// checkSurrogates requires every high surrogate to be followed by a low one.
func checkSurrogates(b []byte) error {
	for i := 0; i < len(b); i += 2 {
		u := rune(binary.BigEndian.Uint16(b[i:]))
		if !utf16.IsSurrogate(u) {
			continue
		}
		if u >= 0xDC00 || i+2 >= len(b) {
			return fmt.Errorf("%w: unpaired surrogate %#04x at byte %d", errInvalidUTF16, u, i)
		}
		low := rune(binary.BigEndian.Uint16(b[i+2:]))
		if low < 0xDC00 || low > 0xDFFF {
			return fmt.Errorf("%w: unpaired surrogate %#04x at byte %d", errInvalidUTF16, u, i)
		}
		i += 2
	}
	return nil
}

// EncodeUCS2BigEndian converts a Go (UTF-8) string into UTF-16 big-endian bytes.
func EncodeUCS2BigEndian(s string) ([]byte, error) {
	return ucs2.NewEncoder().Bytes([]byte(s))
}

// DecodeIdentifier decodes a variable-length identifier. Nothing is trimmed.
func DecodeIdentifier(field string, b []byte, enc CharacterEncoding) (string, error) {
	if enc.IsJoliet() {
		return DecodeUCS2BigEndian(field, b)
	}
	if !utf8.Valid(b) {
		return "", isoerr.TextDecode(field, fmt.Errorf("invalid UTF-8 in %q", b))
	}
	return string(b), nil
}

// DecodeString decodes a fixed-width descriptor string field and trims trailing padding.
// Joliet fields of odd width (the 37 byte file identifiers) lose their final pad byte.
func DecodeString(field string, b []byte, enc CharacterEncoding) (string, error) {
	var s string
	if enc.IsJoliet() {
		b = b[:len(b)&^1]
		var err error
		if s, err = DecodeUCS2BigEndian(field, b); err != nil {
			return "", err
		}
	} else {
		if !utf8.Valid(b) {
			return "", isoerr.TextDecode(field, errors.New("invalid UTF-8"))
		}
		s = string(b)
	}
	return strings.TrimRight(s, " \x00"), nil
}
