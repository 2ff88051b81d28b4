package importer

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names a text encoding a statement was decoded with.
type Encoding string

const (
	EncodingUTF8        Encoding = "utf-8"
	EncodingUTF16LE     Encoding = "utf-16le"
	EncodingUTF16BE     Encoding = "utf-16be"
	EncodingWindows1250 Encoding = "windows-1250"
)

// ErrDecoding is returned when no candidate encoding decodes a file and
// lossy decoding is disabled.
var ErrDecoding = errors.New("no candidate encoding could decode the file")

// Decoded is the text of a file together with the encoding that produced it.
// Lossy is set when invalid bytes were replaced with U+FFFD.
type Decoded struct {
	Text     string
	Encoding Encoding
	Lossy    bool
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode tries UTF-8, UTF-16 and Windows-1250 in that order and returns the
// first clean decode. A candidate counts as clean when it produces no
// replacement characters and no NUL bytes, which CSV text never contains.
// If every candidate fails and allowLossy is set, the data is decoded as
// UTF-8 with replacement and flagged Lossy.
func Decode(data []byte, allowLossy bool) (Decoded, error) {
	if text, ok := decodeUTF8(data); ok {
		return Decoded{Text: text, Encoding: EncodingUTF8}, nil
	}
	if text, enc, ok := decodeUTF16(data); ok {
		return Decoded{Text: text, Encoding: enc}, nil
	}
	if text, ok := decodeWith(charmap.Windows1250, data); ok {
		return Decoded{Text: text, Encoding: EncodingWindows1250}, nil
	}
	if !allowLossy {
		return Decoded{}, ErrDecoding
	}
	text := strings.ToValidUTF8(string(bytes.TrimPrefix(data, bomUTF8)), "\uFFFD")
	return Decoded{Text: text, Encoding: EncodingUTF8, Lossy: true}, nil
}

func decodeUTF8(data []byte) (string, bool) {
	data = bytes.TrimPrefix(data, bomUTF8)
	if !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0 {
		return "", false
	}
	return string(data), true
}

// decodeUTF16 only attempts UTF-16 when the data carries a BOM or looks like
// UTF-16 by its NUL byte layout; any even-length input would otherwise decode.
func decodeUTF16(data []byte) (string, Encoding, bool) {
	var endianness unicode.Endianness
	switch {
	case bytes.HasPrefix(data, bomUTF16LE):
		endianness = unicode.LittleEndian
	case bytes.HasPrefix(data, bomUTF16BE):
		endianness = unicode.BigEndian
	default:
		e, ok := sniffUTF16(data)
		if !ok {
			return "", "", false
		}
		endianness = e
	}
	if len(data)%2 != 0 {
		return "", "", false
	}
	enc := EncodingUTF16LE
	if endianness == unicode.BigEndian {
		enc = EncodingUTF16BE
	}
	text, ok := decodeWith(unicode.UTF16(endianness, unicode.UseBOM), data)
	return text, enc, ok
}

// sniffUTF16 guesses the byte order of BOM-less UTF-16. Mostly-ASCII UTF-16
// has a NUL in every other byte.
func sniffUTF16(data []byte) (unicode.Endianness, bool) {
	n := min(len(data), 512)
	if n < 4 {
		return unicode.LittleEndian, false
	}
	var even, odd int
	for i := 0; i < n; i++ {
		if data[i] != 0 {
			continue
		}
		if i%2 == 0 {
			even++
		} else {
			odd++
		}
	}
	half := n / 2
	switch {
	case odd*10 >= half*7 && even*10 < half:
		return unicode.LittleEndian, true
	case even*10 >= half*7 && odd*10 < half:
		return unicode.BigEndian, true
	}
	return unicode.LittleEndian, false
}

func decodeWith(e encoding.Encoding, data []byte) (string, bool) {
	out, err := e.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	if bytes.ContainsRune(out, utf8.RuneError) || bytes.IndexByte(out, 0) >= 0 {
		return "", false
	}
	return strings.TrimPrefix(string(out), "\uFEFF"), true
}
