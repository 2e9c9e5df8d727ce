// Package encoding normalizes uploaded statement files to UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const peekSize = 4096

// Charset names reported by Decode.
const (
	UTF8        = "UTF-8"
	UTF8BOM     = "UTF-8 BOM"
	UTF16LE     = "UTF-16LE"
	UTF16BE     = "UTF-16BE"
	Windows1252 = "windows-1252"
	ISO88599    = "ISO-8859-9"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Reader yields UTF-8 text and remembers which charset the source was decoded from.
type Reader struct {
	io.Reader
	Charset string
}

// Decode sniffs the charset of r and returns a reader that produces UTF-8.
//
// A BOM wins; otherwise content that is already valid UTF-8 passes through untouched.
// Anything else goes to chardet, and Windows-1252 is the fallback when detection is
// inconclusive.
func Decode(r io.Reader) (*Reader, error) {
	br := bufio.NewReaderSize(r, peekSize)

	buf, err := br.Peek(peekSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		_, _ = br.Discard(len(bomUTF8))
		return &Reader{Reader: br, Charset: UTF8BOM}, nil
	case bytes.HasPrefix(buf, bomUTF16LE):
		return decoded(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), UTF16LE), nil
	case bytes.HasPrefix(buf, bomUTF16BE):
		return decoded(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM), UTF16BE), nil
	case utf8.Valid(trimPartialRune(buf)):
		return &Reader{Reader: br, Charset: UTF8}, nil
	}

	result, err := chardet.NewTextDetector().DetectBest(buf)
	if err == nil {
		switch result.Charset {
		case "UTF-8":
			return &Reader{Reader: br, Charset: UTF8}, nil
		case "ISO-8859-9":
			return decoded(br, charmap.ISO8859_9, ISO88599), nil
		}
	}

	return decoded(br, charmap.Windows1252, Windows1252), nil
}

func decoded(r io.Reader, enc encoding.Encoding, charset string) *Reader {
	return &Reader{Reader: transform.NewReader(r, enc.NewDecoder()), Charset: charset}
}

// trimPartialRune drops an incomplete multi-byte sequence cut off at the end of a peek
// window, so a valid file is not misreported because of where the window ended.
func trimPartialRune(buf []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(buf); i++ {
		if utf8.RuneStart(buf[len(buf)-i]) {
			if !utf8.FullRune(buf[len(buf)-i:]) {
				return buf[:len(buf)-i]
			}

			break
		}
	}

	return buf
}

// NewExcelWriter wraps w so the output starts with a UTF-8 BOM, which spreadsheet apps use
// to pick the right charset for the ₹ sign.
func NewExcelWriter(w io.Writer) io.WriteCloser {
	return transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
}
