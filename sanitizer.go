package project747

import (
	"bufio"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sanitizerBufSize = 8 * 1024 * 1024

// SanitizedRuneReader
// Reads raw content as UTF-8, replacing invalid sequences with U+FFFD, and
// drops the characters that confuse boundary search: double quotes and
// Windows `\r`. Tabs become single spaces.
type SanitizedRuneReader struct {
	reader *bufio.Reader
}

func CreateContentSanitizer(handle io.Reader) SanitizedRuneReader {
	decoded := transform.NewReader(handle, unicode.UTF8.NewDecoder())
	return SanitizedRuneReader{
		reader: bufio.NewReaderSize(decoded, sanitizerBufSize),
	}
}

func (runeReader SanitizedRuneReader) ReadRune() (r rune, size int,
	err error) {
	for {
		r, size, err = runeReader.reader.ReadRune()
		if err != nil {
			return 0, 0, err
		}
		if size == 0 {
			return 0, 0, io.EOF
		}
		switch r {
		case '"', '\r':
			// Silently dropped.
			continue
		case '\t':
			return ' ', 1, nil
		}
		return r, size, nil
	}
}

// ReadSanitized drains a content reader through the sanitizer. Any read
// error other than io.EOF is returned with the text read so far.
func ReadSanitized(handle io.Reader) (string, error) {
	reader := CreateContentSanitizer(handle)
	var text strings.Builder
	for {
		r, _, err := reader.ReadRune()
		if err == io.EOF {
			return text.String(), nil
		} else if err != nil {
			return text.String(), err
		}
		text.WriteRune(r)
	}
}

// SanitizeContent sanitizes an in-memory string, which cannot fail to read.
func SanitizeContent(text string) string {
	sanitized, _ := ReadSanitized(strings.NewReader(text))
	return sanitized
}
