// Package textfile reads files of unknown character encoding as UTF-8 text.
package textfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

// DefaultEncoding is reported for empty input, where detection has nothing to work with.
const DefaultEncoding = "UTF-8"

var (
	// ErrUnsupportedEncoding indicates a detected label with no available decoder.
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
	// ErrInvalidText indicates bytes that are not valid in the detected encoding.
	ErrInvalidText = errors.New("invalid text")
	// ErrNotDetected indicates the detector produced no candidate at all.
	ErrNotDetected = errors.New("encoding not detected")
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// detectorAliases covers labels the charset detector emits in spellings the
// WHATWG and IANA indexes do not know.
var detectorAliases = map[string]encoding.Encoding{
	"GB-18030": simplifiedchinese.GB18030,
	"UTF-32LE": utf32.UTF32(utf32.LittleEndian, utf32.UseBOM),
	"UTF-32BE": utf32.UTF32(utf32.BigEndian, utf32.UseBOM),
}

// ownBOM lists labels whose decoder handles its own byte order mark. A UTF-32LE
// mark starts with the UTF-16LE one, so BOMOverride must not see it first.
var ownBOM = map[string]bool{
	"UTF-32LE": true,
	"UTF-32BE": true,
}

// Content is the outcome of reading one file: either decoded text or the
// reason it could not be read.
type Content struct {
	Text     string // Decoded text, valid only when Err is nil.
	Encoding string // Detected encoding label, empty when detection never ran.
	Err      error  // Read or decode failure.
}

// OK reports whether the content holds text.
func (c Content) OK() bool {
	return c.Err == nil
}

// Message returns the failure text, or an empty string for successful reads.
func (c Content) Message() string {
	if c.Err == nil {
		return ""
	}
	return c.Err.Error()
}

// Read loads the whole file, detects its encoding and decodes it.
// Failures are reported through Content.Err; Read itself never fails.
func Read(path string) Content {
	raw, err := readAll(path)
	if err != nil {
		return Content{Err: err}
	}

	label, err := Detect(raw)
	if err != nil {
		return Content{Err: err}
	}

	text, err := Decode(raw, label)
	if err != nil {
		return Content{Encoding: label, Err: err}
	}
	return Content{Text: text, Encoding: label}
}

// DetectEncoding returns the detector's best guess for the file's encoding.
func DetectEncoding(path string) (string, error) {
	raw, err := readAll(path)
	if err != nil {
		return "", err
	}
	return Detect(raw)
}

// Detect runs the statistical charset detector over raw and returns its top
// candidate as-is, without any confidence threshold.
func Detect(raw []byte) (string, error) {
	if len(raw) == 0 {
		return DefaultEncoding, nil
	}

	result, err := chardet.NewTextDetector().DetectBest(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotDetected, err)
	}
	if result == nil || result.Charset == "" {
		return "", ErrNotDetected
	}
	return result.Charset, nil
}

// Decode converts raw from the named encoding to a UTF-8 string. A byte order
// mark, when present, takes precedence over the label and is stripped.
func Decode(raw []byte, label string) (string, error) {
	enc, err := lookup(label)
	if err != nil {
		return "", err
	}

	if isUTF8(enc) {
		body := bytes.TrimPrefix(raw, utf8BOM)
		if !utf8.Valid(body) {
			return "", fmt.Errorf("%w: %s cannot decode byte 0x%02x at position %d",
				ErrInvalidText, label, body[firstInvalid(body)], firstInvalid(body))
		}
		return string(body), nil
	}

	var decoder transform.Transformer = unicode.BOMOverride(enc.NewDecoder())
	if ownBOM[strings.ToUpper(strings.TrimSpace(label))] {
		decoder = enc.NewDecoder()
	}
	out, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidText, label, err)
	}
	return string(out), nil
}

// readAll opens, reads and closes one file.
func readAll(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return raw, nil
}

// lookup resolves an encoding label: detector aliases first, then WHATWG
// names, then IANA names.
func lookup(label string) (encoding.Encoding, error) {
	name := strings.TrimSpace(label)
	if name == "" {
		return nil, fmt.Errorf("%w: empty label", ErrUnsupportedEncoding)
	}

	if enc, ok := detectorAliases[strings.ToUpper(name)]; ok {
		return enc, nil
	}

	if enc, err := htmlindex.Get(name); err == nil && enc != nil {
		return enc, nil
	}
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, label)
}

func isUTF8(enc encoding.Encoding) bool {
	name, err := htmlindex.Name(enc)
	return err == nil && name == "utf-8"
}

// firstInvalid returns the offset of the first byte that starts an invalid UTF-8 sequence.
func firstInvalid(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return 0
}
