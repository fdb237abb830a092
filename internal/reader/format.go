package reader

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// FormatKind enumerates the supported output encodings.
type FormatKind int

const (
	KindDataURL FormatKind = iota
	KindBase64
	KindText
)

// Format selects how the raw result of a file read is turned into the final
// outcome payload. Exactly one Format applies to every file of a run; it is
// fixed when the pipeline is created, not per file.
type Format struct {
	kind    FormatKind
	charset string
}

// DataURL keeps the raw result in data-URL form (data:<mime>;base64,<payload>).
func DataURL() Format { return Format{kind: KindDataURL} }

// Base64 reads the file as a data URL and strips the data:...;base64, prefix.
func Base64() Format { return Format{kind: KindBase64} }

// Text reads the file as text decoded with the named character encoding
// ("utf-8", "latin1", "windows-1251", ...). An empty name means utf-8.
func Text(charset string) Format {
	if charset == "" {
		charset = "utf-8"
	}
	return Format{kind: KindText, charset: charset}
}

func (f Format) Kind() FormatKind { return f.kind }

// Charset returns the character encoding name for Text formats, "" otherwise.
func (f Format) Charset() string { return f.charset }

func (f Format) String() string {
	switch f.kind {
	case KindBase64:
		return "base64"
	case KindText:
		return "text;charset=" + f.charset
	default:
		return "dataurl"
	}
}

// ParseFormat parses the wire/config spelling of a format: "dataurl",
// "base64", "text" or "text;charset=<name>".
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "dataurl":
		return DataURL(), nil
	case "base64":
		return Base64(), nil
	case "text":
		return Text(""), nil
	}
	if rest, ok := strings.CutPrefix(s, "text;charset="); ok {
		charset := strings.TrimSpace(rest)
		if charset == "" {
			return Format{}, fmt.Errorf("empty charset in format %q", s)
		}
		return Text(charset), nil
	}
	return Format{}, fmt.Errorf("unknown format %q", s)
}

// MarshalText makes formats round-trip through JSON and TOML as their
// ParseFormat spelling.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Decode maps a raw read result to the final payload. Pure and total: DataURL
// and Text results are kept unchanged (Text was already decoded when the read
// was performed, so decoding twice is a no-op). Base64 takes the substring
// after the first comma of the data URL; a result without a comma is a
// contract violation by the read primitive and yields "".
func (f Format) Decode(raw string) string {
	if f.kind != KindBase64 {
		return raw
	}
	if i := strings.IndexByte(raw, ','); i >= 0 {
		return raw[i+1:]
	}
	return ""
}

// lookupCharset resolves an encoding name the way browsers do (htmlindex
// accepts the common aliases: "latin1", "utf-8", "windows-1251", ...).
func lookupCharset(name string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", name, err)
	}
	return enc, nil
}
