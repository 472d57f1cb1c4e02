package fetch

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// Labels that the WHATWG index does not know under the name pages use.
var encodingAliases = map[string]string{
	"cp949": "windows-949",
	"uhc":   "windows-949",
}

// Decoder tries a fixed list of encodings in order.
type Decoder struct {
	names     []string
	encodings []encoding.Encoding
}

// NewDecoder resolves every encoding name up front.
func NewDecoder(names ...string) (*Decoder, error) {
	d := &Decoder{}
	for _, name := range names {
		enc, err := lookupEncoding(name)
		if err != nil {
			return nil, err
		}
		d.names = append(d.names, name)
		d.encodings = append(d.encodings, enc)
	}
	return d, nil
}

// Decode returns body decoded with the first encoding that accepts it
// without loss. When none does, invalid bytes become U+FFFD. It never fails.
func (d *Decoder) Decode(body []byte) string {
	text, _ := d.DecodeName(body)
	return text
}

// DecodeName is Decode that also names the encoding used, or "" for the
// lossy fallback.
func (d *Decoder) DecodeName(body []byte) (string, string) {
	for i, enc := range d.encodings {
		if text, ok := decodeStrict(enc, body); ok {
			return text, d.names[i]
		}
	}

	lossy, err := unicode.UTF8.NewDecoder().Bytes(body)
	if err != nil {
		return strings.ToValidUTF8(string(body), string(utf8.RuneError)), ""
	}
	return string(lossy), ""
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := encodingAliases[label]; ok {
		label = alias
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	return enc, nil
}

// decodeStrict rejects input the encoding can only decode with replacement
// characters.
func decodeStrict(enc encoding.Encoding, body []byte) (string, bool) {
	if enc == unicode.UTF8 {
		if !utf8.Valid(body) {
			return "", false
		}
		return string(body), true
	}

	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", false
	}
	if strings.ContainsRune(string(out), utf8.RuneError) {
		return "", false
	}

	return string(out), true
}
