package parser

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"user-import/feature/userimport/models"
)

func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		// htmlindex maps these to windows-1252
		return charmap.ISO8859_1, nil
	}
	return htmlindex.Get(name)
}

// decode converts content to UTF-8 and normalizes line endings.
// A byte order mark always wins. Without one the named encoding is used, or,
// when no name is given, UTF-8 if the bytes are valid and ISO-8859-1 otherwise.
func decode(content []byte, name string) (string, error) {
	var fallback encoding.Encoding = encoding.Nop
	switch {
	case name != "":
		enc, err := lookupEncoding(name)
		if err != nil {
			return "", models.Invalid("encoding", "unknown encoding %q", name)
		}
		fallback = enc
	case !utf8.Valid(content):
		fallback = charmap.ISO8859_1
	}

	out, _, err := transform.Bytes(unicode.BOMOverride(fallback.NewDecoder()), content)
	if err != nil {
		return "", models.Invalid("encoding", "cannot decode input: %v", err)
	}

	text := strings.ReplaceAll(string(out), "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n"), nil
}
