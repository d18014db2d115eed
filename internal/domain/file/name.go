package file

import (
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// legacy clients truncate longer header values
const maxASCIINameLen = 100

// DisplayName strips directory components from a client supplied name.
func DisplayName(original string) string {
	s := strings.TrimSpace(strings.ReplaceAll(original, "\\", "/"))
	s = path.Base(s)
	if s == "." || s == ".." || s == "/" {
		return ""
	}
	return s
}

var foldAccents = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ASCIIName is the plain filename= fallback of a Content-Disposition header. Accents are
// folded, anything a quoted header value cannot carry becomes '_', and the extension survives
// truncation.
func ASCIIName(name string) string {
	folded, _, err := transform.String(foldAccents, DisplayName(name))
	if err != nil {
		folded = DisplayName(name)
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' || r == ';' {
			// collapse runs of replaced runes
			if !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
			continue
		}
		b.WriteRune(r)
	}

	s := strings.Trim(b.String(), "_ ")
	ext := path.Ext(s)
	base := strings.TrimRight(strings.TrimSuffix(s, ext), "_ ")
	if base == "" {
		base = "download"
	}
	if len(ext) >= maxASCIINameLen {
		ext = ""
	}
	if over := len(base) + len(ext) - maxASCIINameLen; over > 0 {
		base = base[:len(base)-over]
	}

	return base + ext
}

// IsASCIIName reports whether name can be sent as-is in a quoted header value.
func IsASCIIName(name string) bool {
	if !utf8.ValidString(name) {
		return false
	}
	return ASCIIName(name) == name
}
