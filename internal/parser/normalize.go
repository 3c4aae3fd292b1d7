package parser

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Normalize repairs mojibake, converts CRLF to LF and NBSP to a space, and
// drops backslashes escaping a bullet marker at line start.
// Normalize(Normalize(s)) == Normalize(s) for every s.
func (g *Grammar) Normalize(s string) string {
	s = g.lineBreaks.ReplaceAllString(s, "\n")
	s = strings.ReplaceAll(s, "\u00a0", " ")

	// A repair can expose another sequence ("â€â€œ" -> "â€“"), so run to a
	// fixed point. Every replacement shortens the string.
	for strings.Contains(s, mojibakePrefix) {
		next := g.mojibake.Replace(s)
		if next == s {
			break
		}
		s = next
	}

	return g.escapedBullet.ReplaceAllString(s, "$1$2")
}

// DecodeText converts raw file bytes to a string. Input that is not valid
// UTF-8 is decoded as Windows-1252, the usual source of hand-edited logs.
func DecodeText(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "\uFFFD")
	}
	return string(decoded)
}
