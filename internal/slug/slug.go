// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug turns user-supplied names into lowercase, hyphenated
// tokens that are safe in URLs and object storage keys.
package slug

import (
	"path"
	"strings"
	"unicode"
)

// MaxLen bounds a generated slug so storage keys stay short.
const MaxLen = 48

// Generate lowercases s, keeps ASCII letters and digits, and joins the
// words with single hyphens. Example: "Intro to Go (2026)!" becomes
// "intro-to-go-2026". The result is at most MaxLen bytes and may be empty.
func Generate(s string) string {
	var b strings.Builder
	gap := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if gap && b.Len() > 0 {
				b.WriteByte('-')
			}
			gap = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			gap = true
		}
		if b.Len() >= MaxLen {
			break
		}
	}
	return strings.TrimRight(truncate(b.String()), "-")
}

// FileStem slugs a file name without its directory or extension, falling
// back to "file" when nothing usable remains.
func FileStem(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	stem := Generate(strings.TrimSuffix(base, path.Ext(base)))
	if stem == "" {
		return "file"
	}
	return stem
}

func truncate(s string) string {
	if len(s) > MaxLen {
		return s[:MaxLen]
	}
	return s
}
