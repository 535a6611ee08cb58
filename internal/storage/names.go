package storage

import (
	"path/filepath"
	"strings"
)

var translit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d",
	'е': "e", 'ё': "e", 'ж': "zh", 'з': "z", 'и': "i",
	'й': "y", 'к': "k", 'л': "l", 'м': "m", 'н': "n",
	'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t",
	'у': "u", 'ф': "f", 'х': "h", 'ц': "c", 'ч': "ch",
	'ш': "sh", 'щ': "shch", 'ъ': "", 'ы': "y", 'ь': "",
	'э': "e", 'ю': "yu", 'я': "ya",
}

const maxSlugLen = 80

// Slug turns a free-form title into a file-name-safe base: lower-case latin
// letters, digits, '_' and '-'. Cyrillic is transliterated, whitespace becomes
// '_', everything else is dropped.
func Slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '\t':
			b.WriteByte('_')
		default:
			if val, ok := translit[r]; ok {
				b.WriteString(val)
			}
		}
	}

	out := b.String()
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	if len(out) > maxSlugLen {
		out = out[:maxSlugLen]
	}
	return strings.Trim(out, "_-")
}

// Ext returns the lower-cased extension of name, including the dot.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
