package vcard

import "strings"

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	",", `\,`,
	";", `\;`,
	"\r\n", `\n`,
	"\n", `\n`,
)

// escapeText escapes a TEXT value so it can sit on a single content line.
func escapeText(value string) string {
	return textEscaper.Replace(value)
}

// unescapeText reverses escapeText. Unknown escapes keep the escaped
// character and drop the backslash.
func unescapeText(value string) string {
	if !strings.Contains(value, `\`) {
		return value
	}

	var b strings.Builder
	b.Grow(len(value))

	for i := 0; i < len(value); i++ {
		c := value[i]
		if c != '\\' || i == len(value)-1 {
			b.WriteByte(c)
			continue
		}

		i++
		switch value[i] {
		case 'n', 'N':
			b.WriteByte('\n')
		default:
			b.WriteByte(value[i])
		}
	}

	return b.String()
}

// indexUnescaped returns the index of the first sep in s that is not
// preceded by an escaping backslash, or -1.
func indexUnescaped(s string, sep byte) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case sep:
			return i
		}
	}
	return -1
}

// splitUnescaped splits s on every sep that is not escaped. The parts are
// returned still escaped.
func splitUnescaped(s string, sep byte) []string {
	var parts []string
	for {
		idx := indexUnescaped(s, sep)
		if idx < 0 {
			return append(parts, s)
		}
		parts = append(parts, s[:idx])
		s = s[idx+1:]
	}
}

// structuredValue joins escaped components with ';'.
func structuredValue(components ...string) string {
	escaped := make([]string, len(components))
	for i, component := range components {
		escaped[i] = escapeText(component)
	}
	return strings.Join(escaped, ";")
}

// structuredComponents splits a structured value into exactly n unescaped
// components, padding missing trailing positions with "".
func structuredComponents(value string, n int) []string {
	parts := splitUnescaped(value, ';')
	components := make([]string, n)
	for i := 0; i < n && i < len(parts); i++ {
		components[i] = unescapeText(parts[i])
	}
	return components
}
