package memstore

import (
	"fmt"
	"regexp"
	"strings"
)

// compileGlob translates a Redis KEYS pattern into an anchored regexp.
// Supported: * ? [abc] [^a] [a-z] and backslash escapes. An unterminated
// [ is taken literally.
func compileGlob(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString(`(?s)^`)
	rs := []rune(pattern)
	for i := 0; i < len(rs); i++ {
		c := rs[i]
		switch c {
		case '*':
			sb.WriteString(".*")
		case '?':
			sb.WriteString(".")
		case '\\':
			if i+1 < len(rs) {
				i++
				sb.WriteString(regexp.QuoteMeta(string(rs[i])))
			} else {
				sb.WriteString(`\\`)
			}
		case '[':
			end := classEnd(rs, i)
			if end < 0 {
				sb.WriteString(`\[`)
				continue
			}
			sb.WriteString(class(rs[i+1 : end]))
			i = end
		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	sb.WriteString("$")
	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, fmt.Errorf("invalid key pattern %q: %w", pattern, err)
	}
	return re, nil
}

func classEnd(rs []rune, open int) int {
	for j := open + 1; j < len(rs); j++ {
		switch rs[j] {
		case '\\':
			j++
		case ']':
			if j > open+1 {
				return j
			}
		}
	}
	return -1
}

func class(body []rune) string {
	var sb strings.Builder
	sb.WriteString("[")
	if len(body) > 0 && body[0] == '^' {
		sb.WriteString("^")
		body = body[1:]
	}
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body):
			i++
			sb.WriteString(classRune(body[i]))
		case c == '-' && i > 0 && i+1 < len(body):
			sb.WriteRune(c)
		default:
			sb.WriteString(classRune(c))
		}
	}
	sb.WriteString("]")
	return sb.String()
}

func classRune(c rune) string {
	if strings.ContainsRune(`\[]^-`, c) {
		return `\` + string(c)
	}
	return string(c)
}
