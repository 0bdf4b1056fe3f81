package generator

import (
	"encoding/json"
	"strings"
)

// ParseCandidates extracts item names from raw model output.
//
// Strict path: the first top-level JSON array in the text that decodes as
// an array of strings. Models frequently wrap the array in prose or
// markdown fences, so the scanner locates array boundaries instead of
// decoding the whole response.
//
// Fallback: numbered or bulleted lines ("1. Foo", "- Bar", "* Baz") and
// plain non-empty lines. The fallback never fails; an unusable response
// simply yields no candidates.
func ParseCandidates(raw string) []string {
	for _, candidate := range findArrayCandidates(raw) {
		var items []string
		if err := json.Unmarshal([]byte(candidate), &items); err == nil {
			return cleanItems(items)
		}
	}
	return parseLines(raw)
}

// findArrayCandidates scans for top-level JSON array spans. It tracks
// nesting depth and string escaping byte-wise; ASCII delimiters never
// appear inside UTF-8 continuation bytes, so byte iteration is safe.
func findArrayCandidates(s string) []string {
	var candidates []string
	var depth int
	start := -1
	var inString, escape bool

	for i := 0; i < len(s); i++ {
		b := s[i]

		if escape {
			escape = false
			continue
		}
		if inString {
			if b == '\\' {
				escape = true
			} else if b == '"' {
				inString = false
			}
			continue
		}

		switch b {
		case '"':
			inString = true
		case '[':
			if depth == 0 {
				start = i
			}
			depth++
		case ']':
			if depth > 0 {
				depth--
				if depth == 0 && start != -1 {
					candidates = append(candidates, s[start:i+1])
					start = -1
				}
			}
		}
	}
	return candidates
}

func parseLines(raw string) []string {
	var items []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*• \t")
		line = stripOrdinal(line)
		line = strings.Trim(line, `"`)
		line = strings.TrimSuffix(line, ",")
		line = strings.Trim(line, `"`)
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		// Prose lead-ins ("Here are the items:") are not candidates.
		if strings.HasSuffix(line, ":") {
			continue
		}
		items = append(items, line)
	}
	return cleanItems(items)
}

// stripOrdinal removes a leading list ordinal ("1.", "10)") and the
// whitespace after it. Leading digits alone are part of the item:
// "30 Rock" is a name, not a numbered line.
func stripOrdinal(line string) string {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(line) || (line[i] != '.' && line[i] != ')') {
		return line
	}
	return strings.TrimLeft(line[i+1:], " \t")
}

func cleanItems(items []string) []string {
	out := items[:0]
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
