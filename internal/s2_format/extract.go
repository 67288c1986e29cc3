package s2_format

import (
	"encoding/json"
	"errors"
	"strings"
)

// errNoArray is returned when the response holds no parseable JSON array
var errNoArray = errors.New("no JSON array found in backend response")

// ExtractJSONArray pulls the JSON array out of a model response.
// Markdown code fences and prose before or after the array are tolerated.
func ExtractJSONArray(text string) ([]byte, error) {
	text = strings.TrimPrefix(text, "\ufeff")

	// fenced blocks first: ```json ... ``` or ``` ... ```
	// an array of records wins over any other array found earlier
	var fallback []byte
	for _, span := range append(fencedBlocks(text), text) {
		raw, records := firstArray(span)
		if records {
			return raw, nil
		}
		if fallback == nil {
			fallback = raw
		}
	}

	if fallback != nil {
		return fallback, nil
	}
	return nil, errNoArray
}

func fencedBlocks(text string) []string {
	var blocks []string
	rest := text
	for {
		start := strings.Index(rest, "```")
		if start < 0 {
			return blocks
		}
		rest = rest[start+3:]
		// skip the info string (e.g. "json")
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		}
		end := strings.Index(rest, "```")
		if end < 0 {
			return append(blocks, rest)
		}
		blocks = append(blocks, rest[:end])
		rest = rest[end+3:]
	}
}

// firstArray returns the first balanced [...] span that is a valid JSON array
// of objects (records=true), or else the first valid array of any kind
func firstArray(text string) (raw []byte, records bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != '[' {
			continue
		}
		end := matchBracket(text, i)
		if end < 0 {
			continue
		}
		candidate := []byte(text[i : end+1])
		if !json.Valid(candidate) {
			continue
		}
		if isObjectArray(candidate) {
			return candidate, true
		}
		if raw == nil {
			raw = candidate
		}
	}
	return raw, false
}

// isObjectArray reports whether raw is a non-empty array holding only objects
func isObjectArray(raw []byte) bool {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || len(items) == 0 {
		return false
	}
	for _, item := range items {
		if len(item) == 0 || item[0] != '{' {
			return false
		}
	}
	return true
}

// matchBracket finds the ']' closing the '[' at open, skipping string literals
func matchBracket(text string, open int) int {
	depth := 0
	inString := false
	escaped := false

	for i := open; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				if c == ']' {
					return i
				}
				return -1
			}
		}
	}
	return -1
}
