// Package llmjson pulls JSON out of free-form model output.
//
// The rules are deliberately narrow: StripFences only removes markdown code
// fences, and FirstArray only bracket-matches. Nothing here repairs JSON.
package llmjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrNoArray = errors.New("llmjson: no JSON array found")
	ErrInvalid   = errors.New("llmjson: invalid JSON")
	ErrNotObject = errors.New("llmjson: top-level value is not an object")
)

var openFence = regexp.MustCompile("```json\\s*")

// StripFences removes a ```json ... ``` wrapper from a model response.
//
//  1. trim surrounding whitespace
//  2. if the text opens with ```json, closes with ``` and spans at least
//     three lines, drop the first and last line
//  3. remove the first remaining ```json marker and a trailing ``` marker
func StripFences(raw string) string {
	text := strings.TrimSpace(raw)
	out := text

	if strings.HasPrefix(text, "```json") && strings.HasSuffix(text, "```") {
		lines := strings.Split(text, "\n")
		if len(lines) >= 3 && strings.HasPrefix(lines[0], "```json") && strings.HasPrefix(lines[len(lines)-1], "```") {
			out = strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
		}
	}

	if loc := openFence.FindStringIndex(out); loc != nil {
		out = out[:loc[0]] + out[loc[1]:]
	}
	out = strings.TrimSuffix(out, "```")
	return strings.TrimSpace(out)
}

// ParseDocument strips fences and checks the remainder is a JSON object. The
// returned bytes are the stripped text, unmodified.
func ParseDocument(raw string) ([]byte, error) {
	b := []byte(StripFences(raw))
	var doc json.RawMessage
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !strings.HasPrefix(string(doc), "{") {
		return nil, ErrNotObject
	}
	return b, nil
}

// FirstArray returns the first balanced top-level [...] in s, ignoring
// brackets that appear inside JSON strings.
func FirstArray(s string) (string, error) {
	start := strings.IndexByte(s, '[')
	if start < 0 {
		return "", ErrNoArray
	}
	depth := 0
	inStr, esc := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case c == '\\':
				esc = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", ErrNoArray
}
