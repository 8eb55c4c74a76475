// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package shortcode

import (
	"strconv"
	"strings"
)

// Segment is a run of literal text or a single directive. Exactly one of
// Text and Directive is meaningful.
type Segment struct {
	Text      string
	Directive *Directive
}

// Parse splits content into literal and directive segments, scanning left
// to right. Bracket text that is not a well-formed directive stays literal,
// so joining Text and Directive.Raw over all segments returns content.
func Parse(content string) []Segment {
	var segs []Segment
	last := 0
	i := 0
	for {
		open := strings.IndexByte(content[i:], '[')
		if open < 0 {
			break
		}
		open += i

		d, end, ok := parseDirective(content, open)
		if !ok {
			i = open + 1
			continue
		}
		if open > last {
			segs = append(segs, Segment{Text: content[last:open]})
		}
		segs = append(segs, Segment{Directive: &d})
		last, i = end, end
	}
	if last < len(content) {
		segs = append(segs, Segment{Text: content[last:]})
	}
	return segs
}

// HasKnown reports whether content contains at least one recognised
// directive. It does no I/O.
func HasKnown(content string) bool {
	if !strings.Contains(content, "[") {
		return false
	}
	for _, s := range Parse(content) {
		if s.Directive != nil && s.Directive.Known() {
			return true
		}
	}
	return false
}

// parseDirective reads a directive starting at content[start] == '['.
// It returns the index just past the closing ']'.
func parseDirective(content string, start int) (Directive, int, bool) {
	n := len(content)
	j := start + 1

	nameStart := j
	if j >= n || !isLetter(content[j]) {
		return Directive{}, 0, false
	}
	for j < n && isNameChar(content[j]) {
		j++
	}
	name := content[nameStart:j]

	args := Args{}
	for {
		if j >= n {
			return Directive{}, 0, false
		}
		c := content[j]
		switch {
		case c == ']':
			j++
			return Directive{Name: name, Kind: KindOf(name), Args: args, Raw: content[start:j]}, j, true
		case c == '/' && j+1 < n && content[j+1] == ']':
			j += 2
			return Directive{Name: name, Kind: KindOf(name), Args: args, Raw: content[start:j]}, j, true
		case isSpace(c):
			j++
			continue
		}

		// attributes must be separated from the name and from each other
		if !isSpace(content[j-1]) {
			return Directive{}, 0, false
		}

		keyStart := j
		if !isLetter(content[j]) && content[j] != '_' {
			return Directive{}, 0, false
		}
		for j < n && isNameChar(content[j]) {
			j++
		}
		key := strings.ToLower(content[keyStart:j])

		if j >= n || content[j] != '=' {
			args[key] = true
			continue
		}
		j++

		if j >= n {
			return Directive{}, 0, false
		}
		if q := content[j]; q == '"' || q == '\'' {
			end := strings.IndexByte(content[j+1:], q)
			if end < 0 {
				return Directive{}, 0, false
			}
			args[key] = content[j+1 : j+1+end]
			j += end + 2
			if j < n && !isSpace(content[j]) && content[j] != ']' && content[j] != '/' {
				return Directive{}, 0, false
			}
			continue
		}

		valStart := j
		for j < n && !isSpace(content[j]) && content[j] != ']' && content[j] != '[' && content[j] != '"' && content[j] != '\'' {
			if content[j] == '/' && j+1 < n && content[j+1] == ']' {
				break
			}
			j++
		}
		if j == valStart || (j < n && (content[j] == '[' || content[j] == '"' || content[j] == '\'')) {
			return Directive{}, 0, false
		}
		args[key] = parseBare(content[valStart:j])
	}
}

// parseBare types an unquoted value: bool, then integer, then float, then string.
func parseBare(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_' || c == '-'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
