package competitor

import (
	"math"
	"strings"
	"unicode"
)

// wordsPerMinute is the average silent reading speed used for the reading
// time estimate.
const wordsPerMinute = 200

// ReadingMinutes estimates reading time in minutes for text. Non-empty text
// reads in at least one minute.
func ReadingMinutes(text string) int {
	words := countWords(text)
	if words == 0 {
		return 0
	}
	return int(math.Max(1, math.Ceil(float64(words)/wordsPerMinute)))
}

// countWords counts whitespace-delimited words.
func countWords(text string) int {
	return len(strings.Fields(text))
}

// cleanText trims every line, collapses runs of spaces inside lines and
// keeps at most one blank line between paragraphs.
func cleanText(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if len(out) > 0 {
				blank = true
			}
			continue
		}
		if blank {
			out = append(out, "")
			blank = false
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// truncateWords returns s cut after maxWords words, keeping the original
// line breaks, and whether anything was cut.
func truncateWords(s string, maxWords int) (string, bool) {
	words := 0
	inWord := false
	for i, r := range s {
		if unicode.IsSpace(r) {
			inWord = false
			continue
		}
		if !inWord {
			if words == maxWords {
				return strings.TrimRightFunc(s[:i], unicode.IsSpace), true
			}
			words++
			inWord = true
		}
	}
	return s, false
}
