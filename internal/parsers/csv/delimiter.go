package csv

import "strings"

// DetectDelimiter picks the most frequent candidate delimiter in the first
// line. Semicolon wins ties because Norwegian locales export CSV with
// semicolons and comma decimal separators.
func DetectDelimiter(content string) rune {
	firstLine := content
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		firstLine = content[:idx]
	}

	counts := map[rune]int{
		';':  strings.Count(firstLine, ";"),
		',':  strings.Count(firstLine, ","),
		'\t': strings.Count(firstLine, "\t"),
		'|':  strings.Count(firstLine, "|"),
	}

	best := ';'
	bestCount := counts[';']
	for _, d := range []rune{'\t', '|', ','} {
		if counts[d] > bestCount {
			best = d
			bestCount = counts[d]
		}
	}
	return best
}
