package importer

import "strings"

// DetectDelimiter picks ';' or ',' by counting both in the first line of
// text. Semicolon wins only on a strict majority.
//
// This is a heuristic: a comma-separated file whose first line contains more
// semicolons than commas inside quoted header names will be misdetected.
func DetectDelimiter(text string) rune {
	first, _, _ := strings.Cut(text, "\n")
	if strings.Count(first, ";") > strings.Count(first, ",") {
		return ';'
	}
	return ','
}
