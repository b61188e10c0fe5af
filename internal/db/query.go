package db

import (
	"strconv"
	"strings"
)

// FT query expression builders. Each helper returns a self-contained clause
// that can be combined with Or; weights use the dialect-2 attribute syntax.

// Phrase matches an exact phrase on a field.
func Phrase(field, phrase string, weight float64) string {
	return weighted("@"+field+":\""+EscapeTerm(phrase)+"\"", weight)
}

// AndTerms matches all terms on a field.
func AndTerms(field string, terms []string, weight float64) string {
	return weighted("@"+field+":("+joinTerms(terms, " ")+")", weight)
}

// OrTerms matches any of the terms on a field.
func OrTerms(field string, terms []string, weight float64) string {
	return weighted("@"+field+":("+joinTerms(terms, "|")+")", weight)
}

// FuzzyTerms matches each word with Levenshtein fuzziness. Distance is
// clamped to [1,3], the range the query language supports.
func FuzzyTerms(field string, words []string, distance int, weight float64) string {
	if distance < 1 {
		distance = 1
	}
	if distance > 3 {
		distance = 3
	}
	marker := strings.Repeat("%", distance)

	parts := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		parts = append(parts, marker+EscapeTerm(w)+marker)
	}
	return weighted("@"+field+":("+strings.Join(parts, " ")+")", weight)
}

// Or combines clauses into a disjunction. Empty clauses are dropped.
func Or(clauses ...string) string {
	kept := make([]string, 0, len(clauses))
	for _, c := range clauses {
		if c != "" {
			kept = append(kept, c)
		}
	}
	if len(kept) == 1 {
		return kept[0]
	}
	return "(" + strings.Join(kept, " | ") + ")"
}

func joinTerms(terms []string, sep string) string {
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		if t == "" {
			continue
		}
		parts = append(parts, EscapeTerm(t))
	}
	return strings.Join(parts, sep)
}

func weighted(clause string, weight float64) string {
	if weight <= 0 || weight == 1 {
		return clause
	}
	return "(" + clause + ")=>{$weight:" + strconv.FormatFloat(weight, 'g', -1, 64) + ";}"
}

// EscapeTerm escapes query-syntax characters inside a term or phrase.
func EscapeTerm(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
)
