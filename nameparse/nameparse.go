// Package nameparse splits the "assembly[.version].chr[.more]" tokens that
// appear in every MAF row, with the two splitting rules spec §4.2 requires:
// a Simple first-dot split for BigMaf and TAF, and a numeric-middle
// Heuristic split for MafTabix.
//
// Simple and Heuristic locate dots with strings.IndexByte. SplitFields, the
// shared whitespace tokenizer, is the scan-forward loop (scan over a byte
// slice, classify a run, emit a substring) that follows the teacher's
// interval.getTokens shape (interval/bedunion.go).
package nameparse

import "strings"

// Simple splits on the first '.'. If name has no dot, Chr is "".
func Simple(name string) (assembly, chr string) {
	i := strings.IndexByte(name, '.')
	if i < 0 {
		return name, ""
	}
	return name[:i], name[i+1:]
}

// Heuristic splits name the way MafTabix rows are split (spec §4.2, §9): if
// the substring between the first two dots consists entirely of decimal
// digits, it's treated as an assembly-version suffix and folded into
// assembly; otherwise the first dot is the separator, same as Simple. With
// zero or one dot, behaves exactly like Simple.
//
// This heuristic is preserved verbatim from the source format, including its
// documented failure mode (spec §9): an assembly name with a numeric
// component followed by a chromosome with a leading digit, e.g. "asm.2.chr2"
// vs. "asm.2.2", can be misclassified. A future version should make the
// split configurable instead of guessing; this version does not.
func Heuristic(name string) (assembly, chr string) {
	firstDot := strings.IndexByte(name, '.')
	if firstDot < 0 {
		return name, ""
	}
	rest := name[firstDot+1:]
	secondDot := strings.IndexByte(rest, '.')
	if secondDot < 0 {
		return Simple(name)
	}
	middle := rest[:secondDot]
	if middle != "" && isAllDigits(middle) {
		return name[:firstDot+1+secondDot], rest[secondDot+1:]
	}
	return Simple(name)
}

func isAllDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// SplitFields splits line on runs of ' ' into space-separated fields,
// dropping empty fields between them. This is the teacher's
// interval.getTokens shape (see the package doc comment) applied directly
// to whitespace rather than adapted to '.'-delimited names; both the TAF
// instruction line and the BigMaf feature line use it to tokenize their
// space-separated fields.
func SplitFields(line string) []string {
	var tokens []string
	i, n := 0, len(line)
	for i < n {
		for i < n && line[i] == ' ' {
			i++
		}
		if i >= n {
			break
		}
		start := i
		for i < n && line[i] != ' ' {
			i++
		}
		tokens = append(tokens, line[start:i])
	}
	return tokens
}
