package taf

import (
	"strconv"
	"strings"
)

// ExpandRLE decodes a run-length-encoded bases token -- alternating
// (base-char, count) pairs -- into the literal column string (spec §4.5.2).
// A count of 0 contributes no base for that run (spec §8). If the token
// isn't validly paired otherwise (odd run count, bad digit run), it is
// returned unexpanded: the caller's downstream transpose treats it as a
// literal column, which is the most graceful degradation available without
// aborting the whole block (spec §4.5.4's "best effort" framing).
func ExpandRLE(token string) string {
	var out strings.Builder
	i, n := 0, len(token)
	for i < n {
		base := token[i]
		i++
		start := i
		for i < n && token[i] >= '0' && token[i] <= '9' {
			i++
		}
		if i == start {
			// No digit run following this base char: malformed, bail out to
			// the literal token.
			return token
		}
		count, err := strconv.Atoi(token[start:i])
		if err != nil {
			return token
		}
		// A zero count contributes no base for this run (spec §8) rather
		// than falling back to the literal token.
		for k := 0; k < count; k++ {
			out.WriteByte(base)
		}
	}
	return out.String()
}
