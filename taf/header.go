package taf

import (
	"strings"

	"github.com/GMOD/maf-go/nameparse"
)

// Header is the parsed first line of a TAF file (spec §4.5.2, §6). Only the
// flags that affect decoding are modeled; unrecognized tags are ignored.
type Header struct {
	RunLengthEncodeBases bool
}

// ParseHeader parses a TAF header's first line. Callers pass the raw line
// including the leading "#taf" marker.
func ParseHeader(line string) Header {
	var h Header
	for _, tok := range nameparse.SplitFields(line) {
		if tok == "run_length_encode_bases:1" {
			h.RunLengthEncodeBases = true
		}
	}
	return h
}

// IsHeaderLine reports whether line looks like a TAF header's first line.
func IsHeaderLine(line string) bool {
	return strings.HasPrefix(line, "#taf")
}
