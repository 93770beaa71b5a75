// Package bigmaf decodes the BigMaf encoding: a BigBed feature carrying a
// MAF alignment block packed into its own extra "mafBlock" string column
// (spec §4.6).
package bigmaf

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/GMOD/maf-go/block"
	"github.com/GMOD/maf-go/nameparse"
	"github.com/GMOD/maf-go/seq"
)

// Feature is a BigBed row bearing a packed MAF block (spec §4.6).
type Feature struct {
	RefName  string
	Start    uint32
	End      uint32
	MafBlock string
}

// Decode turns a BigMaf Feature into a block.Block. The first "s " segment
// encountered is the reference row; its encoded sequence becomes
// block.RefSeq (spec §4.6's "this agrees with the BigMaf convention" rule,
// distinct from the general §4.2 cascade that taf/maftabix use).
func Decode(f Feature) (*block.Block, error) {
	segments := strings.Split(f.MafBlock, ";")
	var rows []block.Row
	refIdx := -1

	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if !strings.HasPrefix(seg, "s ") {
			continue
		}
		tokens := nameparse.SplitFields(seg)
		// "s" assembly.chr start srcSize strand unknown seq (spec §4.6). Note
		// this order disagrees with spec §1's summary of the BigMaf line
		// shape (start, size, strand, srcSize); §4.6's field order is the one
		// followed here, consistent with §4.7's MafTabix tuple using the
		// same start/srcSize/strand ordering.
		if len(tokens) != 7 {
			continue
		}
		assembly, chr := nameparse.Simple(tokens[1])
		start, ok := parseUint32(tokens[2])
		if !ok {
			continue
		}
		srcSize, ok := parseUint32(tokens[3])
		if !ok {
			continue
		}
		strand, ok := parseStrand(tokens[4])
		if !ok {
			continue
		}
		row := block.Row{
			AssemblyName: assembly,
			Chr:          chr,
			Start:        start,
			SrcSize:      srcSize,
			Strand:       strand,
			Seq:          seq.Encode([]byte(tokens[6])),
		}
		if refIdx < 0 {
			refIdx = len(rows)
		}
		rows = append(rows, row)
	}

	if refIdx < 0 {
		return nil, errors.Errorf("bigmaf: no rows decoded from feature %s:%d-%d", f.RefName, f.Start, f.End)
	}

	ref := rows[refIdx]
	return &block.Block{
		RefName:     ref.Chr,
		RefStart:    ref.Start,
		RefEnd:      ref.Start + uint32(seq.NonGapCount(ref.Seq)),
		RefSeq:      ref.Seq,
		RefAssembly: ref.AssemblyName,
		Rows:        rows,
	}, nil
}

func parseUint32(s string) (uint32, bool) {
	if s == "" {
		return 0, false
	}
	var n uint64
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + uint64(s[i]-'0')
	}
	return uint32(n), true
}

func parseStrand(s string) (int8, bool) {
	switch s {
	case "+":
		return 1, true
	case "-":
		return -1, true
	default:
		return 0, false
	}
}
