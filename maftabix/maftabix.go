// Package maftabix decodes the MafTabix encoding: a Tabix-indexed BED row
// whose 5th field packs one alignment block as a comma-separated list of
// colon-separated row tuples (spec §4.7).
package maftabix

import (
	"strconv"
	"strings"

	"github.com/GMOD/maf-go/block"
	"github.com/GMOD/maf-go/nameparse"
	"github.com/GMOD/maf-go/seq"
)

// Row is one Tabix record carrying a packed MAF block in Field5 (spec §4.7;
// RefName/Start/End are the Tabix row's own BED coordinates).
type Row struct {
	RefName string
	Start   uint32
	End     uint32
	Field5  string
}

// Decode splits Field5 on ',' into row tuples, each split on ':' into
// (assembly.chr, start, srcSize, strand, unknown, seq), and resolves the
// reference row via the general cascade (spec §4.2): refAssemblyName,
// then queryAssemblyName, then the first row.
func Decode(r Row, refAssemblyName, queryAssemblyName string) (*block.Block, error) {
	tuples := strings.Split(r.Field5, ",")
	rows := make([]block.Row, 0, len(tuples))
	for _, tup := range tuples {
		parts := strings.Split(tup, ":")
		if len(parts) != 6 {
			continue
		}
		assembly, chr := nameparse.Heuristic(parts[0])
		start, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			continue
		}
		srcSize, err := strconv.ParseUint(parts[2], 10, 32)
		if err != nil {
			continue
		}
		var strand int8
		switch parts[3] {
		case "+":
			strand = 1
		case "-":
			strand = -1
		default:
			continue
		}
		rows = append(rows, block.Row{
			AssemblyName: assembly,
			Chr:          chr,
			Start:        uint32(start),
			SrcSize:      uint32(srcSize),
			Strand:       strand,
			Seq:          seq.Encode([]byte(parts[5])),
		})
	}

	b := &block.Block{Rows: rows}
	if err := block.ResolveReference(b, refAssemblyName, queryAssemblyName); err != nil {
		return b, err
	}
	return b, nil
}
