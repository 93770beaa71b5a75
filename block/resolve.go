package block

import (
	"github.com/pkg/errors"

	"github.com/GMOD/maf-go/seq"
)

// ErrNoReference is returned by ResolveReference when none of the three
// resolution keys (spec §4.2) match any row in the block.
var ErrNoReference = errors.New("block: no reference row found")

// ResolveReference implements the cascade from spec §4.2: (1) an explicit
// refAssemblyName from configuration, (2) the assemblyName of the query
// region, (3) the first assembly observed in the block's row list. On
// success it sets RefName/RefStart/RefEnd/RefSeq/RefAssembly from the
// winning row. On failure the block is left with an empty RefSeq -- callers
// still yield the block (spec §4.2: "the block is still yielded, but refSeq
// is empty").
func ResolveReference(b *Block, refAssemblyName, queryAssemblyName string) error {
	row, ok := pickReference(b, refAssemblyName, queryAssemblyName)
	if !ok {
		return ErrNoReference
	}
	b.RefAssembly = row.AssemblyName
	b.RefName = row.Chr
	b.RefStart = row.Start
	b.RefSeq = row.Seq
	b.RefEnd = row.Start + uint32(seq.NonGapCount(row.Seq))
	return nil
}

func pickReference(b *Block, refAssemblyName, queryAssemblyName string) (Row, bool) {
	if refAssemblyName != "" {
		if row, ok := b.RowByAssembly(refAssemblyName); ok {
			return row, true
		}
	}
	if queryAssemblyName != "" {
		if row, ok := b.RowByAssembly(queryAssemblyName); ok {
			return row, true
		}
	}
	if len(b.Rows) > 0 {
		return b.Rows[0], true
	}
	return Row{}, false
}
