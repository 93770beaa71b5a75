// Package block defines the shared alignment-block domain types (spec §3)
// produced by all three physical decoders (bigmaf, maftabix, taf) and
// consumed by the streaming query driver, the FASTA materializer, and the
// renderer.
package block

import "github.com/GMOD/maf-go/seq"

// Row is one species' aligned sequence within a Block (spec §3).
//
// Invariant: the number of non-gap positions in Seq equals the aligned span
// on Chr; Start + nonGap(Seq) <= SrcSize.
type Row struct {
	AssemblyName string
	Chr          string
	Start        uint32
	SrcSize      uint32
	Strand       int8 // +1 or -1
	Seq          seq.S
}

// Block is one alignment block: a reference row plus every other species'
// aligned row, all sharing the same column count (spec §3).
//
// Invariants: RefEnd-RefStart == nonGap(RefSeq); every row's Seq.Length ==
// RefSeq.Length; RefSeq is byte-identical to the row whose assembly matches
// the resolved reference (spec §4.2).
type Block struct {
	RefName     string
	RefStart    uint32
	RefEnd      uint32
	RefSeq      seq.S
	RefAssembly string // assembly name backing RefSeq; "" if unresolved
	Rows        []Row
}

// RowByAssembly returns the row for the given assembly name, if present.
// Row counts in practice are small enough (single digits to low hundreds)
// that a linear scan, done at most once or twice per block, beats
// maintaining a parallel map.
func (b *Block) RowByAssembly(assembly string) (Row, bool) {
	for _, r := range b.Rows {
		if r.AssemblyName == assembly {
			return r, true
		}
	}
	return Row{}, false
}
