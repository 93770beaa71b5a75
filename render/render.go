// Package render computes pixel-space spans for rendering an alignment
// block stream at a given zoom level (spec.md §4.11). It owns no spatial
// index itself -- spans are handed to an external one for hit-testing.
package render

import (
	"github.com/GMOD/maf-go/block"
	"github.com/GMOD/maf-go/seq"
)

// Kind classifies what a Span depicts.
type Kind byte

const (
	KindMatch Kind = iota
	KindMismatch
	KindGap
	KindInsertion
)

// Span is one pixel-space rectangle, tagged with the genomic position and
// base it depicts (spec §4.11's emitted tuple).
type Span struct {
	MinX, MinY, MaxX, MaxY float64
	Pos                    uint32
	Chr                    string
	Base                   byte
	RowIndex               int
	Kind                   Kind
}

// Driver holds the per-row last-inserted-x dedup gate across an entire
// query. The gate is scoped to the query, not to one block -- resetting it
// at a block boundary would double-emit spans tight against the edge, so
// Driver.lastX persists across EmitBlock calls the same way the teacher's
// BEDUnion.lastIdx persists across ContainsByID calls on the same contig
// (interval/bedunion.go).
type Driver struct {
	bpPerPx   float64
	scale     float64
	rowHeight float64
	minGate   float64
	lastX     map[int]float64
}

// NewDriver returns a Driver for the given zoom level (bpPerPx, base pairs
// per pixel) and per-row height in pixels.
func NewDriver(bpPerPx, rowHeight float64) *Driver {
	if bpPerPx <= 0 {
		bpPerPx = 1
	}
	minGate := bpPerPx
	if minGate < 1 {
		minGate = 1
	}
	return &Driver{
		bpPerPx:   bpPerPx,
		scale:     1 / bpPerPx,
		rowHeight: rowHeight,
		minGate:   minGate,
		lastX:     make(map[int]float64),
	}
}

// Reset clears the dedup gate for every row, for reuse across queries.
func (d *Driver) Reset() {
	d.lastX = make(map[int]float64)
}

// EmitBlock computes spans for every row of b, in row-index order, with x
// coordinates relative to regionStart (spec §4.11).
func (d *Driver) EmitBlock(b *block.Block, regionStart uint32) []Span {
	var spans []Span
	for rowIdx, row := range b.Rows {
		spans = append(spans, d.emitRow(b, rowIdx, row, regionStart)...)
	}
	return spans
}

func (d *Driver) emitRow(b *block.Block, rowIdx int, row block.Row, regionStart uint32) []Span {
	refSeq := b.RefSeq
	if refSeq.Length != row.Seq.Length {
		return nil
	}

	var spans []Span
	pos := b.RefStart
	y0 := float64(rowIdx) * d.rowHeight
	y1 := y0 + d.rowHeight

	emit := func(kind Kind, base byte, at uint32) {
		x := float64(int64(at)-int64(regionStart)) * d.scale
		if last, ok := d.lastX[rowIdx]; ok && absF(x-last) <= d.minGate {
			return
		}
		d.lastX[rowIdx] = x
		spans = append(spans, Span{
			MinX: x, MinY: y0, MaxX: x + d.scale, MaxY: y1,
			Pos: at, Chr: b.RefName, Base: base, RowIndex: rowIdx, Kind: kind,
		})
	}

	for col := 0; col < refSeq.Length; col++ {
		if seq.IsGap(refSeq, col) {
			// Insertion column: anchored at the boundary position pos,
			// which is not yet advanced.
			if !seq.IsGap(row.Seq, col) {
				emit(KindInsertion, seq.BaseAtLower(row.Seq, col), pos)
			}
			continue
		}
		switch {
		case seq.IsGap(row.Seq, col):
			emit(KindGap, '-', pos)
		case seq.BaseAtLower(row.Seq, col) == seq.BaseAtLower(refSeq, col):
			emit(KindMatch, seq.BaseAtLower(row.Seq, col), pos)
		default:
			emit(KindMismatch, seq.BaseAtLower(row.Seq, col), pos)
		}
		pos++
	}
	return spans
}

func absF(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
