package taf

import (
	"bufio"
	"io"
	"strings"

	"github.com/GMOD/maf-go/block"
	"github.com/GMOD/maf-go/seq"
)

const coordSentinel = " ; "

// rowState is the reconstructor's per-row transient state (spec §3's "TAF
// row state (transient)"): everything needed to carry a row forward into
// the next block before that block's bases are known.
type rowState struct {
	assemblyName string
	chr          string
	start        uint32
	strand       int8
	srcSize      uint32
}

// Reconstructor is the stateful TAF block decoder (spec §4.5): a pull-based
// fold over coordinate/bases lines that carries row state from one block to
// the next and performs the column->row transpose at each block boundary.
//
// Not safe for concurrent use; one Reconstructor is exclusively owned by one
// active query (spec's concurrency model, §5: "the row-state scratch buffer
// inside the TAF reconstructor -- exclusively owned per active query").
type Reconstructor struct {
	scanner *bufio.Scanner
	header  Header

	refAssemblyName   string
	queryAssemblyName string
	queryStart        uint32
	queryEnd          uint32

	rows              []rowState
	columnAccumulator []string
	isFirstCoordLine  bool
	seenCoordLine     bool

	lineNo              int
	skippedInstructions int

	done bool
}

// LineNo returns the number of lines read so far, for the driver's
// "Processing line N" status callback (spec §7, every ~1000 lines).
func (rc *Reconstructor) LineNo() int { return rc.lineNo }

// SkippedInstructions returns the running count of malformed row-instruction
// tokens skipped so far (spec §4.5.4's "recover locally"); maf's TAF
// iterator reports it through the status callback (SPEC_FULL.md's
// supplemented diagnostic counter).
func (rc *Reconstructor) SkippedInstructions() int { return rc.skippedInstructions }

// NewReconstructor creates a Reconstructor reading decoded TAF body text
// from r, starting with header h and an initial (possibly rewritten) row
// list derived from the first coordinate line at the indexed position.
//
// refAssemblyName and queryAssemblyName feed the reference-resolution
// cascade (spec §4.2) at finalization time; qStart/qEnd are the query range
// used for the overlap filter (spec §4.5.3).
func NewReconstructor(r io.Reader, h Header, refAssemblyName, queryAssemblyName string, qStart, qEnd uint32) *Reconstructor {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, 1<<24)
	return &Reconstructor{
		scanner:           scanner,
		header:            h,
		refAssemblyName:   refAssemblyName,
		queryAssemblyName: queryAssemblyName,
		queryStart:        qStart,
		queryEnd:          qEnd,
		isFirstCoordLine:  true,
	}
}

// Next advances the reconstructor and returns the next in-range block, or
// ok=false once the input is exhausted. Blocks outside [qStart, qEnd) are
// constructed to carry state forward and silently discarded (spec §4.5.3),
// so callers should keep calling Next in a loop until ok is false.
func (rc *Reconstructor) Next() (blk *block.Block, ok bool, err error) {
	for {
		if rc.done {
			return nil, false, nil
		}
		b, produced, err := rc.step()
		if err != nil {
			return nil, false, err
		}
		if !produced {
			continue
		}
		if b == nil {
			return nil, false, nil
		}
		if b.RefEnd > rc.queryStart && b.RefStart < rc.queryEnd {
			return b, true, nil
		}
		// Out of range: constructed only to carry state forward (§4.5.3).
	}
}

// step reads lines until it either has a finalized block to offer (produced
// = true, b non-nil), determines input is exhausted (produced = true, b ==
// nil), or needs another iteration (produced = false).
func (rc *Reconstructor) step() (b *block.Block, produced bool, err error) {
	if !rc.scanner.Scan() {
		if err := rc.scanner.Err(); err != nil {
			return nil, false, err
		}
		rc.done = true
		// Unexpected EOF mid-block: yield only if >=1 column accumulated
		// (spec §4.5.4).
		if len(rc.columnAccumulator) > 0 {
			fin := rc.finalize()
			return fin, true, nil
		}
		return nil, true, nil
	}

	rc.lineNo++
	line := rc.scanner.Text()
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, false, nil
	}

	idx := strings.Index(line, coordSentinel)
	if idx < 0 {
		// Bases-only continuation line: only valid after an initial
		// coordinate line (spec §4.5 step 3).
		if !rc.seenCoordLine {
			return nil, false, nil
		}
		rc.columnAccumulator = append(rc.columnAccumulator, stripTag(line))
		return nil, false, nil
	}
	rc.seenCoordLine = true

	left := stripTag(line[:idx])
	right := stripTag(line[idx+len(coordSentinel):])

	var finalized *block.Block
	haveFinalized := len(rc.columnAccumulator) > 0 && len(rc.rows) > 0
	if haveFinalized {
		finalized = rc.finalize()
		// Carry state into the next block: each row's start advances by its
		// own non-gap count in the block just finalized (spec §4.5 step 2d),
		// before any i/s/d/g/G instructions on this line are folded in.
		rc.rows = advanceStarts(rc.rows, finalized.Rows)
	}

	instrs, skipped := ParseInstructions(right)
	rc.skippedInstructions += skipped
	if rc.isFirstCoordLine {
		instrs = RewriteFirstLine(instrs)
		rc.isFirstCoordLine = false
	}

	rc.rows = advanceRows(rc.rows, instrs)
	rc.columnAccumulator = rc.columnAccumulator[:0]
	rc.columnAccumulator = append(rc.columnAccumulator, left)

	if haveFinalized {
		return finalized, true, nil
	}
	return nil, false, nil
}

// stripTag removes a trailing " @..." tag suffix (spec §4.5 step 2b).
func stripTag(s string) string {
	if i := strings.Index(s, " @"); i >= 0 {
		return s[:i]
	}
	return s
}

// advanceStarts applies the implicit per-block start advance (spec §4.5
// step 2d): row i's start becomes start + nonGap(finalizedRows[i].Seq).
// rows and finalizedRows are always the same length -- finalizedRows was
// built from exactly this row list.
func advanceStarts(rows []rowState, finalizedRows []block.Row) []rowState {
	out := make([]rowState, len(rows))
	copy(out, rows)
	for i := range out {
		out[i].start += uint32(seq.NonGapCount(finalizedRows[i].Seq))
	}
	return out
}

// advanceRows folds i/s/d/g/G instructions into rows by index. Callers
// apply advanceStarts first so that the implicit per-block start advance
// (spec §4.5 step 2d) happens before any explicit gap/substitution on this
// line.
func advanceRows(prev []rowState, instrs []Instruction) []rowState {
	rows := make([]rowState, len(prev))
	copy(rows, prev)
	for _, in := range instrs {
		switch in.Op {
		case OpInsert:
			row := rowState{assemblyName: in.Assembly, chr: in.Chr, start: in.Start, strand: in.Strand, srcSize: in.SrcSize}
			rows = insertRow(rows, in.Row, row)
		case OpSubst:
			if in.Row >= 0 && in.Row < len(rows) {
				rows[in.Row] = rowState{assemblyName: in.Assembly, chr: in.Chr, start: in.Start, strand: in.Strand, srcSize: in.SrcSize}
			}
		case OpDelete:
			rows = deleteRow(rows, in.Row)
		case OpGap:
			if in.Row >= 0 && in.Row < len(rows) {
				rows[in.Row].start += in.GapLen
			}
		case OpGapSeq:
			if in.Row >= 0 && in.Row < len(rows) {
				rows[in.Row].start += uint32(len(in.GapSeq))
			}
		}
	}
	return rows
}

func insertRow(rows []rowState, at int, row rowState) []rowState {
	if at < 0 {
		at = 0
	}
	if at > len(rows) {
		at = len(rows)
	}
	rows = append(rows, rowState{})
	copy(rows[at+1:], rows[at:])
	rows[at] = row
	return rows
}

func deleteRow(rows []rowState, at int) []rowState {
	if at < 0 || at >= len(rows) {
		return rows
	}
	return append(rows[:at], rows[at+1:]...)
}

// finalizeColumns performs the column->row transpose (spec §4.5.1) over
// columns using rows as the row list, reusing a single C-byte scratch
// buffer across all R rows (spec §4.5.1's O(R*C), not O(R*C^2),
// requirement), encodes each row's bases, and resolves the reference row
// (spec §4.2).
func (rc *Reconstructor) finalizeColumns(rows []rowState, columns []string) *block.Block {
	r := len(rows)
	c := len(columns)

	// Expand RLE once per column, not once per (row, column) pair.
	expanded := columns
	if rc.header.RunLengthEncodeBases {
		expanded = make([]string, c)
		for i, col := range columns {
			expanded[i] = ExpandRLE(col)
		}
	}

	blockRows := make([]block.Row, r)
	scratch := make([]byte, c)
	for rowIdx := 0; rowIdx < r; rowIdx++ {
		for colIdx, col := range expanded {
			if rowIdx < len(col) {
				scratch[colIdx] = col[rowIdx]
			} else {
				scratch[colIdx] = '-'
			}
		}
		blockRows[rowIdx] = block.Row{
			AssemblyName: rows[rowIdx].assemblyName,
			Chr:          rows[rowIdx].chr,
			Start:        rows[rowIdx].start,
			SrcSize:      rows[rowIdx].srcSize,
			Strand:       rows[rowIdx].strand,
			Seq:          seq.Encode(scratch),
		}
	}

	b := &block.Block{Rows: blockRows}
	_ = block.ResolveReference(b, rc.refAssemblyName, rc.queryAssemblyName)
	return b
}

// finalize finalizes the block whose columns are rc.columnAccumulator, using
// the row list that was current for those columns -- i.e. rc.rows as of just
// before step() advances it for the next block. Call sites in step always
// call finalize() before mutating rc.rows.
func (rc *Reconstructor) finalize() *block.Block {
	return rc.finalizeColumns(rc.rows, rc.columnAccumulator)
}
