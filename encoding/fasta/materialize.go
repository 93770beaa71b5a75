// Package fasta assembles per-sample gapped sequence strings from an
// alignment-block stream over a query region (spec.md §4.10). Unlike the
// teacher's Fasta interface (Get/Len/SeqNames over a parsed, on-disk FASTA
// file), nothing here reads a standalone FASTA file: every base arrives
// already decoded inside a block.Block, so materialization is a pure
// in-memory fold over that stream.
package fasta

import (
	"github.com/GMOD/maf-go/block"
	"github.com/GMOD/maf-go/maf"
	"github.com/GMOD/maf-go/seq"
)

// Options controls how MaterializeRegion renders each aligned base.
type Options struct {
	// ShowAllLetters writes every base verbatim. When false (the default),
	// a base identical to the reference at that column is collapsed to
	// '.' so mismatches stand out.
	ShowAllLetters bool

	// IncludeInsertions splices reference-gap columns (insertions) back
	// into the output, widened to the longest actual insertion any visible
	// sample carries at that position (spec §4.10 step 3).
	IncludeInsertions bool
}

type run struct {
	bySample map[string][]byte
	maxLen   int
}

// MaterializeRegion drains it and returns one gapped string per sample in
// sampleIDs, each of length re-rs, matching region [rs, re), plus any
// insertion columns spliced in when opts.IncludeInsertions is set. Rows whose
// assembly is not in sampleIDs never enter the fold -- the mechanism by
// which insertions from non-visible samples never widen the output (spec
// §4.10's "critical rule"). A nil or empty sampleIDs means "every sample
// the stream names" (Config.SampleIDs' "nil means all samples" contract),
// discovered as rows arrive rather than known up front.
func MaterializeRegion(it maf.BlockIterator, rs, re uint32, sampleIDs []string, opts Options) (map[string]string, error) {
	if re <= rs {
		return map[string]string{}, nil
	}
	l := int(re - rs)
	allSamples := len(sampleIDs) == 0

	visible := make(map[string]bool, len(sampleIDs))
	for _, id := range sampleIDs {
		visible[id] = true
	}

	vectors := make(map[string][]byte, len(sampleIDs))
	for _, id := range sampleIDs {
		vectors[id] = blankVector(l)
	}

	runs := make(map[uint32]*run)
	var runOrder []uint32

	for {
		b, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		for _, row := range b.Rows {
			if !allSamples && !visible[row.AssemblyName] {
				continue
			}
			vec, present := vectors[row.AssemblyName]
			if !present {
				vec = blankVector(l)
				vectors[row.AssemblyName] = vec
			}
			walkRow(b, row, rs, re, vec, opts, func(anchor uint32, chars []byte) {
				r, ok := runs[anchor]
				if !ok {
					r = &run{bySample: make(map[string][]byte)}
					runs[anchor] = r
					runOrder = append(runOrder, anchor)
				}
				r.bySample[row.AssemblyName] = append([]byte(nil), chars...)
				if len(chars) > r.maxLen {
					r.maxLen = len(chars)
				}
			})
		}
	}

	if opts.IncludeInsertions {
		sortDescending(runOrder)
		for _, anchor := range runOrder {
			r := runs[anchor]
			if r.maxLen == 0 {
				continue
			}
			idx := int(anchor) - int(rs)
			if idx < 0 || idx > l {
				continue
			}
			for id, vec := range vectors {
				padded := make([]byte, r.maxLen)
				chars := r.bySample[id]
				for i := range padded {
					if i < len(chars) {
						padded[i] = chars[i]
					} else {
						padded[i] = '-'
					}
				}
				merged := make([]byte, 0, len(vec)+r.maxLen)
				merged = append(merged, vec[:idx]...)
				merged = append(merged, padded...)
				merged = append(merged, vec[idx:]...)
				vectors[id] = merged
				l = len(merged)
			}
		}
	}

	out := make(map[string]string, len(vectors))
	for id, vec := range vectors {
		out[id] = string(vec)
	}
	return out, nil
}

func blankVector(l int) []byte {
	v := make([]byte, l)
	for i := range v {
		v[i] = '-'
	}
	return v
}

// walkRow walks refSeq and row.Seq in lockstep (spec §4.10 step 2),
// writing match/mismatch/gap bases into vec at reference-relative offsets,
// and reports each insertion run (a maximal span of reference-gap columns)
// to onInsertion, keyed by the reference position the run is anchored
// before.
func walkRow(b *block.Block, row block.Row, rs, re uint32, vec []byte, opts Options, onInsertion func(anchor uint32, chars []byte)) {
	refSeq := b.RefSeq
	if refSeq.Length != row.Seq.Length {
		// Invariant violation (spec §8 property 2): every row's length
		// must equal refSeq's length. Not expected from a conformant
		// decoder; skip this row rather than risk an out-of-bounds write.
		return
	}

	pos := b.RefStart
	var runChars []byte
	runActive := false
	flush := func() {
		if runActive {
			onInsertion(pos, runChars)
			runActive = false
			runChars = nil
		}
	}

	for col := 0; col < refSeq.Length; col++ {
		if seq.IsGap(refSeq, col) {
			if !runActive {
				runActive = true
				runChars = runChars[:0]
			}
			if !seq.IsGap(row.Seq, col) {
				runChars = append(runChars, seq.BaseAtLower(row.Seq, col))
			}
			continue
		}
		flush()

		if pos >= rs && pos < re {
			idx := int(pos - rs)
			vec[idx] = baseAt(refSeq, row.Seq, col, opts.ShowAllLetters)
		}
		pos++
	}
	flush()
}

func baseAt(refSeq, rowSeq seq.S, col int, showAllLetters bool) byte {
	if seq.IsGap(rowSeq, col) {
		return '-'
	}
	base := seq.BaseAtLower(rowSeq, col)
	if showAllLetters {
		return base
	}
	if base == seq.BaseAtLower(refSeq, col) {
		return '.'
	}
	return base
}

func sortDescending(s []uint32) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] < s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
