// Package tai parses .tai index files and answers the TAF block
// reconstructor's (refName, qStart, qEnd) -> (firstEntry, nextEntry)
// lookup (spec §4.3).
//
// The sorted-slice-plus-binary-search design mirrors the teacher's
// encoding/bam/gindex.go (GIndex/GIndexEntry/RecordOffset), which answers
// the same kind of question -- "which virtual offset should I seek to for
// this genomic position" -- for the .gbai format. The virtual-offset bit
// algebra (block position in the high bits, data position in the low 16)
// mirrors gindex.go's ToBGZFOffset/toVOffset and index.go's
// toOffset/fromOffset.
package tai

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/biogo/hts/bgzf"
	"github.com/pkg/errors"
)

// Entry is one row of a .tai file, fully resolved to absolute values (the
// '*'-relative-delta rows, spec §4.3/§6, are resolved while parsing).
type Entry struct {
	ChrStart uint32
	Offset   bgzf.Offset
}

// VOffset packs an Entry's offset the way .tai stores it on disk: block
// position in bits 16 and up, data position in the low 16 bits. This is the
// same layout as encoding/bam/index.go's toOffset/fromOffset.
func VOffset(e Entry) uint64 {
	return uint64(e.Offset.File)<<16 | uint64(e.Offset.Block)
}

func toOffset(voffset uint64) bgzf.Offset {
	return bgzf.Offset{File: int64(voffset >> 16), Block: uint16(voffset)}
}

// Index is a parsed .tai file: a sorted, per-refName array of entries.
type Index struct {
	byRef map[string][]Entry
}

// Parse reads a .tai file from r. Lines are tab-separated (chr, chrStart,
// virtualOffset); a literal '*' in the chr column means "same as the
// previous line's absolute values, with the given deltas applied" (spec
// §4.3, §6). A fully-qualified chr column (e.g. "assembly.chrX") has its
// assembly prefix stripped: the canonical refName is the substring after the
// last '.'.
func Parse(r io.Reader) (*Index, error) {
	idx := &Index{byRef: make(map[string][]Entry)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, 1<<20)

	var havePrev bool
	var prevRef string
	var prevChrStart uint32
	var prevVOffset uint64

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 3 {
			return nil, errors.Errorf("tai: line %d: expected 3 tab-separated fields, got %d", lineNo, len(fields))
		}

		var refName string
		var chrStart uint32
		var voffset uint64

		if fields[0] == "*" {
			if !havePrev {
				return nil, errors.Errorf("tai: line %d: relative row with no preceding absolute row", lineNo)
			}
			deltaStart, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "tai: line %d: bad relative chrStart", lineNo)
			}
			deltaVOff, err := strconv.ParseInt(fields[2], 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "tai: line %d: bad relative virtualOffset", lineNo)
			}
			refName = prevRef
			chrStart = uint32(int64(prevChrStart) + deltaStart)
			voffset = uint64(int64(prevVOffset) + deltaVOff)
		} else {
			chr := fields[0]
			if i := strings.LastIndexByte(chr, '.'); i >= 0 {
				chr = chr[i+1:]
			}
			start, err := strconv.ParseUint(fields[1], 10, 32)
			if err != nil {
				return nil, errors.Wrapf(err, "tai: line %d: bad chrStart", lineNo)
			}
			off, err := strconv.ParseUint(fields[2], 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "tai: line %d: bad virtualOffset", lineNo)
			}
			refName = chr
			chrStart = uint32(start)
			voffset = off
		}

		idx.byRef[refName] = append(idx.byRef[refName], Entry{ChrStart: chrStart, Offset: toOffset(voffset)})
		havePrev = true
		prevRef, prevChrStart, prevVOffset = refName, chrStart, voffset
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "tai: reading index")
	}

	for ref, entries := range idx.byRef {
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].ChrStart < entries[j].ChrStart })
		idx.byRef[ref] = entries
	}
	return idx, nil
}

// Lookup returns the (firstEntry, nextEntry) pair bracketing [qStart, qEnd)
// on refName, per spec §4.3. ok is false if refName has no entries at all
// (spec §4.5.4: ".tai missing the refName -> yield an empty sequence").
func (idx *Index) Lookup(refName string, qStart, qEnd uint32) (first, next Entry, ok bool) {
	entries, present := idx.byRef[refName]
	if !present || len(entries) == 0 {
		return Entry{}, Entry{}, false
	}

	// i = lower_bound(entries, qStart); first = entries[max(i-1, 0)].
	// The entry at i-1 is the last whose chrStart < qStart, i.e. the block
	// that may still contain the start position.
	i := sort.Search(len(entries), func(k int) bool { return entries[k].ChrStart >= qStart })
	firstIdx := i - 1
	if firstIdx < 0 {
		firstIdx = 0
	}
	first = entries[firstIdx]

	// j = lower_bound(entries, qEnd); next = entries[j+1] if present, else last.
	j := sort.Search(len(entries), func(k int) bool { return entries[k].ChrStart >= qEnd })
	nextIdx := j + 1
	if nextIdx >= len(entries) {
		nextIdx = len(entries) - 1
	}
	next = entries[nextIdx]

	return first, next, true
}
