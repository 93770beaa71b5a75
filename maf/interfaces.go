// Package maf is the unified streaming query driver (spec §4.9): the
// single logical front door dispatching a region query to the TAF, BigMaf,
// or MafTabix decoder depending on which adapter a Config names, producing
// a lazy, O(one block) block.Block stream.
package maf

import (
	"context"

	"github.com/GMOD/maf-go/block"
	"github.com/GMOD/maf-go/region"
)

// Region is a query region: a genomic interval plus the querying
// assembly's name, which feeds the reference-resolution cascade (spec
// §4.2's "(2) the assemblyName of the query region").
type Region struct {
	region.Region
	AssemblyName string
}

// CompressedFileReader is the external collaborator that owns BGZF
// decompression (spec §1's explicit out-of-scope list). ReadRange reads
// length compressed bytes starting at fileOffset and returns the
// decompressed bytes they expand to -- potentially spanning several bgzf
// blocks, matching the TAF path's "read enough compressed blocks to cover
// the interval" formula (spec §4.9 step 2).
type CompressedFileReader interface {
	ReadRange(ctx context.Context, fileOffset int64, length int) ([]byte, error)
}

// BigBedFeature is one result of a BigBedQuery (spec §1: "interval ->
// iterator of {start, end, extraColumn}").
type BigBedFeature struct {
	Start, End  uint32
	ExtraColumn string
}

// BigBedQuery is the external BigBed R-tree lookup capability (spec §1,
// §4.9's "invoke external BigBed R-tree query").
type BigBedQuery interface {
	Query(ctx context.Context, refName string, start, end uint32) (BigBedIterator, error)
}

// BigBedIterator yields BigBedFeature values in refStart-ascending order.
type BigBedIterator interface {
	Next() (BigBedFeature, bool, error)
}

// TabixRow is one BED-like row of a TabixQuery result; Field5 carries the
// packed MafTabix alignment tuples (spec §4.7).
type TabixRow struct {
	RefName    string
	Start, End uint32
	Field5     string
}

// TabixQuery is the external Tabix row-iteration capability (spec §1,
// §4.9's "invoke external Tabix query").
type TabixQuery interface {
	Query(ctx context.Context, refName string, start, end uint32) (TabixIterator, error)
}

// TabixIterator yields TabixRow values in refStart-ascending order.
type TabixIterator interface {
	Next() (TabixRow, bool, error)
}

// BlockIterator is the lazy block sequence every query path produces
// (spec §1's `MafBlockSource` capability: `query(region) ->
// LazySequence<AlignmentBlock>`).
type BlockIterator interface {
	// Next returns the next block in refStart-ascending order, or ok=false
	// once the sequence is exhausted. A non-nil error is terminal (spec
	// §7: I/O failure surfaces as "a single terminal error on the
	// sequence"); callers must stop calling Next after an error.
	Next() (*block.Block, bool, error)
}

// MafBlockSource is the capability the core exposes (spec §1).
type MafBlockSource interface {
	Query(ctx context.Context, region Region) (BlockIterator, error)
}
