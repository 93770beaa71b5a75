package fasta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GMOD/maf-go/block"
	"github.com/GMOD/maf-go/seq"
)

type fakeIterator struct {
	blocks []*block.Block
	i      int
}

func (it *fakeIterator) Next() (*block.Block, bool, error) {
	if it.i >= len(it.blocks) {
		return nil, false, nil
	}
	b := it.blocks[it.i]
	it.i++
	return b, true, nil
}

func row(assembly, s string) block.Row {
	return block.Row{AssemblyName: assembly, Seq: seq.Encode([]byte(s))}
}

// TestMaterializeRegionS6 is the literal S6 regression from spec.md §8:
// an insertion owned only by a non-visible sample must not widen the
// visible output.
func TestMaterializeRegionS6(t *testing.T) {
	refSeq := seq.Encode([]byte("AC--GTAC"))
	b := &block.Block{
		RefStart: 0,
		RefEnd:   6,
		RefSeq:   refSeq,
		Rows: []block.Row{
			row("a1", "AC--GTAC"),
			row("a2", "AC--GTAC"),
			row("a3", "ACTTGTAC"), // non-visible; owns a real insertion
		},
	}

	it := &fakeIterator{blocks: []*block.Block{b}}
	out, err := MaterializeRegion(it, 0, 6, []string{"a1", "a2"}, Options{IncludeInsertions: true, ShowAllLetters: true})
	require.NoError(t, err)

	assert.Equal(t, "acgtac", out["a1"])
	assert.Equal(t, "acgtac", out["a2"])
	assert.Len(t, out["a1"], 6)
	assert.Len(t, out["a2"], 6)
	_, ok := out["a3"]
	assert.False(t, ok, "non-visible sample must not appear in the output")
}

func TestMaterializeRegionIncludeInsertionsExpandsVisibleInsertion(t *testing.T) {
	refSeq := seq.Encode([]byte("AC--GTAC"))
	b := &block.Block{
		RefStart: 0,
		RefEnd:   6,
		RefSeq:   refSeq,
		Rows: []block.Row{
			row("ref", "AC--GTAC"),
			row("s1", "ACTTGTAC"),
		},
	}

	it := &fakeIterator{blocks: []*block.Block{b}}
	out, err := MaterializeRegion(it, 0, 6, []string{"ref", "s1"}, Options{IncludeInsertions: true, ShowAllLetters: true})
	require.NoError(t, err)

	assert.Equal(t, "ac--gtac", out["ref"])
	assert.Equal(t, "acttgtac", out["s1"])
}

func TestMaterializeRegionNoGapsIncludeInsertionsEqualsWithout(t *testing.T) {
	refSeq := seq.Encode([]byte("ACGTAC"))
	b := &block.Block{
		RefStart: 0,
		RefEnd:   6,
		RefSeq:   refSeq,
		Rows: []block.Row{
			row("ref", "ACGTAC"),
			row("s1", "ACGAAC"),
		},
	}

	withIns, err := MaterializeRegion(&fakeIterator{blocks: []*block.Block{b}}, 0, 6, []string{"ref", "s1"}, Options{IncludeInsertions: true})
	require.NoError(t, err)
	without, err := MaterializeRegion(&fakeIterator{blocks: []*block.Block{b}}, 0, 6, []string{"ref", "s1"}, Options{IncludeInsertions: false})
	require.NoError(t, err)

	assert.Equal(t, without, withIns)
}

func TestMaterializeRegionMismatchWithoutShowAllLetters(t *testing.T) {
	refSeq := seq.Encode([]byte("ACGT"))
	b := &block.Block{
		RefStart: 0,
		RefEnd:   4,
		RefSeq:   refSeq,
		Rows: []block.Row{
			row("ref", "ACGT"),
			row("s1", "ACTT"),
		},
	}
	it := &fakeIterator{blocks: []*block.Block{b}}
	out, err := MaterializeRegion(it, 0, 4, []string{"ref", "s1"}, Options{})
	require.NoError(t, err)

	assert.Equal(t, "....", out["ref"])
	assert.Equal(t, "..t.", out["s1"])
}

func TestMaterializeRegionNilSampleIDsMeansAllSamples(t *testing.T) {
	refSeq := seq.Encode([]byte("ACGT"))
	b := &block.Block{
		RefStart: 0,
		RefEnd:   4,
		RefSeq:   refSeq,
		Rows: []block.Row{
			row("ref", "ACGT"),
			row("s1", "ACTT"),
			row("s2", "AGGT"),
		},
	}
	it := &fakeIterator{blocks: []*block.Block{b}}
	out, err := MaterializeRegion(it, 0, 4, nil, Options{ShowAllLetters: true})
	require.NoError(t, err)

	assert.Equal(t, "acgt", out["ref"])
	assert.Equal(t, "actt", out["s1"])
	assert.Equal(t, "aggt", out["s2"])
	assert.Len(t, out, 3)
}

func TestMaterializeRegionClipsBlockOutsideRegion(t *testing.T) {
	refSeq := seq.Encode([]byte("ACGTAC"))
	b := &block.Block{
		RefStart: 0,
		RefEnd:   6,
		RefSeq:   refSeq,
		Rows: []block.Row{
			row("ref", "ACGTAC"),
			row("s1", "ACGTAC"),
		},
	}
	it := &fakeIterator{blocks: []*block.Block{b}}
	out, err := MaterializeRegion(it, 2, 5, []string{"ref", "s1"}, Options{ShowAllLetters: true})
	require.NoError(t, err)

	assert.Equal(t, "gta", out["ref"])
	assert.Len(t, out["s1"], 3)
}
