package taf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GMOD/maf-go/seq"
)

func decodeStr(s seqS) string { return string(seq.Decode(s)) }

type seqS = seq.S

// S1 from spec §8: minimal TAF, 2 rows, 3 columns.
func TestReconstructorS1(t *testing.T) {
	body := "ACGT ; i 0 hg38.chr1 100 + 1000 i 1 mm10.chr1 200 + 2000\nACGT\nACGT\n"
	rc := NewReconstructor(strings.NewReader(body), Header{}, "", "", 0, 1000)

	b, ok, err := rc.Next()
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "hg38.chr1", joinAssemblyChr(b.RefAssembly, b.RefName))
	assert.Equal(t, uint32(100), b.RefStart)
	assert.Equal(t, uint32(103), b.RefEnd)
	require.Len(t, b.Rows, 2)
	assert.Equal(t, "AAA", decodeStr(b.Rows[0].Seq))
	assert.Equal(t, "CCC", decodeStr(b.Rows[1].Seq))

	_, ok, err = rc.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func joinAssemblyChr(assembly, chr string) string { return assembly + "." + chr }

// S2 from spec §8: a gap instruction advances one row's start by a further
// delta, on top of the automatic non-gap-count advance.
func TestReconstructorS2Gap(t *testing.T) {
	body := "ACGT ; i 0 hg38.chr1 100 + 1000 i 1 mm10.chr1 200 + 2000\n" +
		"ACGT\nACGT\n" +
		"AC ; g 1 50\n" +
		"AC\n"
	rc := NewReconstructor(strings.NewReader(body), Header{}, "", "", 0, 10000)

	first, ok, err := rc.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint32(100), first.RefStart)

	second, ok, err := rc.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, second.Rows, 2)
	assert.Equal(t, uint32(103), second.Rows[0].Start) // hg38: 100 + nonGap(AAA=3)
	assert.Equal(t, uint32(253), second.Rows[1].Start) // mm10: 200 + 3 + 50
}

// S3 from spec §8: delete removes a row; its bases do not appear downstream.
func TestReconstructorS3Delete(t *testing.T) {
	body := "ABC ; i 0 a.chr1 0 + 100 i 1 b.chr1 0 + 100 i 2 c.chr1 0 + 100\n" +
		"ABC\n" +
		"AB ; d 2\n" +
		"AB\n"
	rc := NewReconstructor(strings.NewReader(body), Header{}, "a", "", 0, 10000)

	first, ok, err := rc.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, first.Rows, 3)

	second, ok, err := rc.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, second.Rows, 2)
	assert.Equal(t, "a", second.Rows[0].AssemblyName)
	assert.Equal(t, "b", second.Rows[1].AssemblyName)
}

func TestReconstructorQueryRangeFilter(t *testing.T) {
	body := "AA ; i 0 a.chr1 0 + 100\n" +
		"AA ; g 0 1000\n" +
		"AA ; g 0 1000\n"
	// Query range only overlaps the first block.
	rc := NewReconstructor(strings.NewReader(body), Header{}, "", "", 0, 5)

	b, ok, err := rc.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint32(0), b.RefStart)

	_, ok, err = rc.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReconstructorEOFMidBlockStillYields(t *testing.T) {
	body := "AA ; i 0 a.chr1 0 + 100\nAA\n"
	rc := NewReconstructor(strings.NewReader(body), Header{}, "", "", 0, 1000)
	b, ok, err := rc.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, len(b.Rows))
}

// Each column's bases token is itself RLE-encoded ("A1C1" -> "AC"); with 2
// rows that expands to one character per row per column, same as the
// non-RLE case (spec §4.5.2 contrasts RLE against "each column is one
// character per row" -- RLE changes how a column's token is spelled, not
// the per-row semantics).
func TestReconstructorRunLengthEncodedBases(t *testing.T) {
	h := Header{RunLengthEncodeBases: true}
	body := "A1C1 ; i 0 a.chr1 0 + 100 i 1 b.chr1 0 + 100\nA1C1\n"
	rc := NewReconstructor(strings.NewReader(body), h, "", "", 0, 1000)
	b, ok, err := rc.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, b.Rows, 2)
	assert.Equal(t, "AA", decodeStr(b.Rows[0].Seq))
	assert.Equal(t, "CC", decodeStr(b.Rows[1].Seq))
}
