package tai

import (
	"strings"
	"testing"

	"github.com/biogo/hts/bgzf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func off(file int64, block uint16) bgzf.Offset {
	return bgzf.Offset{File: file, Block: block}
}

func TestParseAbsolute(t *testing.T) {
	data := "ce10.chrI\t0\t0\nce10.chrI\t1000\t131072\n"
	idx, err := Parse(strings.NewReader(data))
	require.NoError(t, err)

	first, next, ok := idx.Lookup("chrI", 0, 500)
	require.True(t, ok)
	assert.Equal(t, uint32(0), first.ChrStart)
	assert.Equal(t, off(0, 0), first.Offset)
	assert.Equal(t, uint32(1000), next.ChrStart)
	assert.Equal(t, off(2, 0), next.Offset)
}

func TestParseRelativeDelta(t *testing.T) {
	// Second line is relative: chrStart += 500, virtualOffset += 65536.
	data := "chr1\t100\t65536\n*\t500\t65536\n"
	idx, err := Parse(strings.NewReader(data))
	require.NoError(t, err)

	entries := idx.byRef["chr1"]
	require.Len(t, entries, 2)
	assert.Equal(t, uint32(600), entries[1].ChrStart)
	assert.Equal(t, off(2, 0), entries[1].Offset)
}

func TestParseQualifiedChrTakesSuffixAfterLastDot(t *testing.T) {
	data := "ce10.chrI\t0\t0\n"
	idx, err := Parse(strings.NewReader(data))
	require.NoError(t, err)
	_, _, ok := idx.Lookup("chrI", 0, 10)
	assert.True(t, ok)
	_, _, ok = idx.Lookup("ce10.chrI", 0, 10)
	assert.False(t, ok)
}

func TestLookupMissingRefNameIsNotAnError(t *testing.T) {
	idx, err := Parse(strings.NewReader("chr1\t0\t0\n"))
	require.NoError(t, err)
	_, _, ok := idx.Lookup("chrZ", 0, 10)
	assert.False(t, ok)
}

func TestLookupSingleEntry(t *testing.T) {
	idx, err := Parse(strings.NewReader("chr1\t0\t0\n"))
	require.NoError(t, err)
	first, next, ok := idx.Lookup("chr1", 10, 20)
	require.True(t, ok)
	assert.Equal(t, uint32(0), first.ChrStart)
	assert.Equal(t, uint32(0), next.ChrStart)
}

func TestLookupQueryEntirelyAfterLastEntry(t *testing.T) {
	data := "chr1\t0\t0\nchr1\t100\t65536\n"
	idx, err := Parse(strings.NewReader(data))
	require.NoError(t, err)
	first, next, ok := idx.Lookup("chr1", 1000, 2000)
	require.True(t, ok)
	assert.Equal(t, uint32(100), first.ChrStart)
	assert.Equal(t, uint32(100), next.ChrStart)
}

func TestParseRelativeWithoutPrecedingAbsoluteRowFails(t *testing.T) {
	_, err := Parse(strings.NewReader("*\t100\t0\n"))
	assert.Error(t, err)
}

func TestParseMalformedLine(t *testing.T) {
	_, err := Parse(strings.NewReader("chr1\t0\n"))
	assert.Error(t, err)
}
