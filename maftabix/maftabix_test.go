package maftabix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GMOD/maf-go/seq"
)

// S5 from spec §8.
func TestDecodeS5(t *testing.T) {
	r := Row{
		RefName: "chr1",
		Start:   100,
		End:     104,
		Field5:  "hg38.chr1:100:1000:+:0:ACGT,mm10.chr1:200:2000:-:0:A-GT",
	}
	b, err := Decode(r, "", "hg38")
	require.NoError(t, err)
	require.Len(t, b.Rows, 2)
	assert.Equal(t, "hg38", b.RefAssembly)
	assert.Equal(t, "ACGT", string(seq.Decode(b.RefSeq)))
	assert.Equal(t, "mm10", b.Rows[1].AssemblyName)
	assert.Equal(t, "A-GT", string(seq.Decode(b.Rows[1].Seq)))
}

func TestDecodeMalformedTupleSkipped(t *testing.T) {
	r := Row{Field5: "hg38.chr1:100:1000:+:0:ACGT,garbage"}
	b, err := Decode(r, "", "")
	require.NoError(t, err)
	require.Len(t, b.Rows, 1)
}

func TestDecodeNoRowsFailsResolution(t *testing.T) {
	r := Row{Field5: ""}
	_, err := Decode(r, "", "")
	assert.Error(t, err)
}
