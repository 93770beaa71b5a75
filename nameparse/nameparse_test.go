package nameparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimple(t *testing.T) {
	a, c := Simple("hg38.chr1")
	assert.Equal(t, "hg38", a)
	assert.Equal(t, "chr1", c)

	a, c = Simple("hg38.chr1.alt")
	assert.Equal(t, "hg38", a)
	assert.Equal(t, "chr1.alt", c)

	a, c = Simple("noDot")
	assert.Equal(t, "noDot", a)
	assert.Equal(t, "", c)
}

func TestHeuristicNumericMiddleIsVersion(t *testing.T) {
	a, c := Heuristic("assembly.2.chr2")
	assert.Equal(t, "assembly.2", a)
	assert.Equal(t, "chr2", c)
}

func TestHeuristicNonNumericMiddleUsesFirstDot(t *testing.T) {
	a, c := Heuristic("hg38.chr1.extra")
	assert.Equal(t, "hg38", a)
	assert.Equal(t, "chr1.extra", c)
}

func TestHeuristicZeroOrOneDotMatchesSimple(t *testing.T) {
	a, c := Heuristic("hg38.chr1")
	assert.Equal(t, "hg38", a)
	assert.Equal(t, "chr1", c)

	a, c = Heuristic("noDot")
	assert.Equal(t, "noDot", a)
	assert.Equal(t, "", c)
}

func TestHeuristicKnownMisclassification(t *testing.T) {
	// Documented in spec §9: "asm.2.2" is indistinguishable from
	// "asm.<version 2>.chr2" under this heuristic.
	a, c := Heuristic("asm.2.2")
	assert.Equal(t, "asm.2", a)
	assert.Equal(t, "2", c)
}
