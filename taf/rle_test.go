package taf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandRLE(t *testing.T) {
	assert.Equal(t, "AAACCGT", ExpandRLE("A3C2G1T1"))
}

func TestExpandRLEMalformedFallsBackToLiteral(t *testing.T) {
	assert.Equal(t, "ACGT", ExpandRLE("ACGT"))
}

func TestExpandRLEZeroCountExpandsToNothing(t *testing.T) {
	assert.Equal(t, "", ExpandRLE("A0"))
	assert.Equal(t, "CGT", ExpandRLE("A0C1G1T1"))
}
