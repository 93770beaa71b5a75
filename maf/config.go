package maf

import "github.com/pkg/errors"

// Sample is one entry of Config.Samples in its long form (spec §6:
// "samples -- either string[] or {id, label?, color?}[]").
type Sample struct {
	ID    string
	Label string
	Color string
}

// Config is the enumerated configuration surface from spec §6.
type Config struct {
	// TafGzLocation/TaiLocation select the TAF adapter.
	TafGzLocation string
	TaiLocation   string

	// BigBedLocation selects the BigMaf adapter.
	BigBedLocation string

	// BedGzLocation/IndexLocation select the MafTabix adapter.
	BedGzLocation string
	IndexLocation string

	// Samples is the display order / filter list; nil means "all samples,
	// source order."
	Samples []Sample

	// NHLocation is an optional Newick tree location; not interpreted by
	// this core (spec §1's "Newick tree parsing" is out of scope), carried
	// only so callers have one place to configure a companion tree viewer.
	NHLocation string

	// RefAssemblyName is the reference-resolution override (spec §4.2).
	RefAssemblyName string
}

// Validate checks that Config names exactly one physical adapter, mirroring
// the teacher's bamprovider.BAMProvider requiring a nonempty Path: a
// Source with no adapter configured can never answer a query, so this is
// caught at construction rather than surfacing as an empty-sequence result
// indistinguishable from "no alignments here."
func (c Config) Validate() error {
	n := 0
	if c.TafGzLocation != "" {
		n++
	}
	if c.BigBedLocation != "" {
		n++
	}
	if c.BedGzLocation != "" {
		n++
	}
	switch n {
	case 0:
		return errors.New("maf: Config must set one of TafGzLocation, BigBedLocation, or BedGzLocation")
	case 1:
		return nil
	default:
		return errors.New("maf: Config must set exactly one of TafGzLocation, BigBedLocation, or BedGzLocation")
	}
}

func (c Config) isTAF() bool    { return c.TafGzLocation != "" }
func (c Config) isBigMaf() bool { return c.BigBedLocation != "" }
func (c Config) isTabix() bool  { return c.BedGzLocation != "" }

// SampleIDs returns the configured sample ID list in display order, or nil
// if Samples is empty (meaning "all samples, source order" -- used by the
// fasta materializer, spec §4.10).
func (c Config) SampleIDs() []string {
	if len(c.Samples) == 0 {
		return nil
	}
	ids := make([]string, len(c.Samples))
	for i, s := range c.Samples {
		ids[i] = s.ID
	}
	return ids
}
