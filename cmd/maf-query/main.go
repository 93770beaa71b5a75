// See doc.go for documentation.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/grailbio/base/grail"

	"github.com/GMOD/maf-go/adapters/bgzfreader"
	"github.com/GMOD/maf-go/adapters/tabixreader"
	"github.com/GMOD/maf-go/encoding/fasta"
	"github.com/GMOD/maf-go/maf"
	"github.com/GMOD/maf-go/region"
)

var (
	tafGzLocation = flag.String("taf", "", "path to a .taf.gz alignment file")
	taiLocation   = flag.String("tai", "", "path to the .tai index for -taf")
	bedGzLocation = flag.String("bedgz", "", "path to a Tabix-indexed .bed.gz MafTabix file")

	refName  = flag.String("ref", "", "reference sequence name")
	start    = flag.Uint("start", 0, "0-based region start")
	end      = flag.Uint("end", 0, "0-based, exclusive region end")
	assembly = flag.String("assembly", "", "querying assembly name, feeds reference resolution")

	format  = flag.String("format", "blocks", "output format: blocks or fasta")
	samples = flag.String("samples", "", "comma-separated sample assembly names, fasta format only")
)

// localTaiOpener opens a .tai sidecar from the local filesystem; the .tai
// format is plain ASCII and read once in full (maf.TaiOpener's contract).
type localTaiOpener struct{ path string }

func (o localTaiOpener) OpenTai(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(o.path)
}

func main() {
	shutdown := grail.Init()
	defer shutdown()
	flag.Parse()

	if *refName == "" || *end <= *start {
		fmt.Fprintln(os.Stderr, "maf-query: -ref, -start, and -end (start < end) are required")
		os.Exit(2)
	}

	src, err := newSource()
	if err != nil {
		panic(err.Error())
	}

	src.StatusCallback = func(phase string) {
		fmt.Fprintln(os.Stderr, "maf-query:", phase)
	}

	ctx := context.Background()
	rgn := maf.Region{
		Region:       region.Region{RefName: *refName, Start: uint32(*start), End: uint32(*end)},
		AssemblyName: *assembly,
	}

	it, err := src.Query(ctx, rgn)
	if err != nil {
		panic(err.Error())
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	switch *format {
	case "blocks":
		err = printBlocks(out, it)
	case "fasta":
		err = printFasta(out, it, uint32(*start), uint32(*end))
	default:
		err = fmt.Errorf("maf-query: unknown -format %q (want blocks or fasta)", *format)
	}
	if err != nil {
		panic(err.Error())
	}
}

func newSource() (*maf.Source, error) {
	cfg := maf.Config{
		TafGzLocation:   *tafGzLocation,
		TaiLocation:     *taiLocation,
		BedGzLocation:   *bedGzLocation,
		RefAssemblyName: *assembly,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	src := &maf.Source{Config: cfg}
	if cfg.TafGzLocation != "" {
		src.Reader = bgzfreader.New(cfg.TafGzLocation)
		src.TaiOpener = localTaiOpener{path: cfg.TaiLocation}
	}
	if cfg.BedGzLocation != "" {
		r, err := tabixreader.New(cfg.BedGzLocation)
		if err != nil {
			return nil, err
		}
		src.Tabix = r
	}
	return src, nil
}

func printBlocks(w io.Writer, it maf.BlockIterator) error {
	for {
		b, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		fmt.Fprintf(w, "%s:%d-%d\n", b.RefName, b.RefStart, b.RefEnd)
		for _, row := range b.Rows {
			fmt.Fprintf(w, "  %s.%s\t%d\t%d\t%c\n", row.AssemblyName, row.Chr, row.Start, row.SrcSize, strandChar(row.Strand))
		}
	}
}

func strandChar(s int8) byte {
	if s < 0 {
		return '-'
	}
	return '+'
}

func printFasta(w io.Writer, it maf.BlockIterator, rs, re uint32) error {
	var sampleIDs []string
	if *samples != "" {
		sampleIDs = strings.Split(*samples, ",")
	}
	seqs, err := fasta.MaterializeRegion(it, rs, re, sampleIDs, fasta.Options{ShowAllLetters: true, IncludeInsertions: true})
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(seqs))
	for id := range seqs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		fmt.Fprintf(w, ">%s\n%s\n", id, seqs[id])
	}
	return nil
}
