package expr

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// UnmappedPolicy decides what happens to quantified transcripts that have no
// entry in the transcript-gene map. There is no sensible silent default, so
// callers set it explicitly.
type UnmappedPolicy int

const (
	// UnmappedDrop drops unmapped transcripts; Aggregate reports how many.
	UnmappedDrop UnmappedPolicy = iota
	// UnmappedBucket sums unmapped transcripts under a single pseudo-gene.
	UnmappedBucket
	// UnmappedStrict fails on the first unmapped transcript.
	UnmappedStrict
)

// DefaultBucketGene is the pseudo-gene used by UnmappedBucket when
// AggregateConf.BucketGene is left empty.
const DefaultBucketGene = "__unmapped__"

// AggregateConf holds parameters for Aggregate.
type AggregateConf struct {
	Unmapped   UnmappedPolicy
	BucketGene string
}

// AbundanceVector is an ordered mapping from gene identifier to TPM for one
// sample. Key order is first-seen order from the aggregation input and is
// stable across runs.
type AbundanceVector struct {
	order []string
	tpm   map[string]float64
}

// Aggregate groups per-transcript TPM records by their mapped gene and sums
// them into per-gene TPM. The returned count is the number of records dropped
// under UnmappedDrop (always zero for the other policies).
func Aggregate(recs []QuantRecord, t2g *TranscriptGeneMap, conf AggregateConf) (*AbundanceVector, int, error) {
	bucket := conf.BucketGene
	if bucket == "" {
		bucket = DefaultBucketGene
	}

	vec := &AbundanceVector{tpm: map[string]float64{}}
	dropped := 0
	for _, rec := range recs {
		geneID, ok := t2g.GeneID(rec.TranscriptID)
		if !ok {
			switch conf.Unmapped {
			case UnmappedDrop:
				dropped++
				continue
			case UnmappedBucket:
				geneID = bucket
			case UnmappedStrict:
				return nil, 0, &UnmappedTranscriptError{TranscriptID: rec.TranscriptID}
			default:
				return nil, 0, fmt.Errorf("unknown unmapped-transcript policy %d", conf.Unmapped)
			}
		}
		if _, seen := vec.tpm[geneID]; !seen {
			vec.order = append(vec.order, geneID)
		}
		vec.tpm[geneID] += rec.TPM
	}
	return vec, dropped, nil
}

// NewAbundanceVector builds a vector from parallel gene and value slices,
// mostly for tests and for reading vectors back from disk.
func NewAbundanceVector(genes []string, values []float64) (*AbundanceVector, error) {
	if len(genes) != len(values) {
		return nil, &ShapeMismatchError{Label: "abundance values", Want: len(genes), Got: len(values)}
	}
	vec := &AbundanceVector{tpm: make(map[string]float64, len(genes))}
	for i, g := range genes {
		if _, seen := vec.tpm[g]; seen {
			return nil, fmt.Errorf("duplicate gene %s in abundance vector", g)
		}
		vec.order = append(vec.order, g)
		vec.tpm[g] = values[i]
	}
	return vec, nil
}

// Genes returns the gene identifiers in vector order.
func (v *AbundanceVector) Genes() []string {
	out := make([]string, len(v.order))
	copy(out, v.order)
	return out
}

// Value returns the TPM for gene.
func (v *AbundanceVector) Value(gene string) (float64, bool) {
	t, ok := v.tpm[gene]
	return t, ok
}

// Values returns the TPM values in vector order.
func (v *AbundanceVector) Values() []float64 {
	out := make([]float64, len(v.order))
	for i, g := range v.order {
		out[i] = v.tpm[g]
	}
	return out
}

// Len returns the number of genes.
func (v *AbundanceVector) Len() int {
	return len(v.order)
}

// Sum returns the total TPM across all genes.
func (v *AbundanceVector) Sum() float64 {
	s := 0.0
	for _, t := range v.tpm {
		s += t
	}
	return s
}

// TopGenes returns the n genes with the highest TPM, highest first. Ties are
// broken by gene identifier so the result is stable.
func (v *AbundanceVector) TopGenes(n int) []string {
	genes := v.Genes()
	sort.SliceStable(genes, func(i, j int) bool {
		ti, tj := v.tpm[genes[i]], v.tpm[genes[j]]
		if ti != tj {
			return ti > tj
		}
		return genes[i] < genes[j]
	})
	if n > len(genes) {
		n = len(genes)
	}
	return genes[:n]
}

// WriteTSV writes the vector as two tab-separated columns (gene, tpm) in
// vector order.
func (v *AbundanceVector) WriteTSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, g := range v.order {
		if _, err := fmt.Fprintf(bw, "%s\t%s\n", g, strconv.FormatFloat(v.tpm[g], 'g', -1, 64)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadAbundanceTSV reads a two-column (gene, tpm) tab-separated vector,
// preserving row order.
func ReadAbundanceTSV(r io.Reader) (*AbundanceVector, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = 2

	vec := &AbundanceVector{tpm: map[string]float64{}}
	line := 0
	for {
		line++
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &MalformedInputError{Line: line, Msg: err.Error()}
		}
		t, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, &MalformedInputError{Line: line, Msg: "unparseable tpm value " + record[1]}
		}
		if _, seen := vec.tpm[record[0]]; seen {
			return nil, &MalformedInputError{Line: line, Msg: "duplicate gene " + record[0]}
		}
		vec.order = append(vec.order, record[0])
		vec.tpm[record[0]] = t
	}
	return vec, nil
}
