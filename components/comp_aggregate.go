package components

import (
	"bytes"

	sp "github.com/scipipe/scipipe"

	"github.com/sjspielman/deconv/expr"
)

// AggregateQuant aggregates a per-transcript quantification file to per-gene
// TPM using a transcript-to-gene map, writing a two-column abundance vector.
type AggregateQuant struct {
	*sp.Process
}

// AggregateQuantConf contains parameters for initializing an AggregateQuant
// process. Unmapped must be set deliberately; there is no assumed default
// beyond the zero value.
type AggregateQuantConf struct {
	Unmapped   expr.UnmappedPolicy
	BucketGene string
}

// NewAggregateQuant returns a new AggregateQuant process
func NewAggregateQuant(wf *sp.Workflow, name string, params AggregateQuantConf) *AggregateQuant {
	p := wf.NewProc(name, "# {i:quant} {i:t2g} {o:abundance}")
	p.SetOut("abundance", "{i:quant}.gene_tpm.tsv")
	p.CustomExecute = func(t *sp.Task) {
		recs, err := expr.ParseQuant(bytes.NewReader(t.InIP("quant").Read()))
		if err != nil {
			sp.Error.Fatalf("%s: %v", name, err)
		}
		t2g, err := expr.ParseTranscriptGeneMap(bytes.NewReader(t.InIP("t2g").Read()))
		if err != nil {
			sp.Error.Fatalf("%s: %v", name, err)
		}
		vec, dropped, err := expr.Aggregate(recs, t2g, expr.AggregateConf{
			Unmapped:   params.Unmapped,
			BucketGene: params.BucketGene,
		})
		if err != nil {
			sp.Error.Fatalf("%s: %v", name, err)
		}
		if dropped > 0 {
			sp.Audit.Printf("%s: dropped %d unmapped transcripts", name, dropped)
		}
		var buf bytes.Buffer
		if err := vec.WriteTSV(&buf); err != nil {
			sp.Error.Fatalf("%s: %v", name, err)
		}
		t.OutIP("abundance").Write(buf.Bytes())
	}
	return &AggregateQuant{p}
}

// InQuant returns the quantification-file in-port
func (p *AggregateQuant) InQuant() *sp.InPort {
	return p.In("quant")
}

// InTranscriptGeneMap returns the transcript-gene-map in-port
func (p *AggregateQuant) InTranscriptGeneMap() *sp.InPort {
	return p.In("t2g")
}

// OutAbundance returns the abundance-vector out-port
func (p *AggregateQuant) OutAbundance() *sp.OutPort {
	return p.Out("abundance")
}
