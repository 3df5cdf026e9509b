package components

import (
	"bytes"
	"fmt"

	sp "github.com/scipipe/scipipe"

	"github.com/sjspielman/deconv/decon"
	"github.com/sjspielman/deconv/expr"
)

// HarmonizeReference zero-pads a reference profile to cover the expression
// matrix's gene set and records the pre-padding signature gene list.
type HarmonizeReference struct {
	*sp.Process
}

// NewHarmonizeReference returns a new HarmonizeReference process
func NewHarmonizeReference(wf *sp.Workflow, name string) *HarmonizeReference {
	p := wf.NewProc(name, "# {i:matrix} {i:reference} {o:harmonized} {o:signature}")
	p.SetOut("harmonized", "{i:reference}.harmonized.tsv")
	p.SetOut("signature", "{i:reference}.signature.txt")
	p.CustomExecute = func(t *sp.Task) {
		m, err := expr.ReadMatrixTSV(bytes.NewReader(t.InIP("matrix").Read()))
		if err != nil {
			sp.Error.Fatalf("%s: %v", name, err)
		}
		ref, err := decon.ReadReference(bytes.NewReader(t.InIP("reference").Read()))
		if err != nil {
			sp.Error.Fatalf("%s: %v", name, err)
		}
		padded, signature := decon.Harmonize(ref, m.Genes())

		var refBuf bytes.Buffer
		if err := padded.WriteTSV(&refBuf); err != nil {
			sp.Error.Fatalf("%s: %v", name, err)
		}
		t.OutIP("harmonized").Write(refBuf.Bytes())

		var sigBuf bytes.Buffer
		for _, g := range signature {
			fmt.Fprintln(&sigBuf, g)
		}
		t.OutIP("signature").Write(sigBuf.Bytes())
	}
	return &HarmonizeReference{p}
}

// InMatrix returns the expression-matrix in-port
func (p *HarmonizeReference) InMatrix() *sp.InPort {
	return p.In("matrix")
}

// InReference returns the reference-table in-port
func (p *HarmonizeReference) InReference() *sp.InPort {
	return p.In("reference")
}

// OutHarmonized returns the harmonized-reference out-port
func (p *HarmonizeReference) OutHarmonized() *sp.OutPort {
	return p.Out("harmonized")
}

// OutSignatureGenes returns the signature-gene-list out-port
func (p *HarmonizeReference) OutSignatureGenes() *sp.OutPort {
	return p.Out("signature")
}
