package components

import (
	"bytes"

	sp "github.com/scipipe/scipipe"

	"github.com/sjspielman/deconv/decon"
)

// CompareFractions checks two fraction tables' sample sums and writes a
// small comparison report (per-cell-type differences, correlation).
type CompareFractions struct {
	*sp.Process
}

// CompareFractionsConf contains parameters for initializing a
// CompareFractions process
type CompareFractionsConf struct {
	// SumTolerance bounds how far a sample's fractions may drift from
	// summing to one before the run is aborted.
	SumTolerance float64

	// Tag distinguishes report files when the same fraction table feeds
	// several comparisons.
	Tag string
}

// NewCompareFractions returns a new CompareFractions process
func NewCompareFractions(wf *sp.Workflow, name string, params CompareFractionsConf) *CompareFractions {
	tol := params.SumTolerance
	if tol == 0 {
		tol = 1e-6
	}
	tag := params.Tag
	if tag == "" {
		tag = "b"
	}

	p := wf.NewProc(name, "# {i:fracsa} {i:fracsb} {o:report}")
	p.SetOut("report", "{i:fracsa}.compare."+tag+".txt")
	p.CustomExecute = func(t *sp.Task) {
		fa, err := decon.ReadFractions(bytes.NewReader(t.InIP("fracsa").Read()))
		if err != nil {
			sp.Error.Fatalf("%s: %v", name, err)
		}
		fb, err := decon.ReadFractions(bytes.NewReader(t.InIP("fracsb").Read()))
		if err != nil {
			sp.Error.Fatalf("%s: %v", name, err)
		}
		if err := fa.CheckSumsToOne(tol); err != nil {
			sp.Error.Fatalf("%s: first result: %v", name, err)
		}
		if err := fb.CheckSumsToOne(tol); err != nil {
			sp.Error.Fatalf("%s: second result: %v", name, err)
		}

		cmp := decon.Compare(&decon.Result{Fractions: fa}, &decon.Result{Fractions: fb})
		var buf bytes.Buffer
		if err := cmp.WriteReport(&buf); err != nil {
			sp.Error.Fatalf("%s: %v", name, err)
		}
		t.OutIP("report").Write(buf.Bytes())
	}
	return &CompareFractions{p}
}

// InFractionsA returns the first fraction-table in-port
func (p *CompareFractions) InFractionsA() *sp.InPort {
	return p.In("fracsa")
}

// InFractionsB returns the second fraction-table in-port
func (p *CompareFractions) InFractionsB() *sp.InPort {
	return p.In("fracsb")
}

// OutReport returns the comparison-report out-port
func (p *CompareFractions) OutReport() *sp.OutPort {
	return p.Out("report")
}
