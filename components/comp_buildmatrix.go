package components

import (
	"bytes"

	sp "github.com/scipipe/scipipe"

	"github.com/sjspielman/deconv/expr"
)

// BuildSampleMatrix reconciles a per-gene abundance vector's identifiers to
// symbols via an annotation table and assembles a one-sample expression
// matrix with symbol row labels.
type BuildSampleMatrix struct {
	*sp.Process
}

// BuildSampleMatrixConf contains parameters for initializing a
// BuildSampleMatrix process
type BuildSampleMatrixConf struct {
	SampleID  string
	IDCol     string
	SymbolCol string
}

// NewBuildSampleMatrix returns a new BuildSampleMatrix process
func NewBuildSampleMatrix(wf *sp.Workflow, name string, params BuildSampleMatrixConf) *BuildSampleMatrix {
	idCol := params.IDCol
	if idCol == "" {
		idCol = "gene_id"
	}
	symCol := params.SymbolCol
	if symCol == "" {
		symCol = "gene_symbol"
	}

	p := wf.NewProc(name, "# {i:abundance} {i:annot} {o:matrix}")
	p.SetOut("matrix", "{i:abundance}."+params.SampleID+".matrix.tsv")
	p.CustomExecute = func(t *sp.Task) {
		vec, err := expr.ReadAbundanceTSV(bytes.NewReader(t.InIP("abundance").Read()))
		if err != nil {
			sp.Error.Fatalf("%s: %v", name, err)
		}
		symbols, err := expr.ParseSymbolTable(bytes.NewReader(t.InIP("annot").Read()), idCol, symCol)
		if err != nil {
			sp.Error.Fatalf("%s: %v", name, err)
		}
		rowLabels, err := expr.Reconcile(vec.Genes(), symbols)
		if err != nil {
			sp.Error.Fatalf("%s: %v", name, err)
		}
		m, err := expr.BuildMatrix(rowLabels, []expr.SampleVector{{ID: params.SampleID, Values: vec.Values()}})
		if err != nil {
			sp.Error.Fatalf("%s: %v", name, err)
		}
		var buf bytes.Buffer
		if err := m.WriteTSV(&buf); err != nil {
			sp.Error.Fatalf("%s: %v", name, err)
		}
		t.OutIP("matrix").Write(buf.Bytes())
	}
	return &BuildSampleMatrix{p}
}

// InAbundance returns the abundance-vector in-port
func (p *BuildSampleMatrix) InAbundance() *sp.InPort {
	return p.In("abundance")
}

// InAnnotation returns the annotation-table in-port
func (p *BuildSampleMatrix) InAnnotation() *sp.InPort {
	return p.In("annot")
}

// OutMatrix returns the expression-matrix out-port
func (p *BuildSampleMatrix) OutMatrix() *sp.OutPort {
	return p.Out("matrix")
}
