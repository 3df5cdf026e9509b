package components

import (
	"fmt"

	sp "github.com/scipipe/scipipe"

	"github.com/sjspielman/deconv/decon"
)

// RunDeconvolution invokes an external deconvolution collaborator script
// over a mixture matrix and a harmonized reference, in the same shell-out
// style as the rest of the workflow. The script is expected to accept the
// flag set of decon.Rscript and write a fraction table plus an optional
// diagnostics table.
type RunDeconvolution struct {
	*sp.Process
}

// RunDeconvolutionConf contains parameters for initializing a
// RunDeconvolution process
type RunDeconvolutionConf struct {
	// Interpreter and Script name the collaborator, e.g. "Rscript" and the
	// driver script path.
	Interpreter string
	Script      string
	Config      decon.Config

	// ExcludeFile is the tumor-mode exclusion list, one gene per line.
	// Required when Config.TumorMode is set.
	ExcludeFile string

	// Tag distinguishes output files when the same mixture feeds several
	// runs. Defaults to the method name.
	Tag string
}

func (c RunDeconvolutionConf) validate() error {
	cfg := c.Config
	if cfg.TumorMode {
		if c.ExcludeFile == "" {
			return &decon.ConfigError{Msg: "tumor mode requires an exclusion list file"}
		}
		// The command form carries the list as a file; satisfy the
		// non-empty-list rule with the file reference.
		cfg.ExcludeGenes = []string{c.ExcludeFile}
	}
	return cfg.Validate()
}

// NewRunDeconvolution returns a new RunDeconvolution process
func NewRunDeconvolution(wf *sp.Workflow, name string, params RunDeconvolutionConf) *RunDeconvolution {
	if err := params.validate(); err != nil {
		sp.Error.Fatalf("%s: %v", name, err)
	}

	cmd := fmt.Sprintf(`%s %s \
		--method %s \
		--mixture {i:mixture} \
		--reference {i:reference} \
		--signature {i:signature} \
		--fractions {o:fractions} \
		--diagnostics {o:diagnostics} \
		--seed %d`,
		params.Interpreter,
		params.Script,
		params.Config.Method,
		params.Config.Seed)
	if params.Config.TumorMode {
		cmd += fmt.Sprintf(` \
		--tumor --exclude %s`, params.ExcludeFile)
	}
	if params.Config.ArrayPlatform {
		cmd += ` \
		--array`
	}
	if params.Config.MRNAScaling {
		cmd += ` \
		--mrna-scaling`
	}

	tag := params.Tag
	if tag == "" {
		tag = string(params.Config.Method)
	}
	p := wf.NewProc(name, cmd)
	p.SetOut("fractions", "{i:mixture}."+tag+".fractions.tsv")
	p.SetOut("diagnostics", "{i:mixture}."+tag+".diagnostics.tsv")
	return &RunDeconvolution{p}
}

// InMixture returns the mixture-matrix in-port
func (p *RunDeconvolution) InMixture() *sp.InPort {
	return p.In("mixture")
}

// InReference returns the harmonized-reference in-port
func (p *RunDeconvolution) InReference() *sp.InPort {
	return p.In("reference")
}

// InSignatureGenes returns the signature-gene-list in-port
func (p *RunDeconvolution) InSignatureGenes() *sp.InPort {
	return p.In("signature")
}

// OutFractions returns the fraction-table out-port
func (p *RunDeconvolution) OutFractions() *sp.OutPort {
	return p.Out("fractions")
}

// OutDiagnostics returns the diagnostics out-port
func (p *RunDeconvolution) OutDiagnostics() *sp.OutPort {
	return p.Out("diagnostics")
}
