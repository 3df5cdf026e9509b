package decon

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/sjspielman/deconv/expr"
)

// Result is one deconvolution run's output: the fraction matrix plus
// whatever diagnostics the collaborator emitted (fit statistics, convergence
// codes). Diagnostics are surfaced as-is and never interpreted here;
// non-convergence in particular is data, not an error.
type Result struct {
	Fractions   *FractionMatrix
	Diagnostics map[string]float64
}

// Deconvolver runs one external deconvolution method over an expression
// matrix and a (harmonized) reference.
type Deconvolver interface {
	Deconvolve(ctx context.Context, m *expr.Matrix, ref *Reference, signature []string, cfg Config) (*Result, error)
}

// Rscript invokes a collaborator script as an external process. Inputs are
// staged into a scratch directory as TSV, the command runs blocking with the
// staged paths and the config flags appended, and the fraction table is read
// back from the scratch directory.
type Rscript struct {
	// Command and Args name the collaborator, e.g. "Rscript" with the path
	// to the method's driver script.
	Command string
	Args    []string

	// WorkDir is where scratch directories are created. Empty means the
	// system temp dir.
	WorkDir string
}

// Deconvolve implements Deconvolver.
func (r *Rscript) Deconvolve(ctx context.Context, m *expr.Matrix, ref *Reference, signature []string, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.TumorMode {
		m = m.DropGenes(cfg.ExcludeGenes)
	}

	scratch, err := os.MkdirTemp(r.WorkDir, "deconv-")
	if err != nil {
		return nil, fmt.Errorf("cannot create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	mixPath := filepath.Join(scratch, "mixture.tsv")
	refPath := filepath.Join(scratch, "reference.tsv")
	sigPath := filepath.Join(scratch, "signature.txt")
	fracPath := filepath.Join(scratch, "fractions.tsv")
	diagPath := filepath.Join(scratch, "diagnostics.tsv")

	if err := m.WriteFile(mixPath); err != nil {
		return nil, err
	}
	if err := ref.WriteFile(refPath); err != nil {
		return nil, err
	}
	if err := writeLines(sigPath, signature); err != nil {
		return nil, err
	}

	args := append(append([]string(nil), r.Args...),
		"--method", string(cfg.Method),
		"--mixture", mixPath,
		"--reference", refPath,
		"--signature", sigPath,
		"--fractions", fracPath,
		"--diagnostics", diagPath,
		"--seed", strconv.FormatInt(cfg.Seed, 10),
	)
	if cfg.ArrayPlatform {
		args = append(args, "--array")
	}
	if cfg.MRNAScaling {
		args = append(args, "--mrna-scaling")
	}

	cmd := exec.CommandContext(ctx, r.Command, args...)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("deconvolution command %s failed: %w", r.Command, err)
	}

	fracs, err := LoadFractions(fracPath)
	if err != nil {
		return nil, err
	}
	diags, err := readDiagnosticsFile(diagPath)
	if err != nil {
		return nil, err
	}
	return &Result{Fractions: fracs, Diagnostics: diags}, nil
}

func writeLines(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	for _, l := range lines {
		fmt.Fprintln(bw, l)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readDiagnosticsFile(path string) (map[string]float64, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		// Not every collaborator emits diagnostics.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open diagnostics %s: %w", path, err)
	}
	defer f.Close()
	return ReadDiagnostics(f)
}

// ReadDiagnostics parses a two-column (name, value) tab-separated diagnostic
// table, such as a goodness-of-fit or convergence-code report.
func ReadDiagnostics(r io.Reader) (map[string]float64, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = 2

	diags := map[string]float64{}
	line := 0
	for {
		line++
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &expr.MalformedInputError{Line: line, Msg: err.Error()}
		}
		v, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, &expr.MalformedInputError{Line: line, Msg: "unparseable diagnostic value " + record[1]}
		}
		diags[record[0]] = v
	}
	return diags, nil
}
