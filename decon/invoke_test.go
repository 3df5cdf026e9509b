package decon

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sjspielman/deconv/expr"
)

func TestDeconvolveRejectsBadConfigBeforeRunning(t *testing.T) {
	m, err := expr.BuildMatrix([]string{"A"}, []expr.SampleVector{{ID: "s1", Values: []float64{1}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ref := mustReference(t, []string{"A"}, []string{"X"}, []float64{1})

	// the command does not exist; validation must fail first
	r := &Rscript{Command: "/nonexistent/deconv-driver"}
	_, err = r.Deconvolve(context.Background(), m, ref, []string{"A"}, Config{Method: "bogus"})
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestReadDiagnostics(t *testing.T) {
	in := "rmse\t0.42\npearson\t0.91\nconvergence\t0\n"
	diags, err := ReadDiagnostics(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for name, expected := range map[string]float64{
		"rmse":        0.42,
		"pearson":     0.91,
		"convergence": 0,
	} {
		if diags[name] != expected {
			t.Errorf("wrong %s: expected %g, got %g", name, expected, diags[name])
		}
	}
}

func TestReadDiagnosticsMalformed(t *testing.T) {
	for name, in := range map[string]string{
		"bad value":  "rmse\tabc\n",
		"ragged row": "rmse\t0.1\textra\n",
	} {
		_, err := ReadDiagnostics(strings.NewReader(in))
		var merr *expr.MalformedInputError
		if !errors.As(err, &merr) {
			t.Errorf("%s: expected MalformedInputError, got %v", name, err)
		}
	}
}
