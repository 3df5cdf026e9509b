package decon

import (
	"errors"
	"strings"
	"testing"

	"github.com/sjspielman/deconv/expr"
)

func TestReadFractionsAndSumToOne(t *testing.T) {
	in := "cell_type\tSRR3222409\n" +
		"B cells\t0.1\n" +
		"T cells CD4\t0.25\n" +
		"T cells CD8\t0.3\n" +
		"Monocytes\t0.25\n" +
		"Other\t0.0999999\n"
	fm, err := ReadFractions(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fm.CellTypes()) != 5 {
		t.Fatalf("expected 5 cell types, got %d", len(fm.CellTypes()))
	}
	if err := fm.CheckSumsToOne(1e-6); err != nil {
		t.Errorf("sums within tolerance must pass: %v", err)
	}
	if err := fm.CheckSumsToOne(1e-9); err == nil {
		t.Error("sum off by 1e-7 must fail a 1e-9 tolerance")
	}
	v, ok := fm.Fraction("Monocytes", "SRR3222409")
	if !ok || v != 0.25 {
		t.Errorf("wrong fraction for Monocytes: %g (ok=%v)", v, ok)
	}
}

func TestCheckSumsToOneFailure(t *testing.T) {
	fm, err := NewFractionMatrix([]string{"a", "b"}, []string{"s1"}, []float64{0.5, 0.3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = fm.CheckSumsToOne(1e-6)
	var serr *SumError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SumError, got %v", err)
	}
	if serr.Sample != "s1" {
		t.Errorf("wrong sample in error: %s", serr.Sample)
	}
}

func TestReadFractionsRejectsOutOfRange(t *testing.T) {
	for name, in := range map[string]string{
		"negative":     "ct\ts1\na\t-0.1\n",
		"above one":    "ct\ts1\na\t1.2\n",
		"not a number": "ct\ts1\na\tfoo\n",
	} {
		_, err := ReadFractions(strings.NewReader(in))
		var merr *expr.MalformedInputError
		if !errors.As(err, &merr) {
			t.Errorf("%s: expected MalformedInputError, got %v", name, err)
		}
	}
}

func TestFractionUnknownLabels(t *testing.T) {
	fm, err := NewFractionMatrix([]string{"a"}, []string{"s1"}, []float64{1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := fm.Fraction("nope", "s1"); ok {
		t.Error("unknown cell type must report not found")
	}
	if _, ok := fm.SampleSum("nope"); ok {
		t.Error("unknown sample must report not found")
	}
}
