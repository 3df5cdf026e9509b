package decon

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Comparison is a simple aggregate view of two deconvolution results run
// under different configurations or references: per-cell-type differences,
// the correlation of the shared fraction vectors, and each side's sample
// sums. It reports, it does not judge.
type Comparison struct {
	// CellTypes are the cell types present in both results, in the first
	// result's order.
	CellTypes []string

	// MeanAbsDiff is the mean absolute fraction difference per shared cell
	// type across shared samples.
	MeanAbsDiff map[string]float64

	// Pearson is the correlation between the two results' fractions over
	// all shared (cell type, sample) cells.
	Pearson float64

	// SampleSumsA and SampleSumsB are per-sample fraction totals for each
	// side, over that side's full cell-type set.
	SampleSumsA map[string]float64
	SampleSumsB map[string]float64
}

// Compare builds a Comparison between two results.
func Compare(a, b *Result) Comparison {
	fa, fb := a.Fractions, b.Fractions

	var shared []string
	for _, ct := range fa.CellTypes() {
		if indexOf(fb.cellTypes, ct) >= 0 {
			shared = append(shared, ct)
		}
	}
	var sharedSamples []string
	for _, s := range fa.Samples() {
		if indexOf(fb.samples, s) >= 0 {
			sharedSamples = append(sharedSamples, s)
		}
	}

	cmp := Comparison{
		CellTypes:   shared,
		MeanAbsDiff: map[string]float64{},
		SampleSumsA: sampleSums(fa),
		SampleSumsB: sampleSums(fb),
	}

	var xs, ys []float64
	for _, ct := range shared {
		diff := 0.0
		for _, s := range sharedSamples {
			va, _ := fa.Fraction(ct, s)
			vb, _ := fb.Fraction(ct, s)
			xs = append(xs, va)
			ys = append(ys, vb)
			d := va - vb
			if d < 0 {
				d = -d
			}
			diff += d
		}
		if len(sharedSamples) > 0 {
			cmp.MeanAbsDiff[ct] = diff / float64(len(sharedSamples))
		}
	}
	if len(xs) > 1 {
		cmp.Pearson = stat.Correlation(xs, ys, nil)
	}
	return cmp
}

func sampleSums(m *FractionMatrix) map[string]float64 {
	sums := map[string]float64{}
	for _, s := range m.samples {
		sum, _ := m.SampleSum(s)
		sums[s] = sum
	}
	return sums
}

// WriteReport prints the comparison as a small human-readable table.
func (c Comparison) WriteReport(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "shared cell types: %d\n", len(c.CellTypes))
	fmt.Fprintf(bw, "pearson correlation: %.4f\n", c.Pearson)
	for _, ct := range c.CellTypes {
		fmt.Fprintf(bw, "  %s\tmean |diff| %.4f\n", ct, c.MeanAbsDiff[ct])
	}
	for _, side := range []struct {
		name string
		sums map[string]float64
	}{{"A", c.SampleSumsA}, {"B", c.SampleSumsB}} {
		samples := make([]string, 0, len(side.sums))
		for s := range side.sums {
			samples = append(samples, s)
		}
		sort.Strings(samples)
		for _, s := range samples {
			fmt.Fprintf(bw, "sum[%s] %s = %.6f\n", side.name, s, side.sums[s])
		}
	}
	return bw.Flush()
}
