package decon

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/sjspielman/deconv/expr"
)

// FractionMatrix is a cell-types-by-samples matrix of inferred mixture
// fractions, as returned by a deconvolution collaborator. Values lie in
// [0,1] and each sample column sums to one across recognized cell types,
// including any "other/unknown" catch-all the method defines.
type FractionMatrix struct {
	cellTypes []string
	samples   []string
	data      *mat.Dense
}

// SumError reports a sample whose cell-type fractions do not sum to one.
type SumError struct {
	Sample string
	Sum    float64
}

func (e *SumError) Error() string {
	return fmt.Sprintf("fractions for sample %s sum to %g, not 1", e.Sample, e.Sum)
}

// NewFractionMatrix builds a fraction matrix from labels and row-major data.
func NewFractionMatrix(cellTypes, samples []string, data []float64) (*FractionMatrix, error) {
	if len(data) != len(cellTypes)*len(samples) {
		return nil, &expr.ShapeMismatchError{Label: "fraction values", Want: len(cellTypes) * len(samples), Got: len(data)}
	}
	for _, v := range data {
		if v < 0 || v > 1 {
			return nil, &expr.MalformedInputError{Msg: fmt.Sprintf("fraction %g outside [0,1]", v)}
		}
	}
	return &FractionMatrix{
		cellTypes: append([]string(nil), cellTypes...),
		samples:   append([]string(nil), samples...),
		data:      mat.NewDense(len(cellTypes), len(samples), data),
	}, nil
}

// LoadFractions reads a fraction table from path.
func LoadFractions(path string) (*FractionMatrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open fraction table %s: %w", path, err)
	}
	defer f.Close()

	fm, err := ReadFractions(f)
	if err != nil {
		var merr *expr.MalformedInputError
		if errors.As(err, &merr) {
			merr.Path = path
		}
		return nil, err
	}
	return fm, nil
}

// ReadFractions parses a tab-separated fraction table: header row with
// sample IDs after the cell-type column, one row per cell type. Values are
// checked against [0,1] on read.
func ReadFractions(r io.Reader) (*FractionMatrix, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, &expr.MalformedInputError{Line: 1, Msg: "missing header: " + err.Error()}
	}
	if len(header) < 2 {
		return nil, &expr.MalformedInputError{Line: 1, Msg: "fraction header needs at least one sample column"}
	}
	samples := header[1:]

	var cellTypes []string
	var values []float64
	line := 1
	for {
		line++
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &expr.MalformedInputError{Line: line, Msg: err.Error()}
		}
		cellTypes = append(cellTypes, record[0])
		for _, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, &expr.MalformedInputError{Line: line, Msg: "unparseable fraction " + field}
			}
			if v < 0 || v > 1 {
				return nil, &expr.MalformedInputError{Line: line, Msg: fmt.Sprintf("fraction %g outside [0,1]", v)}
			}
			values = append(values, v)
		}
	}
	if len(cellTypes) == 0 {
		return nil, &expr.MalformedInputError{Line: line, Msg: "fraction table has no rows"}
	}

	return &FractionMatrix{
		cellTypes: cellTypes,
		samples:   append([]string(nil), samples...),
		data:      mat.NewDense(len(cellTypes), len(samples), values),
	}, nil
}

// CellTypes returns the cell-type row labels in order.
func (m *FractionMatrix) CellTypes() []string {
	out := make([]string, len(m.cellTypes))
	copy(out, m.cellTypes)
	return out
}

// Samples returns the sample column labels in order.
func (m *FractionMatrix) Samples() []string {
	out := make([]string, len(m.samples))
	copy(out, m.samples)
	return out
}

// Fraction returns the fraction for (cellType, sample).
func (m *FractionMatrix) Fraction(cellType, sample string) (float64, bool) {
	i := indexOf(m.cellTypes, cellType)
	j := indexOf(m.samples, sample)
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.data.At(i, j), true
}

// SampleSum returns the sum of fractions across cell types for sample.
func (m *FractionMatrix) SampleSum(sample string) (float64, bool) {
	j := indexOf(m.samples, sample)
	if j < 0 {
		return 0, false
	}
	sum := 0.0
	for i := range m.cellTypes {
		sum += m.data.At(i, j)
	}
	return sum, true
}

// CheckSumsToOne verifies that every sample's fractions sum to one within
// tol, returning a SumError for the first sample that does not.
func (m *FractionMatrix) CheckSumsToOne(tol float64) error {
	for _, s := range m.samples {
		sum, _ := m.SampleSum(s)
		if math.Abs(sum-1) > tol {
			return &SumError{Sample: s, Sum: sum}
		}
	}
	return nil
}

func indexOf(labels []string, label string) int {
	for i, l := range labels {
		if l == label {
			return i
		}
	}
	return -1
}
