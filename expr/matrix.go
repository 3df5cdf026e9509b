package expr

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// SampleVector is one sample's per-gene values, ordered identically to the
// gene row labels handed to BuildMatrix.
type SampleVector struct {
	ID     string
	Values []float64
}

// Matrix is a genes-by-samples expression matrix with labeled rows and
// columns. Row and column order is construction order and never permutes.
type Matrix struct {
	genes   []string
	samples []string
	data    *mat.Dense
}

// BuildMatrix assembles per-sample vectors into a genes-by-samples matrix.
// All vectors must share the gene universe and order of the row labels; the
// reconciler's order guarantee makes that the caller's responsibility, and a
// length disagreement fails with ShapeMismatchError.
func BuildMatrix(genes []string, samples []SampleVector) (*Matrix, error) {
	if len(samples) == 0 {
		return nil, &ShapeMismatchError{Label: "samples", Want: 1, Got: 0}
	}
	for _, s := range samples {
		if len(s.Values) != len(genes) {
			return nil, &ShapeMismatchError{Label: "sample " + s.ID, Want: len(genes), Got: len(s.Values)}
		}
	}

	m := &Matrix{
		genes:   append([]string(nil), genes...),
		samples: make([]string, 0, len(samples)),
		data:    mat.NewDense(len(genes), len(samples), nil),
	}
	for j, s := range samples {
		m.samples = append(m.samples, s.ID)
		for i, v := range s.Values {
			m.data.Set(i, j, v)
		}
	}
	return m, nil
}

// Genes returns the row labels in order.
func (m *Matrix) Genes() []string {
	out := make([]string, len(m.genes))
	copy(out, m.genes)
	return out
}

// Samples returns the column labels in order.
func (m *Matrix) Samples() []string {
	out := make([]string, len(m.samples))
	copy(out, m.samples)
	return out
}

// Dims returns (genes, samples).
func (m *Matrix) Dims() (int, int) {
	return len(m.genes), len(m.samples)
}

// At returns the value at row i, column j.
func (m *Matrix) At(i, j int) float64 {
	return m.data.At(i, j)
}

// Dense returns the backing gonum matrix. Callers must treat it as read-only.
func (m *Matrix) Dense() *mat.Dense {
	return m.data
}

// Column returns the values for one sample in row order.
func (m *Matrix) Column(sampleID string) ([]float64, bool) {
	for j, s := range m.samples {
		if s == sampleID {
			return mat.Col(nil, j, m.data), true
		}
	}
	return nil, false
}

// DropGenes returns a copy of the matrix with the given genes removed,
// preserving the relative order of the kept rows. Genes not present are
// ignored. Used for tumor-mode exclusion lists.
func (m *Matrix) DropGenes(exclude []string) *Matrix {
	drop := make(map[string]bool, len(exclude))
	for _, g := range exclude {
		drop[g] = true
	}

	keep := make([]int, 0, len(m.genes))
	genes := make([]string, 0, len(m.genes))
	for i, g := range m.genes {
		if !drop[g] {
			keep = append(keep, i)
			genes = append(genes, g)
		}
	}

	out := &Matrix{
		genes:   genes,
		samples: append([]string(nil), m.samples...),
		data:    mat.NewDense(len(keep), len(m.samples), nil),
	}
	for i, src := range keep {
		for j := range m.samples {
			out.data.Set(i, j, m.data.At(src, j))
		}
	}
	return out
}

// WriteTSV writes the matrix with a header row ("gene" then sample IDs) and
// one row per gene, in label order.
func (m *Matrix) WriteTSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, "gene\t"+strings.Join(m.samples, "\t")); err != nil {
		return err
	}
	for i, g := range m.genes {
		fields := make([]string, len(m.samples)+1)
		fields[0] = g
		for j := range m.samples {
			fields[j+1] = strconv.FormatFloat(m.data.At(i, j), 'g', -1, 64)
		}
		if _, err := fmt.Fprintln(bw, strings.Join(fields, "\t")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes the matrix as TSV to path.
func (m *Matrix) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create matrix file %s: %w", path, err)
	}
	if err := m.WriteTSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadMatrixTSV reads a matrix in the WriteTSV layout back from r.
func ReadMatrixTSV(r io.Reader) (*Matrix, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, &MalformedInputError{Line: 1, Msg: "missing header: " + err.Error()}
	}
	if len(header) < 2 {
		return nil, &MalformedInputError{Line: 1, Msg: "matrix header needs at least one sample column"}
	}
	samples := header[1:]

	var genes []string
	var values []float64
	line := 1
	for {
		line++
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &MalformedInputError{Line: line, Msg: err.Error()}
		}
		genes = append(genes, record[0])
		for _, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, &MalformedInputError{Line: line, Msg: "unparseable value " + field}
			}
			values = append(values, v)
		}
	}
	if len(genes) == 0 {
		return nil, &MalformedInputError{Line: line, Msg: "matrix has no data rows"}
	}

	return &Matrix{
		genes:   genes,
		samples: append([]string(nil), samples...),
		data:    mat.NewDense(len(genes), len(samples), values),
	}, nil
}

// LoadMatrix reads a TSV matrix from path.
func LoadMatrix(path string) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open matrix file %s: %w", path, err)
	}
	defer f.Close()
	return ReadMatrixTSV(f)
}
