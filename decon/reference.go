// Package decon prepares reference profiles for, invokes, and compares the
// outputs of external bulk-deconvolution methods. The deconvolution math
// itself lives in the external collaborators; this package only feeds them
// and reads their results back.
package decon

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/sjspielman/deconv/expr"
)

// Reference is a genes-by-cell-types profile of expected expression levels.
type Reference struct {
	genes     []string
	cellTypes []string
	weights   *mat.Dense
}

// NewReference builds a reference from row labels, column labels and
// row-major weights.
func NewReference(genes, cellTypes []string, weights []float64) (*Reference, error) {
	if len(weights) != len(genes)*len(cellTypes) {
		return nil, &expr.ShapeMismatchError{Label: "reference weights", Want: len(genes) * len(cellTypes), Got: len(weights)}
	}
	return &Reference{
		genes:     append([]string(nil), genes...),
		cellTypes: append([]string(nil), cellTypes...),
		weights:   mat.NewDense(len(genes), len(cellTypes), weights),
	}, nil
}

// LoadReference reads a signature/reference table from path.
func LoadReference(path string) (*Reference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open reference table %s: %w", path, err)
	}
	defer f.Close()

	ref, err := ReadReference(f)
	if err != nil {
		var merr *expr.MalformedInputError
		if errors.As(err, &merr) {
			merr.Path = path
		}
		return nil, err
	}
	return ref, nil
}

// ReadReference parses a tab-separated reference table: header row with
// cell-type names after the gene column, then one row per gene with numeric
// per-cell-type weights.
func ReadReference(r io.Reader) (*Reference, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, &expr.MalformedInputError{Line: 1, Msg: "missing header: " + err.Error()}
	}
	if len(header) < 2 {
		return nil, &expr.MalformedInputError{Line: 1, Msg: "reference header needs at least one cell-type column"}
	}
	cellTypes := header[1:]

	var genes []string
	var weights []float64
	seen := map[string]bool{}
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
		if seen[record[0]] {
			return nil, &expr.MalformedInputError{Line: line, Msg: "duplicate reference gene " + record[0]}
		}
		seen[record[0]] = true
		genes = append(genes, record[0])
		for _, field := range record[1:] {
			w, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, &expr.MalformedInputError{Line: line, Msg: "unparseable weight " + field}
			}
			weights = append(weights, w)
		}
	}
	if len(genes) == 0 {
		return nil, &expr.MalformedInputError{Line: line, Msg: "reference has no gene rows"}
	}

	return &Reference{
		genes:     genes,
		cellTypes: append([]string(nil), cellTypes...),
		weights:   mat.NewDense(len(genes), len(cellTypes), weights),
	}, nil
}

// Genes returns the gene row labels in order.
func (r *Reference) Genes() []string {
	out := make([]string, len(r.genes))
	copy(out, r.genes)
	return out
}

// CellTypes returns the cell-type column labels in order.
func (r *Reference) CellTypes() []string {
	out := make([]string, len(r.cellTypes))
	copy(out, r.cellTypes)
	return out
}

// Dims returns (genes, cell types).
func (r *Reference) Dims() (int, int) {
	return len(r.genes), len(r.cellTypes)
}

// Weight returns the value at gene row i, cell-type column j.
func (r *Reference) Weight(i, j int) float64 {
	return r.weights.At(i, j)
}

// Weights returns the backing gonum matrix. Callers must treat it as
// read-only.
func (r *Reference) Weights() *mat.Dense {
	return r.weights
}

// WriteTSV writes the reference in the same layout ReadReference accepts.
func (r *Reference) WriteTSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, "gene\t"+strings.Join(r.cellTypes, "\t")); err != nil {
		return err
	}
	for i, g := range r.genes {
		fields := make([]string, len(r.cellTypes)+1)
		fields[0] = g
		for j := range r.cellTypes {
			fields[j+1] = strconv.FormatFloat(r.weights.At(i, j), 'g', -1, 64)
		}
		if _, err := fmt.Fprintln(bw, strings.Join(fields, "\t")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes the reference as TSV to path.
func (r *Reference) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create reference file %s: %w", path, err)
	}
	if err := r.WriteTSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
