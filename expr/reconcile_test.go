package expr

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReconcileSubstitutesAndFallsBack(t *testing.T) {
	symbols := SymbolTable{"G1": "SYM1", "G3": "SYM3"}
	out, err := Reconcile([]string{"G1", "G2", "G3"}, symbols)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"SYM1", "G2", "SYM3"}, out); diff != "" {
		t.Errorf("wrong symbols (-expected +actual):\n%s", diff)
	}
}

func TestReconcileEmptySymbolCountsAsMissing(t *testing.T) {
	symbols := SymbolTable{"G1": ""}
	out, err := Reconcile([]string{"G1"}, symbols)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0] != "G1" {
		t.Errorf("empty symbol must fall back to the identifier, got %q", out[0])
	}
}

// permutingSource returns symbols but would only be caught if Reconcile
// reordered its keys; it exercises the length/order postcondition.
type permutingSource struct{}

func (permutingSource) Symbol(geneID string) (string, bool) { return "", false }

func TestReconcilePreservesLengthAndOrder(t *testing.T) {
	for _, ids := range [][]string{
		{},
		{"G1"},
		{"G5", "G1", "G3", "G2", "G4"},
	} {
		out, err := Reconcile(ids, permutingSource{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(out) != len(ids) {
			t.Fatalf("length changed: expected %d, got %d", len(ids), len(out))
		}
		for i := range ids {
			if out[i] != ids[i] {
				t.Errorf("index %d no longer corresponds to its input: expected %s, got %s", i, ids[i], out[i])
			}
		}
	}
}

func TestParseSymbolTable(t *testing.T) {
	in := "gene_id\tgene_symbol\tbiotype\n" +
		"G1\tSYM1\tprotein_coding\n" +
		"G2\t\tlncRNA\n"
	table, err := ParseSymbolTable(strings.NewReader(in), "gene_id", "gene_symbol")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sym, ok := table.Symbol("G1"); !ok || sym != "SYM1" {
		t.Errorf("wrong symbol for G1: %q (ok=%v)", sym, ok)
	}
	if _, ok := table.Symbol("G2"); ok {
		t.Error("empty annotation symbol must count as missing")
	}
}

func TestParseSymbolTableMissingColumns(t *testing.T) {
	in := "gene_id\tbiotype\nG1\tprotein_coding\n"
	_, err := ParseSymbolTable(strings.NewReader(in), "gene_id", "gene_symbol")
	var merr *MalformedInputError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MalformedInputError, got %v", err)
	}
}
