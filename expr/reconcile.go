package expr

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// SymbolSource maps gene identifiers to human-readable symbols.
type SymbolSource interface {
	Symbol(geneID string) (string, bool)
}

// SymbolTable is a map-backed SymbolSource. An empty symbol counts as
// missing, so the fallback to the gene identifier still applies.
type SymbolTable map[string]string

// Symbol implements SymbolSource.
func (t SymbolTable) Symbol(geneID string) (string, bool) {
	s, ok := t[geneID]
	if s == "" {
		return "", false
	}
	return s, ok
}

// LoadSymbolTable reads an annotation table from path and builds a
// SymbolTable from the columns named idCol and symCol. The file is
// tab-separated with a header row. Later rows win on duplicate identifiers,
// matching annotation tables that carry one row per transcript.
func LoadSymbolTable(path, idCol, symCol string) (SymbolTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open annotation table %s: %w", path, err)
	}
	defer f.Close()

	table, err := ParseSymbolTable(f, idCol, symCol)
	if err != nil {
		var merr *MalformedInputError
		if errors.As(err, &merr) {
			merr.Path = path
		}
		return nil, err
	}
	return table, nil
}

// ParseSymbolTable parses a header-bearing tab-separated annotation table
// from r, keeping the (idCol, symCol) pairs.
func ParseSymbolTable(r io.Reader, idCol, symCol string) (SymbolTable, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, &MalformedInputError{Line: 1, Msg: "missing header: " + err.Error()}
	}
	idIdx := columnIndex(header, []string{idCol})
	symIdx := columnIndex(header, []string{symCol})
	if idIdx < 0 || symIdx < 0 {
		return nil, &MalformedInputError{Line: 1, Msg: fmt.Sprintf("header lacks %s or %s column", idCol, symCol)}
	}

	table := SymbolTable{}
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
		table[record[idIdx]] = record[symIdx]
	}
	return table, nil
}

// Reconcile maps each gene identifier to its symbol, falling back to the
// identifier itself when the source has no symbol for it. The fallback is
// deliberate: a lookup miss must never lose the row. Output order and length
// match the input exactly; any order violation is fatal.
func Reconcile(geneIDs []string, symbols SymbolSource) ([]string, error) {
	keys := make([]string, 0, len(geneIDs))
	out := make([]string, 0, len(geneIDs))
	for _, id := range geneIDs {
		keys = append(keys, id)
		if sym, ok := symbols.Symbol(id); ok {
			out = append(out, sym)
		} else {
			out = append(out, id)
		}
	}

	// Row labels feed every downstream matrix; verify the pre-substitution
	// key sequence against the input rather than trusting it.
	if len(keys) != len(geneIDs) {
		return nil, &OrderMismatchError{Index: len(geneIDs), Want: "", Got: ""}
	}
	for i, id := range geneIDs {
		if keys[i] != id {
			return nil, &OrderMismatchError{Index: i, Want: id, Got: keys[i]}
		}
	}
	return out, nil
}
