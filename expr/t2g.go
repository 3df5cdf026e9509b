// Package expr turns upstream transcript-level quantification output into a
// labeled genes-by-samples expression matrix: transcript-to-gene mapping,
// per-gene TPM aggregation, identifier-to-symbol reconciliation and matrix
// assembly.
package expr

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// TranscriptGeneMap is a lookup table from transcript identifiers to gene
// identifiers, loaded from a two-column tab-separated file. It is read-only
// after load.
type TranscriptGeneMap struct {
	order []string
	genes map[string]string
}

// LoadTranscriptGeneMap reads a transcript-to-gene table from path. The file
// is tab-separated with two columns (transcript_id, gene_id) and no header.
func LoadTranscriptGeneMap(path string) (*TranscriptGeneMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open transcript-gene map %s: %w", path, err)
	}
	defer f.Close()

	t2g, err := ParseTranscriptGeneMap(f)
	if err != nil {
		var merr *MalformedInputError
		if errors.As(err, &merr) {
			merr.Path = path
		}
		return nil, err
	}
	return t2g, nil
}

// ParseTranscriptGeneMap parses a two-column tab-separated transcript-to-gene
// table from r.
func ParseTranscriptGeneMap(r io.Reader) (*TranscriptGeneMap, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = 2
	cr.LazyQuotes = true

	t2g := &TranscriptGeneMap{genes: map[string]string{}}
	line := 0
	for {
		line++
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &MalformedInputError{Line: line, Msg: err.Error()}
		}
		transcriptID, geneID := record[0], record[1]
		if transcriptID == "" || geneID == "" {
			return nil, &MalformedInputError{Line: line, Msg: "empty transcript or gene identifier"}
		}
		if _, seen := t2g.genes[transcriptID]; seen {
			return nil, &MalformedInputError{Line: line, Msg: "duplicate transcript identifier " + transcriptID}
		}
		t2g.order = append(t2g.order, transcriptID)
		t2g.genes[transcriptID] = geneID
	}
	return t2g, nil
}

// GeneID returns the gene identifier mapped to transcriptID.
func (m *TranscriptGeneMap) GeneID(transcriptID string) (string, bool) {
	g, ok := m.genes[transcriptID]
	return g, ok
}

// Transcripts returns the transcript identifiers in file order.
func (m *TranscriptGeneMap) Transcripts() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Len returns the number of transcript entries.
func (m *TranscriptGeneMap) Len() int {
	return len(m.order)
}
