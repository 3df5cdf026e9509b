package expr

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// QuantRecord is one per-transcript abundance estimate from an upstream
// quantification tool.
type QuantRecord struct {
	TranscriptID string
	TPM          float64
}

// Column names recognized in quantification headers. Kallisto writes
// target_id/tpm, salmon writes Name/TPM.
var (
	quantIDCols  = []string{"target_id", "Name"}
	quantTPMCols = []string{"tpm", "TPM"}
)

// ReadQuant reads a per-transcript quantification table from path. The file
// is tab-separated with a header row that must expose a transcript-id column
// and a TPM column.
func ReadQuant(path string) ([]QuantRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open quantification file %s: %w", path, err)
	}
	defer f.Close()

	recs, err := ParseQuant(f)
	if err != nil {
		var merr *MalformedInputError
		if errors.As(err, &merr) {
			merr.Path = path
		}
		return nil, err
	}
	return recs, nil
}

// ParseQuant parses a tab-separated quantification table from r.
func ParseQuant(r io.Reader) ([]QuantRecord, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, &MalformedInputError{Line: 1, Msg: "missing header: " + err.Error()}
	}
	idIdx := columnIndex(header, quantIDCols)
	tpmIdx := columnIndex(header, quantTPMCols)
	if idIdx < 0 || tpmIdx < 0 {
		return nil, &MalformedInputError{Line: 1, Msg: "header lacks transcript-id or tpm column"}
	}

	var recs []QuantRecord
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
		tpm, err := strconv.ParseFloat(record[tpmIdx], 64)
		if err != nil {
			return nil, &MalformedInputError{Line: line, Msg: "unparseable tpm value " + record[tpmIdx]}
		}
		if tpm < 0 {
			return nil, &MalformedInputError{Line: line, Msg: "negative tpm value"}
		}
		recs = append(recs, QuantRecord{TranscriptID: record[idIdx], TPM: tpm})
	}
	return recs, nil
}

func columnIndex(header, names []string) int {
	for i, h := range header {
		for _, n := range names {
			if h == n {
				return i
			}
		}
	}
	return -1
}
