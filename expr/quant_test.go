package expr

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseQuantKallistoLayout(t *testing.T) {
	in := "target_id\tlength\teff_length\test_counts\ttpm\n" +
		"T1\t1000\t800\t30\t3.5\n" +
		"T2\t500\t300\t10\t1.25\n"
	recs, err := ParseQuant(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []QuantRecord{
		{TranscriptID: "T1", TPM: 3.5},
		{TranscriptID: "T2", TPM: 1.25},
	}
	if diff := cmp.Diff(expected, recs); diff != "" {
		t.Errorf("wrong records (-expected +actual):\n%s", diff)
	}
}

func TestParseQuantSalmonLayout(t *testing.T) {
	in := "Name\tLength\tEffectiveLength\tTPM\tNumReads\n" +
		"T1\t1000\t800\t3.5\t30\n"
	recs, err := ParseQuant(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 || recs[0].TPM != 3.5 {
		t.Errorf("wrong salmon parse: %+v", recs)
	}
}

func TestParseQuantMalformed(t *testing.T) {
	for name, in := range map[string]string{
		"no tpm column": "target_id\tlength\nT1\t1000\n",
		"no id column":  "foo\ttpm\nT1\t3.5\n",
		"bad tpm value": "target_id\ttpm\nT1\tabc\n",
		"negative tpm":  "target_id\ttpm\nT1\t-1\n",
		"ragged row":    "target_id\ttpm\nT1\t3.5\textra\n",
	} {
		_, err := ParseQuant(strings.NewReader(in))
		var merr *MalformedInputError
		if !errors.As(err, &merr) {
			t.Errorf("%s: expected MalformedInputError, got %v", name, err)
		}
	}
}
