package expr

import (
	"errors"
	"strings"
	"testing"
)

func TestLoadAndLookupEveryTranscript(t *testing.T) {
	in := "T1\tG1\nT2\tG1\nT3\tG2\n"
	t2g, err := ParseTranscriptGeneMap(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if t2g.Len() != 3 {
		t.Fatalf("wrong map size: expected 3, got %d", t2g.Len())
	}
	for transcript, expected := range map[string]string{
		"T1": "G1",
		"T2": "G1",
		"T3": "G2",
	} {
		gene, ok := t2g.GeneID(transcript)
		if !ok {
			t.Errorf("transcript %s not found", transcript)
			continue
		}
		if gene != expected {
			t.Errorf("wrong gene for %s:\nEXPECTED:\n%s\nACTUAL:\n%s\n", transcript, expected, gene)
		}
	}
	if _, ok := t2g.GeneID("T4"); ok {
		t.Error("lookup of absent transcript should report not found")
	}
}

func TestParseTranscriptGeneMapMalformed(t *testing.T) {
	for name, in := range map[string]string{
		"inconsistent arity": "T1\tG1\nT2\tG1\textra\n",
		"single column":      "T1\n",
		"empty gene":         "T1\t\n",
		"duplicate id":       "T1\tG1\nT1\tG2\n",
	} {
		_, err := ParseTranscriptGeneMap(strings.NewReader(in))
		var merr *MalformedInputError
		if !errors.As(err, &merr) {
			t.Errorf("%s: expected MalformedInputError, got %v", name, err)
		}
	}
}

func TestTranscriptsPreservesFileOrder(t *testing.T) {
	in := "T3\tG2\nT1\tG1\nT2\tG1\n"
	t2g, err := ParseTranscriptGeneMap(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{"T3", "T1", "T2"}
	actual := t2g.Transcripts()
	for i := range expected {
		if actual[i] != expected[i] {
			t.Fatalf("wrong order at %d: expected %s, got %s", i, expected[i], actual[i])
		}
	}
}
