package expr

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustT2G(t *testing.T, in string) *TranscriptGeneMap {
	t.Helper()
	t2g, err := ParseTranscriptGeneMap(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return t2g
}

func TestAggregateSumsPerGene(t *testing.T) {
	t2g := mustT2G(t, "T1\tG1\nT2\tG1\nT3\tG2\n")
	recs := []QuantRecord{
		{TranscriptID: "T1", TPM: 3.0},
		{TranscriptID: "T2", TPM: 1.0},
		{TranscriptID: "T3", TPM: 6.0},
	}
	vec, dropped, err := Aggregate(recs, t2g, AggregateConf{Unmapped: UnmappedDrop})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dropped != 0 {
		t.Errorf("expected no dropped transcripts, got %d", dropped)
	}
	if diff := cmp.Diff([]string{"G1", "G2"}, vec.Genes()); diff != "" {
		t.Errorf("wrong gene order (-expected +actual):\n%s", diff)
	}
	for gene, expected := range map[string]float64{"G1": 4.0, "G2": 6.0} {
		actual, ok := vec.Value(gene)
		if !ok || actual != expected {
			t.Errorf("wrong TPM for %s: expected %g, got %g (ok=%v)", gene, expected, actual, ok)
		}
	}
	if vec.Sum() != 10.0 {
		t.Errorf("wrong total TPM: expected 10, got %g", vec.Sum())
	}
}

func TestAggregateUnmappedDrop(t *testing.T) {
	t2g := mustT2G(t, "T1\tG1\n")
	recs := []QuantRecord{
		{TranscriptID: "T1", TPM: 2.0},
		{TranscriptID: "TX", TPM: 5.0},
	}
	vec, dropped, err := Aggregate(recs, t2g, AggregateConf{Unmapped: UnmappedDrop})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dropped != 1 {
		t.Errorf("expected 1 dropped transcript, got %d", dropped)
	}
	if vec.Len() != 1 {
		t.Errorf("expected 1 gene, got %d", vec.Len())
	}
}

func TestAggregateUnmappedBucket(t *testing.T) {
	t2g := mustT2G(t, "T1\tG1\n")
	recs := []QuantRecord{
		{TranscriptID: "T1", TPM: 2.0},
		{TranscriptID: "TX", TPM: 5.0},
		{TranscriptID: "TY", TPM: 1.0},
	}
	vec, dropped, err := Aggregate(recs, t2g, AggregateConf{Unmapped: UnmappedBucket})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dropped != 0 {
		t.Errorf("expected no dropped transcripts under bucket policy, got %d", dropped)
	}
	bucketed, ok := vec.Value(DefaultBucketGene)
	if !ok || bucketed != 6.0 {
		t.Errorf("wrong bucket TPM: expected 6, got %g (ok=%v)", bucketed, ok)
	}
}

func TestAggregateUnmappedStrict(t *testing.T) {
	t2g := mustT2G(t, "T1\tG1\n")
	recs := []QuantRecord{{TranscriptID: "TX", TPM: 5.0}}
	_, _, err := Aggregate(recs, t2g, AggregateConf{Unmapped: UnmappedStrict})
	var uerr *UnmappedTranscriptError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UnmappedTranscriptError, got %v", err)
	}
	if uerr.TranscriptID != "TX" {
		t.Errorf("wrong transcript in error: %s", uerr.TranscriptID)
	}
}

func TestAbundanceVectorTSVRoundTrip(t *testing.T) {
	vec, err := NewAbundanceVector([]string{"G2", "G1"}, []float64{6.0, 4.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var buf bytes.Buffer
	if err := vec.WriteTSV(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := ReadAbundanceTSV(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(vec.Genes(), back.Genes()); diff != "" {
		t.Errorf("gene order changed (-expected +actual):\n%s", diff)
	}
	if diff := cmp.Diff(vec.Values(), back.Values()); diff != "" {
		t.Errorf("values changed (-expected +actual):\n%s", diff)
	}
}

func TestTopGenes(t *testing.T) {
	vec, err := NewAbundanceVector([]string{"G1", "G2", "G3"}, []float64{1, 7, 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	top := vec.TopGenes(2)
	if diff := cmp.Diff([]string{"G2", "G3"}, top); diff != "" {
		t.Errorf("wrong top genes (-expected +actual):\n%s", diff)
	}
	if got := vec.TopGenes(10); len(got) != 3 {
		t.Errorf("TopGenes should cap at vector length, got %d", len(got))
	}
}
