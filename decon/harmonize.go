package decon

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Harmonize pads a reference profile so its gene set covers targetGenes,
// appending an all-zero row for every target gene the reference lacks. The
// returned signature list is the reference's gene set captured strictly
// before padding: the collaborators need the dense shape to avoid dimension
// errors, but must still weight only the originally-informative rows.
//
// Padded rows follow the original rows in sorted gene order, which keeps the
// layout stable across runs. If nothing is missing the reference is returned
// unchanged.
func Harmonize(ref *Reference, targetGenes []string) (*Reference, []string) {
	signature := ref.Genes()

	have := make(map[string]bool, len(ref.genes))
	for _, g := range ref.genes {
		have[g] = true
	}
	missingSet := map[string]bool{}
	for _, g := range targetGenes {
		if !have[g] && !missingSet[g] {
			missingSet[g] = true
		}
	}
	if len(missingSet) == 0 {
		return ref, signature
	}
	missing := make([]string, 0, len(missingSet))
	for g := range missingSet {
		missing = append(missing, g)
	}
	sort.Strings(missing)

	nGenes := len(ref.genes) + len(missing)
	nTypes := len(ref.cellTypes)
	padded := &Reference{
		genes:     append(ref.Genes(), missing...),
		cellTypes: ref.CellTypes(),
		weights:   mat.NewDense(nGenes, nTypes, nil),
	}
	for i := range ref.genes {
		for j := 0; j < nTypes; j++ {
			padded.weights.Set(i, j, ref.weights.At(i, j))
		}
	}
	// Rows beyond the original block stay at their zero value.
	return padded, signature
}
