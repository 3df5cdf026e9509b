package main

import (
	"flag"
	"fmt"
	"sort"
	"strings"

	sp "github.com/scipipe/scipipe"
	spcomp "github.com/scipipe/scipipe/components"

	"github.com/sjspielman/deconv/components"
	"github.com/sjspielman/deconv/decon"
	"github.com/sjspielman/deconv/expr"
)

var (
	plot     = flag.Bool("plot", false, "Plot graph and nothing more")
	maxTasks = flag.Int("maxtasks", 4, "Max number of local cores to use")

	sampleID  = flag.String("sample", "SRR3222409", "Sample identifier used for the matrix column label")
	quantFile = flag.String("quant", "data/abundance.tsv", "Per-transcript quantification file (kallisto/salmon layout)")
	t2gFile   = flag.String("t2g", "data/t2g.tsv", "Two-column transcript-to-gene map")
	annotFile = flag.String("annot", "data/annotation.tsv", "Annotation table with gene_id and gene_symbol columns")
	refFile   = flag.String("ref", "data/reference.tsv", "Reference signature table (genes x cell types)")
	exclFile  = flag.String("exclude", "data/tumor_exclude.txt", "Tumor-mode exclusion gene list")
	deconvCmd = flag.String("rscript", "Rscript", "Interpreter for the deconvolution driver scripts")
	sigScript = flag.String("sigscript", "scripts/run_signature_deconv.R", "Signature-method driver script")
	refScript = flag.String("refscript", "scripts/run_reference_deconv.R", "Reference-method driver script")
	unmapped  = flag.String("unmapped", "drop", "Policy for transcripts missing from the map: drop, bucket or strict")
	seed      = flag.Int64("seed", 42, "Seed passed to the deconvolution collaborators")
)

func main() {
	flag.Parse()
	wf := sp.NewWorkflow("deconv", *maxTasks)

	// ------------------------------------------------
	// Input sources
	// ------------------------------------------------
	quantSource := spcomp.NewFileSource(wf, "quant_file", *quantFile)
	t2gSource := spcomp.NewFileSource(wf, "t2g_file", *t2gFile)
	annotSource := spcomp.NewFileSource(wf, "annot_file", *annotFile)
	refSource := spcomp.NewFileSource(wf, "reference_file", *refFile)

	// --------------------------------------------------------------------------------
	// Aggregate transcript TPM to gene TPM
	// --------------------------------------------------------------------------------
	aggregate := components.NewAggregateQuant(wf, "aggregate_"+*sampleID,
		components.AggregateQuantConf{
			Unmapped: unmappedPolicy(*unmapped),
		})
	aggregate.InQuant().From(quantSource.Out())
	aggregate.InTranscriptGeneMap().From(t2gSource.Out())

	// --------------------------------------------------------------------------------
	// Reconcile identifiers and build the expression matrix
	// --------------------------------------------------------------------------------
	buildMatrix := components.NewBuildSampleMatrix(wf, "build_matrix_"+*sampleID,
		components.BuildSampleMatrixConf{
			SampleID: *sampleID,
		})
	buildMatrix.InAbundance().From(aggregate.OutAbundance())
	buildMatrix.InAnnotation().From(annotSource.Out())

	// --------------------------------------------------------------------------------
	// Harmonize the reference against the matrix gene set
	// --------------------------------------------------------------------------------
	harmonize := components.NewHarmonizeReference(wf, "harmonize_reference")
	harmonize.InMatrix().From(buildMatrix.OutMatrix())
	harmonize.InReference().From(refSource.Out())

	// --------------------------------------------------------------------------------
	// Run the signature method with and without tumor-mode filtering
	// --------------------------------------------------------------------------------
	runPlain := components.NewRunDeconvolution(wf, "deconv_signature",
		components.RunDeconvolutionConf{
			Interpreter: *deconvCmd,
			Script:      *sigScript,
			Config: decon.Config{
				Method: decon.MethodSignature,
				Seed:   *seed,
			},
		})
	runPlain.InMixture().From(buildMatrix.OutMatrix())
	runPlain.InReference().From(harmonize.OutHarmonized())
	runPlain.InSignatureGenes().From(harmonize.OutSignatureGenes())

	runTumor := components.NewRunDeconvolution(wf, "deconv_signature_tumor",
		components.RunDeconvolutionConf{
			Interpreter: *deconvCmd,
			Script:      *sigScript,
			Config: decon.Config{
				Method:    decon.MethodSignature,
				TumorMode: true,
				Seed:      *seed,
			},
			ExcludeFile: *exclFile,
			Tag:         "signature_tumor",
		})
	runTumor.InMixture().From(buildMatrix.OutMatrix())
	runTumor.InReference().From(harmonize.OutHarmonized())
	runTumor.InSignatureGenes().From(harmonize.OutSignatureGenes())

	// --------------------------------------------------------------------------------
	// Run the reference method with mRNA-content scaling
	// --------------------------------------------------------------------------------
	runRef := components.NewRunDeconvolution(wf, "deconv_reference",
		components.RunDeconvolutionConf{
			Interpreter: *deconvCmd,
			Script:      *refScript,
			Config: decon.Config{
				Method:      decon.MethodReference,
				MRNAScaling: true,
				Seed:        *seed,
			},
		})
	runRef.InMixture().From(buildMatrix.OutMatrix())
	runRef.InReference().From(harmonize.OutHarmonized())
	runRef.InSignatureGenes().From(harmonize.OutSignatureGenes())

	// --------------------------------------------------------------------------------
	// Compare fraction matrices across configurations and across methods
	// --------------------------------------------------------------------------------
	compareTumor := components.NewCompareFractions(wf, "compare_tumor_mode",
		components.CompareFractionsConf{SumTolerance: 1e-6, Tag: "tumor"})
	compareTumor.InFractionsA().From(runPlain.OutFractions())
	compareTumor.InFractionsB().From(runTumor.OutFractions())

	compareMethods := components.NewCompareFractions(wf, "compare_methods",
		components.CompareFractionsConf{SumTolerance: 1e-6, Tag: "methods"})
	compareMethods.InFractionsA().From(runPlain.OutFractions())
	compareMethods.InFractionsB().From(runRef.OutFractions())

	// Handle missing flags
	procNames := []string{}
	for procName := range wf.Procs() {
		procNames = append(procNames, procName)
	}
	sort.Strings(procNames)
	sp.Audit.Println("Workflow processes:\n" + strings.Join(procNames, "\n"))

	if *plot {
		dotFile := "deconv.dot"
		wf.PlotGraph(dotFile)
		fmt.Println("Wrote workflow graph to:", dotFile)
		return
	}
	wf.Run()
}

func unmappedPolicy(name string) expr.UnmappedPolicy {
	switch name {
	case "drop":
		return expr.UnmappedDrop
	case "bucket":
		return expr.UnmappedBucket
	case "strict":
		return expr.UnmappedStrict
	}
	sp.Error.Fatalf("unknown unmapped policy %q (want drop, bucket or strict)", name)
	return expr.UnmappedDrop
}
