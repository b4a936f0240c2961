// makeartifactdata writes a synthetic labeled dataset for artifact-model
// training as .npy files.
package main

import (
	"flag"
	"log"
	"os"

	"golang.org/x/exp/rand"

	"github.com/broadinstitute/gvstools/artifactdata"
)

func main() {
	var outputDir, kind string
	var numData int
	var seed uint64
	var testData bool

	p := artifactdata.DefaultParams()

	flag.StringVar(&outputDir, "output", "", "Directory to write the .npy files into")
	flag.StringVar(&kind, "kind", "two-gaussian", "Dataset flavor: two-gaussian, wide-narrow, or strand-bias")
	flag.IntVar(&numData, "num_data", 10000, "Number of examples to draw")
	flag.Uint64Var(&seed, "seed", 1, "Random seed")
	flag.BoolVar(&testData, "test_data", false, "Generate test data instead of training data")
	flag.Float64Var(&p.ArtifactFraction, "artifact_fraction", p.ArtifactFraction, "Fraction of examples labeled as artifacts")
	flag.Float64Var(&p.UnlabeledFraction, "unlabeled_fraction", p.UnlabeledFraction, "Fraction of examples left unlabeled")
	flag.Float64Var(&p.IndelFraction, "indel_fraction", p.IndelFraction, "Fraction of examples that are indels")
	flag.Float64Var(&p.VAF, "vaf", p.VAF, "Variant allele fraction for het alt-count draws")
	flag.Parse()

	if outputDir == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	p.IsTrainingData = !testData

	rng := rand.New(rand.NewSource(seed))

	var data []artifactdata.Datum
	switch kind {
	case "two-gaussian":
		data = artifactdata.MakeTwoGaussianData(numData, p, rng)
	case "wide-narrow":
		data = artifactdata.MakeWideAndNarrowGaussianData(numData, p, rng)
	case "strand-bias":
		data = artifactdata.MakeStrandBiasData(numData, p, rng)
	default:
		log.Fatalf("Unknown dataset kind %q", kind)
	}

	log.Printf("Generated %d examples", len(data))

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		log.Fatalln(err)
	}

	if err := artifactdata.WriteDataset(outputDir, data); err != nil {
		log.Fatalln(err)
	}
}
