package artifactdata

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// GaussianGenerator draws isotropic normal vectors with a per-component mean
// and standard deviation.
type GaussianGenerator struct {
	mean []float64
	std  []float64
	src  rand.Source
}

// NewGaussianGenerator builds a generator for vectors of len(mean) components.
// mean and std must have the same length.
func NewGaussianGenerator(mean, std []float64, src rand.Source) (*GaussianGenerator, error) {
	if len(mean) != len(std) {
		return nil, fmt.Errorf("mean has %d components but std has %d", len(mean), len(std))
	}

	return &GaussianGenerator{mean: mean, std: std, src: src}, nil
}

// Generate draws one vector.
func (g *GaussianGenerator) Generate() []float64 {
	out := make([]float64, len(g.mean))
	for i := range out {
		norm := distuv.Normal{Mu: g.mean[i], Sigma: g.std[i], Src: g.src}
		out[i] = norm.Rand()
	}

	return out
}

// GenerateReads draws a numReads-row matrix of read vectors.
func (g *GaussianGenerator) GenerateReads(numReads int) [][]float64 {
	out := make([][]float64, numReads)
	for i := range out {
		out[i] = g.Generate()
	}

	return out
}

func constants(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}

	return out
}

// Params controls the composition of a generated dataset.
type Params struct {
	ArtifactFraction  float64
	UnlabeledFraction float64
	IndelFraction     float64
	RefDownsampling   int
	AltDownsampling   int
	IsTrainingData    bool
	VAF               float64

	// DownsampleVariantsToMatchArtifacts keeps training variants at the same
	// small alt counts artifacts are drawn with, instead of the full
	// binomially drawn het alt count.
	DownsampleVariantsToMatchArtifacts bool
}

// DefaultParams returns the standard dataset composition.
func DefaultParams() Params {
	return Params{
		ArtifactFraction:                   0.5,
		UnlabeledFraction:                  0.1,
		IndelFraction:                      0.2,
		RefDownsampling:                    10,
		AltDownsampling:                    10,
		IsTrainingData:                     true,
		VAF:                                0.5,
		DownsampleVariantsToMatchArtifacts: true,
	}
}

const sequencingDepth = 100

// artifactAltCount draws the 3 to 10 alt reads assumed for an artifact.
func artifactAltCount(rng *rand.Rand) int {
	return 3 + rng.Intn(8)
}

// MakeRandomData generates numData examples whose info and alt-read tensors
// come from separate artifact and variant Gaussians. Reference reads always
// come from the variant read generator. Draws that end up with zero alt reads
// are skipped, so the result may hold fewer than numData examples.
func MakeRandomData(artInfoGen, varInfoGen, artReadGen, varReadGen *GaussianGenerator, numData int, p Params, rng *rand.Rand) []Datum {
	binomial := distuv.Binomial{N: sequencingDepth, P: p.VAF, Src: rng}

	var data []Datum
	for i := 0; i < numData; i++ {
		artifact := rng.Float64() < p.ArtifactFraction
		unlabeled := rng.Float64() < p.UnlabeledFraction

		label := Variant
		if artifact {
			label = Artifact
		}
		if unlabeled {
			label = Unlabeled
		}

		variantType := SNV
		if rng.Float64() < p.IndelFraction {
			variantType = Insertion
			if rng.Float64() < 0.5 {
				variantType = Deletion
			}
		}

		// Artifacts keep their original alt reads; variants are assumed to be
		// downsampled from a het call at the full depth.
		hetAltCount := int(binomial.Rand())

		var altCount int
		switch {
		case artifact, p.IsTrainingData && p.DownsampleVariantsToMatchArtifacts:
			altCount = artifactAltCount(rng)
		default:
			altCount = hetAltCount
			if altCount > p.AltDownsampling {
				altCount = p.AltDownsampling
			}
		}

		if altCount == 0 {
			continue
		}

		infoGen, readGen := varInfoGen, varReadGen
		if artifact {
			infoGen, readGen = artInfoGen, artReadGen
		}

		data = append(data, Datum{
			RefSequence: "GTAAAGT",
			Type:        variantType,
			Label:       label,
			RefReads:    varReadGen.GenerateReads(p.RefDownsampling),
			AltReads:    readGen.GenerateReads(altCount),
			Info:        infoGen.Generate(),
		})
	}

	return data
}

// MakeTwoGaussianData generates a dataset whose variant and artifact examples
// come from well separated Gaussians: variant info and reads centered at -1,
// artifact info and reads centered at +1, unit spread everywhere.
func MakeTwoGaussianData(numData int, p Params, rng *rand.Rand) []Datum {
	varInfoGen, _ := NewGaussianGenerator(constants(-1, 9), constants(1, 9), rng)
	artInfoGen, _ := NewGaussianGenerator(constants(1, 9), constants(1, 9), rng)
	varReadGen, _ := NewGaussianGenerator(constants(-1, 11), constants(1, 11), rng)
	artReadGen, _ := NewGaussianGenerator(constants(1, 11), constants(1, 11), rng)

	return MakeRandomData(artInfoGen, varInfoGen, artReadGen, varReadGen, numData, p, rng)
}

// MakeWideAndNarrowGaussianData generates a dataset whose variant and artifact
// examples share a zero mean but differ in spread: artifacts are twice as
// dispersed as variants.
func MakeWideAndNarrowGaussianData(numData int, p Params, rng *rand.Rand) []Datum {
	varInfoGen, _ := NewGaussianGenerator(constants(0, 9), constants(1, 9), rng)
	artInfoGen, _ := NewGaussianGenerator(constants(0, 9), constants(2, 9), rng)
	varReadGen, _ := NewGaussianGenerator(constants(0, 11), constants(1, 11), rng)
	artReadGen, _ := NewGaussianGenerator(constants(0, 11), constants(2, 11), rng)

	return MakeRandomData(artInfoGen, varInfoGen, artReadGen, varReadGen, numData, p, rng)
}

// MakeStrandBiasData generates SNV examples where artifacts and variants are
// identical standard Gaussians except that all of an artifact's alt reads
// share the same sign on read feature 0, mimicking strand bias.
func MakeStrandBiasData(numData int, p Params, rng *rand.Rand) []Datum {
	readGen, _ := NewGaussianGenerator(constants(0, NumReadFeatures), constants(1, NumReadFeatures), rng)
	binomial := distuv.Binomial{N: sequencingDepth, P: p.VAF, Src: rng}

	var data []Datum
	for i := 0; i < numData; i++ {
		artifact := rng.Float64() < p.ArtifactFraction
		unlabeled := rng.Float64() < p.UnlabeledFraction

		label := Variant
		if artifact {
			label = Artifact
		}
		if unlabeled {
			label = Unlabeled
		}

		altCount := int(binomial.Rand())
		if artifact {
			altCount = artifactAltCount(rng)
		}

		altTensorSize := altCount
		if artifact || p.IsTrainingData {
			altTensorSize = artifactAltCount(rng)
		} else if altTensorSize > p.AltDownsampling {
			altTensorSize = p.AltDownsampling
		}

		if altCount == 0 {
			continue
		}

		altReads := readGen.GenerateReads(altTensorSize)
		if artifact {
			sign := 1.0
			if rng.Float64() < 0.5 {
				sign = -1.0
			}
			for _, read := range altReads {
				read[0] = sign * math.Abs(read[0])
			}
		}

		data = append(data, Datum{
			RefSequence: "TGGGAATG",
			Type:        SNV,
			Label:       label,
			RefReads:    readGen.GenerateReads(p.RefDownsampling),
			AltReads:    altReads,
			Info:        make([]float64, NumReadFeatures),
		})
	}

	return data
}
