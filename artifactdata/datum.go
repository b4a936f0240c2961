// Package artifactdata generates synthetic labeled read sets for training and
// testing sequencing artifact models.
package artifactdata

// NumReadFeatures is the per-read feature count of the standard read tensors.
const NumReadFeatures = 5

// Variation is the class of variant a datum represents.
type Variation int

const (
	SNV Variation = iota
	Insertion
	Deletion
)

func (v Variation) String() string {
	switch v {
	case SNV:
		return "SNV"
	case Insertion:
		return "INSERTION"
	case Deletion:
		return "DELETION"
	}

	return "UNKNOWN"
}

// Label marks a datum as a true variant, a sequencing artifact, or unlabeled.
type Label int

const (
	Variant Label = iota
	Artifact
	Unlabeled
)

func (l Label) String() string {
	switch l {
	case Variant:
		return "VARIANT"
	case Artifact:
		return "ARTIFACT"
	case Unlabeled:
		return "UNLABELED"
	}

	return "UNKNOWN"
}

// Datum is one synthetic training example: a stack of reference-read feature
// vectors, a stack of alt-read feature vectors, and a variant-level info
// vector.
type Datum struct {
	RefSequence string
	Type        Variation
	Label       Label

	// RefReads and AltReads are row-major read-by-feature matrices. All rows
	// within one matrix have the same length.
	RefReads [][]float64
	AltReads [][]float64
	Info     []float64
}

// AltCount returns the number of alt reads in the datum.
func (d Datum) AltCount() int {
	return len(d.AltReads)
}
