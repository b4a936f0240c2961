package cohortextract

import (
	"fmt"
	"strconv"

	"github.com/broadinstitute/gvstools/locus"
)

// A packed reference range squeezes a location, a run length, and a GQ-state
// into one int64:
//
//	bits 48-63  chromosome index
//	bits 16-47  position within the chromosome
//	bits  4-15  run length
//	bits  0-3   state
//
// The state nibble values above the GQ bands are symbolic: 7 is a variant
// placeholder, 8 a spanning deletion, 9 missing, 10 unknown.
const (
	stateVariant          = 7
	stateSpanningDeletion = 8
	stateMissing          = 9
	stateUnknown          = 10

	maxPackedPosition = 1<<32 - 1
	maxPackedLength   = 1<<12 - 1
)

// UnpackRefRange expands a packed reference-range entry. This mirrors the
// UnpackRefRangeInfo SQL function so fixtures and spot checks can be built
// without a query.
func UnpackRefRange(packed int64) (location, length int64, state string) {
	location = locus.ChromosomeSpan*((packed>>48)&0xFFFF) + ((packed >> 16) & 0xFFFFFFFF)
	length = (packed >> 4) & 0xFFF
	state = stateString(packed & 0xF)

	return location, length, state
}

// PackRefRange is the inverse of UnpackRefRange.
func PackRefRange(location, length int64, state string) (int64, error) {
	chrom := location / locus.ChromosomeSpan
	pos := location % locus.ChromosomeSpan

	if chrom < 0 || chrom > 0xFFFF {
		return 0, fmt.Errorf("location %d has unpackable chromosome index %d", location, chrom)
	}
	if pos > maxPackedPosition {
		return 0, fmt.Errorf("location %d has unpackable position %d", location, pos)
	}
	if length < 0 || length > maxPackedLength {
		return 0, fmt.Errorf("length %d does not fit in 12 bits", length)
	}

	nibble, err := stateNibble(state)
	if err != nil {
		return 0, err
	}

	return chrom<<48 | pos<<16 | length<<4 | nibble, nil
}

func stateString(nibble int64) string {
	switch nibble {
	case stateVariant:
		return "v"
	case stateSpanningDeletion:
		return "*"
	case stateMissing:
		return "m"
	case stateUnknown:
		return "u"
	}

	return strconv.FormatInt(nibble, 10)
}

func stateNibble(state string) (int64, error) {
	switch state {
	case "v":
		return stateVariant, nil
	case "*":
		return stateSpanningDeletion, nil
	case "m":
		return stateMissing, nil
	case "u":
		return stateUnknown, nil
	}

	n, err := strconv.ParseInt(state, 10, 64)
	if err != nil || n < 0 || n > 0xF {
		return 0, fmt.Errorf("unrecognized reference state %q", state)
	}

	return n, nil
}
