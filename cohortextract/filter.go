package cohortextract

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/carbocation/pfx"

	"github.com/broadinstitute/gvstools/intervals"
	"github.com/broadinstitute/gvstools/locus"
)

// LocationFilter renders intervals as a WHERE clause over the location
// column. Returns "" (no filtering) when the interval set is empty.
func LocationFilter(ivs []locus.Interval) (string, error) {
	if len(ivs) == 0 {
		return "", nil
	}
	if len(ivs) > maxIntervalFilters {
		return "", fmt.Errorf("%d intervals exceed the limit of %d locations per query", len(ivs), maxIntervalFilters)
	}

	clauses := make([]string, 0, len(ivs))
	for _, iv := range ivs {
		start, err := locus.EncodeLocation(iv.Chrom, iv.Start)
		if err != nil {
			return "", err
		}
		end, err := locus.EncodeLocation(iv.Chrom, iv.End)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, fmt.Sprintf("(location >= %d AND location <= %d)", start, end))
	}

	return "WHERE (" + strings.Join(clauses, " OR ") + ")", nil
}

// LocationFilterFromFile parses an interval list (or BED) file into a
// location filter. An oversized interval set is not an error: the filter is
// discarded with a warning and all locations are queried, matching how the
// extract has always degraded.
func LocationFilterFromFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", pfx.Err(err)
	}
	defer f.Close()

	ivs, err := intervals.Parse(f)
	if err != nil {
		return "", err
	}

	if len(ivs) > maxIntervalFilters {
		log.Printf("Trying to query over the limit of %d locations; %s will be discarded, and all locations will be queried.", maxIntervalFilters, path)
		return "", nil
	}

	return LocationFilter(ivs)
}
