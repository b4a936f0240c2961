package terra

import (
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"
)

// ColumnSamples maps an entity-table column name to the values sampled for
// it across up to sampledRows rows.
type ColumnSamples map[string][]string

var (
	endsInVCFPattern      = regexp.MustCompile(`^.*vcf$`)
	endsInVCFIndexPattern = regexp.MustCompile(`^.*vcf_index$`)
	containsReblocked     = regexp.MustCompile(`.*reblocked.*`)
	pathEndsInVCFGz       = regexp.MustCompile(`^.*\.vcf\.gz$`)
	pathEndsInVCFGzTbi    = regexp.MustCompile(`^.*\.vcf\.gz\.tbi$`)
)

// ChooseVCFColumns picks the entity-table columns holding the sample VCFs
// and their indexes. Explicit user choices win outright. Otherwise a column
// qualifies as the VCF column when its name ends in "vcf" and its values
// look like .vcf.gz paths (analogously for the index column, with
// "vcf_index" and .vcf.gz.tbi); when several columns qualify the reblocked
// ones are preferred, and any remaining ambiguity is an error. Columns seen
// in fewer than 95% of the sampled rows are ignored as sparse.
func ChooseVCFColumns(samples ColumnSamples, sampledRows int, userVCFColumn, userIndexColumn string) (vcfColumn, indexColumn string, err error) {
	if userVCFColumn != "" && userIndexColumn != "" {
		return userVCFColumn, userIndexColumn, nil
	}
	if (userVCFColumn == "") != (userIndexColumn == "") {
		return "", "", fmt.Errorf("the vcf and vcf index columns must be given together or not at all")
	}

	cutoff := float64(sampledRows) * 0.95
	log.Printf("Sampled %d rows total. Throwing away any column under %g entries", sampledRows, cutoff)

	var vcfCandidates, indexCandidates []string
	for column, values := range samples {
		if float64(len(values)) < cutoff || len(values) == 0 {
			continue
		}

		switch {
		case endsInVCFIndexPattern.MatchString(column) && pathEndsInVCFGzTbi.MatchString(values[0]):
			indexCandidates = append(indexCandidates, column)
		case endsInVCFPattern.MatchString(column) && pathEndsInVCFGz.MatchString(values[0]):
			vcfCandidates = append(vcfCandidates, column)
		}
	}

	vcfColumn, err = narrow("vcf", vcfCandidates)
	if err != nil {
		return "", "", err
	}
	indexColumn, err = narrow("vcf index", indexCandidates)
	if err != nil {
		return "", "", err
	}

	// The pair has to agree: an index column named after a different VCF
	// column means the heuristic picked two unrelated columns.
	if indexColumn != vcfColumn+"_index" {
		return "", "", fmt.Errorf("vcf column %q and index column %q do not form a pair", vcfColumn, indexColumn)
	}

	return vcfColumn, indexColumn, nil
}

// narrow reduces candidate columns to a single winner, preferring reblocked
// columns when there is competition.
func narrow(kind string, candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", fmt.Errorf("could not find a %s column", kind)
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	var reblocked []string
	for _, c := range candidates {
		if containsReblocked.MatchString(c) {
			reblocked = append(reblocked, c)
		}
	}
	if len(reblocked) == 1 {
		return reblocked[0], nil
	}

	sort.Strings(candidates)
	return "", fmt.Errorf("found multiple %s columns: %s", kind, strings.Join(candidates, ", "))
}
