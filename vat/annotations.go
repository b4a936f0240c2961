package vat

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/klauspost/pgzip"
)

// ClinVarRecord is one ClinVar entry from a Nirvana variant annotation.
type ClinVarRecord struct {
	ID              string   `json:"id"`
	Significance    []string `json:"significance"`
	RefAllele       string   `json:"refAllele"`
	AltAllele       string   `json:"altAllele"`
	Phenotypes      []string `json:"phenotypes"`
	LastUpdatedDate string   `json:"lastUpdatedDate"`
}

// GnomAD holds the genome-wide allele frequency fields from a Nirvana variant
// annotation.
type GnomAD struct {
	AllAC *int64   `json:"allAc"`
	AllAN *int64   `json:"allAn"`
	AllAF *float64 `json:"allAf"`
}

// Variant is one alt-allele annotation from a Nirvana positions line.
type Variant struct {
	Vid         string          `json:"vid"`
	Chromosome  string          `json:"chromosome"`
	Begin       int64           `json:"begin"`
	RefAllele   string          `json:"refAllele"`
	AltAllele   string          `json:"altAllele"`
	VariantType string          `json:"variantType"`
	HgvsG       string          `json:"hgvsg"`
	DbSNP       []string        `json:"dbsnp"`
	GnomAD      *GnomAD         `json:"gnomad"`
	ClinVar     []ClinVarRecord `json:"clinvar"`
}

// Position is one line of a Nirvana annotated-positions JSON file.
type Position struct {
	Chromosome string    `json:"chromosome"`
	Position   int64     `json:"position"`
	RefAllele  string    `json:"refAllele"`
	AltAlleles []string  `json:"altAlleles"`
	Variants   []Variant `json:"variants"`
}

// Row is one BigQuery load row for the variant annotations table.
type Row struct {
	Vid             string   `json:"vid"`
	Contig          string   `json:"contig"`
	Position        int64    `json:"position"`
	RefAllele       string   `json:"ref_allele"`
	AltAllele       string   `json:"alt_allele"`
	VariantType     string   `json:"variant_type"`
	GenomicLocation string   `json:"genomic_location,omitempty"`
	DbSNPRSID       []string `json:"dbsnp_rsid,omitempty"`
	GnomADAllAC     *int64   `json:"gnomad_all_ac,omitempty"`
	GnomADAllAN     *int64   `json:"gnomad_all_an,omitempty"`
	GnomADAllAF     *float64 `json:"gnomad_all_af,omitempty"`
	ClinVarID       []string `json:"clinvar_id,omitempty"`
	ClinVarClass    []string `json:"clinvar_classification,omitempty"`
	ClinVarPheno    []string `json:"clinvar_phenotype,omitempty"`
	ClinVarUpdated  string   `json:"clinvar_last_updated,omitempty"`
}

// significanceRanking fixes the output order of known ClinVar classification
// values. Values not listed here sort alphabetically after the listed ones.
var significanceRanking = []string{
	"likely pathogenic",
	"pathogenic",
	"conflicting data from submitters",
	"uncertain significance",
	"likely benign",
	"benign",
	"drug response",
	"association",
	"risk factor",
	"protective",
	"affects",
	"other",
	"not provided",
}

// normalizeAlleles converts VCF-style ref/alt alleles into the trimmed form
// ClinVar records use: shared leading bases are dropped from both alleles, and
// an allele that becomes empty is written as "-".
func normalizeAlleles(ref, alt string) (string, string) {
	for len(ref) > 0 && len(alt) > 0 && ref[0] == alt[0] {
		ref, alt = ref[1:], alt[1:]
	}

	if ref == "" {
		ref = "-"
	}
	if alt == "" {
		alt = "-"
	}

	return ref, alt
}

// rankSignificances lowercases, dedupes, and orders classification values by
// the fixed ranking, with unrecognized values alphabetical at the end.
func rankSignificances(values []string) []string {
	seen := make(map[string]struct{})
	for _, v := range values {
		seen[strings.ToLower(v)] = struct{}{}
	}

	var ranked, unranked []string
	for _, v := range significanceRanking {
		if _, ok := seen[v]; ok {
			ranked = append(ranked, v)
			delete(seen, v)
		}
	}
	for v := range seen {
		unranked = append(unranked, v)
	}
	sort.Strings(unranked)

	return append(ranked, unranked...)
}

func sortedUnique(values []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)

	return out
}

// MakeAnnotatedRow builds the load row for one alt allele at one position. The
// position, ref, and alt come from the VCF-style positions record; variant is
// the Nirvana annotation for that allele. Only ClinVar records whose id begins
// with RCV and whose alleles match the trimmed ref/alt contribute to the
// clinvar fields.
func MakeAnnotatedRow(position int64, ref, alt string, variant Variant) Row {
	row := Row{
		Vid:             variant.Vid,
		Contig:          variant.Chromosome,
		Position:        position,
		RefAllele:       ref,
		AltAllele:       alt,
		VariantType:     variant.VariantType,
		GenomicLocation: variant.HgvsG,
		DbSNPRSID:       variant.DbSNP,
	}

	if variant.GnomAD != nil {
		row.GnomADAllAC = variant.GnomAD.AllAC
		row.GnomADAllAN = variant.GnomAD.AllAN
		row.GnomADAllAF = variant.GnomAD.AllAF
	}

	trimmedRef, trimmedAlt := normalizeAlleles(ref, alt)

	var ids, classes, phenotypes []string
	var lastUpdated string
	for _, cv := range variant.ClinVar {
		if !strings.HasPrefix(cv.ID, "RCV") {
			continue
		}
		if cv.RefAllele != trimmedRef || cv.AltAllele != trimmedAlt {
			continue
		}

		ids = append(ids, cv.ID)
		classes = append(classes, cv.Significance...)
		phenotypes = append(phenotypes, cv.Phenotypes...)
		if cv.LastUpdatedDate > lastUpdated {
			lastUpdated = cv.LastUpdatedDate
		}
	}

	if len(ids) > 0 {
		row.ClinVarID = sortedUnique(ids)
		row.ClinVarClass = rankSignificances(classes)
		row.ClinVarPheno = sortedUnique(phenotypes)
		row.ClinVarUpdated = lastUpdated
	}

	return row
}

// MakeAnnotationJSON streams a Nirvana annotated-positions .json.gz (one JSON
// object per line) into a BigQuery-loadable .json.gz with one Row per alt
// allele. Inputs in the old combined format that still carry gene records are
// rejected.
func MakeAnnotationJSON(r io.Reader, w io.Writer) error {
	zr, err := pgzip.NewReader(r)
	if err != nil {
		return pfx.Err(err)
	}
	defer zr.Close()

	zw := pgzip.NewWriter(w)
	defer zw.Close()

	enc := json.NewEncoder(zw)

	scanner := bufio.NewScanner(zr)
	scanner.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)

	for i := 0; scanner.Scan(); i++ {
		line := strings.TrimRight(strings.TrimSpace(scanner.Text()), ",")
		if line == "" || line == "]" || line == "]}" {
			continue
		}

		if strings.Contains(line, `"genes"`) {
			return fmt.Errorf("line %d contains gene records; positions and genes must be split into separate files before loading", i+1)
		}

		if i == 0 && strings.Contains(line, `"header"`) {
			continue
		}

		var pos Position
		if err := json.Unmarshal([]byte(line), &pos); err != nil {
			return pfx.Err(fmt.Errorf("line %d: %w", i+1, err))
		}

		for j, variant := range pos.Variants {
			// The row keys on the VCF-style alt from the positions record.
			// The variant's own altAllele is Nirvana's trimmed form ("-" for
			// deletions) and only serves as a fallback for malformed lines.
			alt := variant.AltAllele
			if j < len(pos.AltAlleles) {
				alt = pos.AltAlleles[j]
			}

			if err := enc.Encode(MakeAnnotatedRow(pos.Position, pos.RefAllele, alt, variant)); err != nil {
				return pfx.Err(err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return pfx.Err(err)
	}

	if err := zw.Close(); err != nil {
		return pfx.Err(err)
	}

	return nil
}
