package vat

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAlleles(t *testing.T) {
	tests := []struct {
		ref, alt         string
		wantRef, wantAlt string
	}{
		{"ATCT", "A", "TCT", "-"},
		{"A", "C", "A", "C"},
		{"A", "AG", "-", "G"},
		{"CAT", "CGT", "AT", "GT"},
	}

	for _, tt := range tests {
		gotRef, gotAlt := normalizeAlleles(tt.ref, tt.alt)
		assert.Equal(t, tt.wantRef, gotRef, "%s/%s", tt.ref, tt.alt)
		assert.Equal(t, tt.wantAlt, gotAlt, "%s/%s", tt.ref, tt.alt)
	}
}

func TestMakeAnnotatedRowClinVarOrdering(t *testing.T) {
	variant := Variant{
		Vid:        "7-117559590-ATCT-A",
		Chromosome: "chr7",
		ClinVar: []ClinVarRecord{
			{
				ID:              "RCV01",
				Significance:    []string{"sleater", "kinney", "guitar", "solo", "pathogenic"},
				RefAllele:       "TCT",
				AltAllele:       "-",
				Phenotypes:      []string{"brunette"},
				LastUpdatedDate: "2020-03-01",
			},
			{
				ID:              "RCV02",
				Significance:    []string{"pathogenic", "LikELy paTHoGenIc", "conflicting data from submitters"},
				RefAllele:       "TCT",
				AltAllele:       "-",
				Phenotypes:      []string{"blonde"},
				LastUpdatedDate: "2020-03-02",
			},
		},
	}

	row := MakeAnnotatedRow(117559590, "ATCT", "A", variant)

	assert.Equal(t, []string{
		"likely pathogenic",
		"pathogenic",
		"conflicting data from submitters",
		"guitar",
		"kinney",
		"sleater",
		"solo",
	}, row.ClinVarClass)
	assert.Equal(t, []string{"RCV01", "RCV02"}, row.ClinVarID)
	assert.Equal(t, []string{"blonde", "brunette"}, row.ClinVarPheno)
	assert.Equal(t, "2020-03-02", row.ClinVarUpdated)
}

func TestMakeAnnotatedRowClinVarInclusion(t *testing.T) {
	variant := Variant{
		ClinVar: []ClinVarRecord{
			{ID: "RCV01", RefAllele: "TCT", AltAllele: "-", LastUpdatedDate: "2020-03-01"},
			{
				ID:              "nope",
				Significance:    []string{"carrie"},
				RefAllele:       "TCT",
				AltAllele:       "-",
				Phenotypes:      []string{"did this go through?"},
				LastUpdatedDate: "2020-03-02",
			},
			{ID: "RCV02", RefAllele: "T", AltAllele: "-"},
			{ID: "RCV03", RefAllele: "TCT", AltAllele: "G"},
		},
	}

	row := MakeAnnotatedRow(117559590, "ATCT", "A", variant)

	assert.Len(t, row.ClinVarID, 1)
	assert.Empty(t, row.ClinVarClass)
	assert.Empty(t, row.ClinVarPheno)
	assert.Equal(t, "2020-03-01", row.ClinVarUpdated)
}

func TestMakeAnnotatedRowNoMatchingAlleles(t *testing.T) {
	variant := Variant{
		Vid: "16-5226567-A-C",
		ClinVar: []ClinVarRecord{
			{ID: "RCV1111", Significance: []string{"likely benign"}, RefAllele: "A", AltAllele: "G"},
		},
	}

	row := MakeAnnotatedRow(5226567, "A", "C", variant)

	assert.Nil(t, row.ClinVarID)
	assert.Nil(t, row.ClinVarClass)
	assert.Nil(t, row.ClinVarPheno)
	assert.Empty(t, row.ClinVarUpdated)
}

func gzipLines(t *testing.T, lines ...string) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	zw := pgzip.NewWriter(&buf)
	for _, line := range lines {
		_, err := zw.Write([]byte(line + "\n"))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return &buf
}

func TestMakeAnnotationJSON(t *testing.T) {
	ac := int64(125)
	an := int64(152912)
	af := 0.000817

	position := Position{
		Chromosome: "chr7",
		Position:   117559590,
		RefAllele:  "ATCT",
		AltAlleles: []string{"A"},
		Variants: []Variant{
			{
				Vid:         "7-117559590-ATCT-A",
				Chromosome:  "chr7",
				Begin:       117559591,
				RefAllele:   "TCT",
				AltAllele:   "-",
				VariantType: "deletion",
				HgvsG:       "NC_000007.14:g.117559593_117559595del",
				DbSNP:       []string{"rs113993960"},
				GnomAD:      &GnomAD{AllAC: &ac, AllAN: &an, AllAF: &af},
			},
		},
	}
	posLine, err := json.Marshal(position)
	require.NoError(t, err)

	input := gzipLines(t,
		`{"header":{"annotator":"Nirvana 3.18.1"},"positions":[`,
		string(posLine)+",",
		"]}",
	)

	var out bytes.Buffer
	require.NoError(t, MakeAnnotationJSON(input, &out))

	zr, err := pgzip.NewReader(&out)
	require.NoError(t, err)
	defer zr.Close()

	var rows []Row
	scanner := bufio.NewScanner(zr)
	for scanner.Scan() {
		var row Row
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &row))
		rows = append(rows, row)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, rows, 1)
	assert.Equal(t, "7-117559590-ATCT-A", rows[0].Vid)
	assert.Equal(t, "chr7", rows[0].Contig)
	assert.Equal(t, int64(117559590), rows[0].Position)
	assert.Equal(t, "ATCT", rows[0].RefAllele)
	assert.Equal(t, "A", rows[0].AltAllele)
	assert.Equal(t, "deletion", rows[0].VariantType)
	require.NotNil(t, rows[0].GnomADAllAF)
	assert.InDelta(t, 0.000817, *rows[0].GnomADAllAF, 1e-9)
}

// Nirvana reports indel variants with trimmed alleles ("-" for a deletion).
// The load row must still carry the VCF-style alt from the positions record,
// and the trimmed form must still match the ClinVar record's alleles.
func TestMakeAnnotationJSONDeletionKeepsVCFAlt(t *testing.T) {
	position := Position{
		Chromosome: "chr7",
		Position:   117559590,
		RefAllele:  "ATCT",
		AltAlleles: []string{"A"},
		Variants: []Variant{
			{
				Vid:         "7-117559590-ATCT-A",
				Chromosome:  "chr7",
				RefAllele:   "TCT",
				AltAllele:   "-",
				VariantType: "deletion",
				ClinVar: []ClinVarRecord{
					{
						ID:              "RCV000007523",
						Significance:    []string{"pathogenic"},
						RefAllele:       "TCT",
						AltAllele:       "-",
						Phenotypes:      []string{"Cystic fibrosis"},
						LastUpdatedDate: "2020-03-01",
					},
				},
			},
		},
	}
	posLine, err := json.Marshal(position)
	require.NoError(t, err)

	input := gzipLines(t,
		`{"header":{"annotator":"Nirvana 3.18.1"},"positions":[`,
		string(posLine)+",",
		"]}",
	)

	var out bytes.Buffer
	require.NoError(t, MakeAnnotationJSON(input, &out))

	zr, err := pgzip.NewReader(&out)
	require.NoError(t, err)
	defer zr.Close()

	var row Row
	scanner := bufio.NewScanner(zr)
	require.True(t, scanner.Scan())
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &row))

	assert.Equal(t, "ATCT", row.RefAllele)
	assert.Equal(t, "A", row.AltAllele)
	assert.Equal(t, []string{"RCV000007523"}, row.ClinVarID)
	assert.Equal(t, []string{"pathogenic"}, row.ClinVarClass)
	assert.Equal(t, []string{"Cystic fibrosis"}, row.ClinVarPheno)
	assert.Equal(t, "2020-03-01", row.ClinVarUpdated)
}

func TestMakeAnnotationJSONRejectsGeneRecords(t *testing.T) {
	input := gzipLines(t,
		`{"header":{"annotator":"Nirvana 3.18.1"},"positions":[`,
		`{"chromosome":"chr7","position":117559590,"refAllele":"A","altAlleles":["G"],"variants":[]},`,
		`],"genes":[`,
		`{"name":"CFTR","omim":[]}`,
		"]}",
	)

	err := MakeAnnotationJSON(input, &strings.Builder{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gene records")
}
