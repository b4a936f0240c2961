package intervals

import (
	"strings"
	"testing"
)

const testIntervalList = `@HD	VN:1.6
@SQ	SN:chr1	LN:248956422
@SQ	SN:chr1_KI270706v1_random	LN:175055
@SQ	SN:chr2	LN:242193529
@SQ	SN:chr10	LN:133797422
@PG	ID:filter	PN:filter
chr1	10000	207666	+	interval-1
chr1_KI270706v1_random	1	175055	+	interval-2
chr2	10000	20000	+	interval-3
chr10	50000	60000	+	interval-4
`

func TestFilterChromosomes(t *testing.T) {
	out := &strings.Builder{}
	if err := FilterChromosomes(out, strings.NewReader(testIntervalList), "chr1"); err != nil {
		t.Fatal(err)
	}

	expected := `@HD	VN:1.6
@SQ	SN:chr1	LN:248956422
@SQ	SN:chr1_KI270706v1_random	LN:175055
@PG	ID:filter	PN:filter
chr1	10000	207666	+	interval-1
chr1_KI270706v1_random	1	175055	+	interval-2
`
	if out.String() != expected {
		t.Errorf("FilterChromosomes output:\n%s\nexpected:\n%s", out.String(), expected)
	}
}

func TestFilterChromosomesDoesNotMatchPrefix(t *testing.T) {
	// chr1 must not drag along chr10.
	out := &strings.Builder{}
	if err := FilterChromosomes(out, strings.NewReader(testIntervalList), "chr1"); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out.String(), "chr10") {
		t.Errorf("chr10 lines leaked into a chr1 filter:\n%s", out.String())
	}
}

func TestFilterChromosomesMultiple(t *testing.T) {
	out := &strings.Builder{}
	if err := FilterChromosomes(out, strings.NewReader(testIntervalList), "chr2", "chr10"); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"interval-3", "interval-4", "@HD", "@PG"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in output:\n%s", want, out.String())
		}
	}
	if strings.Contains(out.String(), "interval-1") {
		t.Errorf("unexpected chr1 interval in output:\n%s", out.String())
	}
}

func TestFilterChromosomesRequiresChromosomes(t *testing.T) {
	if err := FilterChromosomes(&strings.Builder{}, strings.NewReader(testIntervalList)); err == nil {
		t.Error("expected error when no chromosomes are given")
	}
}

func TestParseIntervalList(t *testing.T) {
	got, err := Parse(strings.NewReader(testIntervalList))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 intervals, got %d", len(got))
	}
	if got[0].Chrom != "chr1" || got[0].Start != 10000 || got[0].End != 207666 {
		t.Errorf("unexpected first interval: %+v", got[0])
	}
}

func TestParseBED(t *testing.T) {
	bed := "track name=weights\nchr1\t0\t10000\t42\nchrX\t100\t200\t7\n"
	got, err := Parse(strings.NewReader(bed))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 intervals, got %d", len(got))
	}
	if got[1].Chrom != "chrX" || got[1].Start != 100 || got[1].End != 200 {
		t.Errorf("unexpected second interval: %+v", got[1])
	}
}

func TestParseRejectsShortLines(t *testing.T) {
	if _, err := Parse(strings.NewReader("chr1\t100\n")); err == nil {
		t.Error("expected error for a 2-column line")
	}
}
