// Package intervals reads and rewrites the Picard interval_list and BED files
// that scope variant-store extracts.
package intervals

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"

	"github.com/broadinstitute/gvstools/locus"
)

// FilterChromosomes copies an interval_list from r to w, keeping only the
// requested chromosomes. @HD and @PG header lines always pass through. Every
// other line (including @SQ dictionary entries) is kept when it mentions one
// of the chromosomes, either surrounded by word boundaries or trailed by an
// underscore so that alt and random contigs stay with their parent.
func FilterChromosomes(w io.Writer, r io.Reader, chromosomes ...string) error {
	if len(chromosomes) == 0 {
		return fmt.Errorf("no chromosomes requested")
	}

	patterns := make([]*regexp.Regexp, 0, len(chromosomes))
	for _, c := range chromosomes {
		p, err := regexp.Compile(`\b` + regexp.QuoteMeta(c) + `\b|` + regexp.QuoteMeta(c) + `_`)
		if err != nil {
			return pfx.Err(err)
		}
		patterns = append(patterns, p)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		keep := strings.HasPrefix(line, "@HD") || strings.HasPrefix(line, "@PG")
		for _, p := range patterns {
			if keep {
				break
			}
			keep = p.MatchString(line)
		}

		if !keep {
			continue
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return pfx.Err(err)
		}
	}

	if err := scanner.Err(); err != nil {
		return pfx.Err(err)
	}

	return nil
}

// Parse reads intervals from an interval_list or BED stream. Header lines
// starting with @ (interval_list) or with "track"/"browser" (BED) are
// skipped; each remaining line contributes its first three columns. Start
// and end are carried as written, matching how the extract SQL consumes
// them.
func Parse(r io.Reader) ([]locus.Interval, error) {
	var out []locus.Interval

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" ||
			strings.HasPrefix(line, "@") ||
			strings.HasPrefix(line, "track") ||
			strings.HasPrefix(line, "browser") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("interval line %q has fewer than 3 columns", line)
		}

		start, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("interval line %q: %w", line, err)
		}
		end, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("interval line %q: %w", line, err)
		}

		out = append(out, locus.Interval{Chrom: fields[0], Start: start, End: end})
	}
	if err := scanner.Err(); err != nil {
		return nil, pfx.Err(err)
	}

	return out, nil
}
