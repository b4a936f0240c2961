package intervals

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
)

// ScaleXYBedValues copies a weighted BED from r to w, multiplying the final
// column of chrX and chrY lines by the corresponding scale factor and
// truncating the product to an integer. The sex chromosomes take longer per
// base than the autosomes during extract, so their weights get inflated to
// even out shard runtimes. Scale factors below 1.0 are rejected.
func ScaleXYBedValues(w io.Writer, r io.Reader, xScale, yScale float64) error {
	if xScale < 1.0 {
		return fmt.Errorf("illegal X chromosome weight scale factor %v; scale factor value must be >= 1.0", xScale)
	}
	if yScale < 1.0 {
		return fmt.Errorf("illegal Y chromosome weight scale factor %v; scale factor value must be >= 1.0", yScale)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		scale := 0.0
		switch {
		case strings.HasPrefix(line, "chrX"):
			scale = xScale
		case strings.HasPrefix(line, "chrY"):
			scale = yScale
		default:
			if _, err := fmt.Fprintln(w, line); err != nil {
				return pfx.Err(err)
			}
			continue
		}

		fields := strings.Split(line, "\t")
		weight, err := strconv.ParseInt(fields[len(fields)-1], 10, 64)
		if err != nil {
			return fmt.Errorf("non-numeric weight in BED line %q: %w", line, err)
		}
		fields[len(fields)-1] = strconv.FormatInt(int64(float64(weight)*scale), 10)

		if _, err := fmt.Fprintln(w, strings.Join(fields, "\t")); err != nil {
			return pfx.Err(err)
		}
	}

	if err := scanner.Err(); err != nil {
		return pfx.Err(err)
	}

	return nil
}
