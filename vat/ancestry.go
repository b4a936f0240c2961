package vat

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"

	"github.com/broadinstitute/gvstools"
)

// ParseAncestry reads a delimited ancestry file and maps each sample id
// (column 0) to its subpopulation (column 4). The first line is assumed to be
// a header and is skipped.
func ParseAncestry(r io.ReadSeeker) (map[string]string, error) {
	delim := gvstools.DetermineDelimiter(r)
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, pfx.Err(err)
	}

	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1

	ancestry := make(map[string]string)

	for i := 0; ; i++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, pfx.Err(err)
		}

		if i == 0 {
			// Header
			continue
		}

		if len(row) < 5 {
			return nil, fmt.Errorf("ancestry line %d has %d columns, expected at least 5", i+1, len(row))
		}

		ancestry[row[0]] = row[4]
	}

	return ancestry, nil
}

// DownloadAncestry fetches a gs:// ancestry file to a local temporary file and
// returns its path. The caller is responsible for removing the file. Non-GCS
// paths are an error.
func DownloadAncestry(ctx context.Context, client *storage.Client, path string) (string, error) {
	if !strings.HasPrefix(path, "gs://") {
		return "", fmt.Errorf("'%s' does not look like a GCS path", path)
	}

	return gvstools.DownloadGS(ctx, client, path)
}
