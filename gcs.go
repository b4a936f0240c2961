package gvstools

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

var gsPathPattern = regexp.MustCompile(`^gs://([^/]+)/(.+)$`)

// ParseGSPath splits a gs://bucket/object path into its bucket and object
// components.
func ParseGSPath(path string) (bucket, object string, err error) {
	match := gsPathPattern.FindStringSubmatch(path)
	if match == nil {
		return "", "", fmt.Errorf("'%s' does not look like a GCS path", path)
	}

	return match[1], match[2], nil
}

// OpenGS opens a Google Storage object for reading. The caller is responsible
// for closing the returned reader.
func OpenGS(ctx context.Context, client *storage.Client, path string) (io.ReadCloser, error) {
	bucket, object, err := ParseGSPath(path)
	if err != nil {
		return nil, err
	}

	rdr, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, pfx.Err(err)
	}

	return rdr, nil
}

// DownloadGS copies a Google Storage object to a local temporary file and
// returns the file's path. The caller is responsible for removing the file.
func DownloadGS(ctx context.Context, client *storage.Client, path string) (string, error) {
	rdr, err := OpenGS(ctx, client, path)
	if err != nil {
		return "", err
	}
	defer rdr.Close()

	local, err := os.CreateTemp("", "gvstools")
	if err != nil {
		return "", pfx.Err(err)
	}
	defer local.Close()

	if _, err := io.Copy(local, rdr); err != nil {
		os.Remove(local.Name())
		return "", pfx.Err(err)
	}

	return local.Name(), nil
}
