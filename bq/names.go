package bq

import (
	"fmt"
	"strings"
)

// SplitDataset splits a fully qualified "project.dataset" name.
func SplitDataset(fq string) (project, dataset string, err error) {
	parts := strings.Split(fq, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%q is not a project.dataset name", fq)
	}

	return parts[0], parts[1], nil
}

// SplitTable splits a fully qualified "project.dataset.table" name.
func SplitTable(fq string) (project, dataset, table string, err error) {
	parts := strings.Split(fq, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", fmt.Errorf("%q is not a project.dataset.table name", fq)
	}

	return parts[0], parts[1], parts[2], nil
}
