package bq

import (
	"fmt"
	"regexp"
	"strings"
)

var labelPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// ParseQueryLabels builds the label map attached to every BigQuery job for
// billing attribution. runID and toolName become the id and gvs_tool_name
// labels, raw user labels are key=value strings, and the fixed cloud cost
// control labels (service, team, managedby) are applied last.
func ParseQueryLabels(runID, toolName, managedBy string, raw []string) (map[string]string, error) {
	labels := map[string]string{
		"id":            runID,
		"gvs_tool_name": toolName,
	}

	for _, entry := range raw {
		kv := strings.SplitN(entry, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("label %q did not pass validation--format should be 'key1=val1, key2=val2'", entry)
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		value := strings.ToLower(strings.TrimSpace(kv[1]))
		if !labelPattern.MatchString(key) || !labelPattern.MatchString(value) {
			return nil, fmt.Errorf("label key or value did not pass validation--format should be 'key1=val1, key2=val2'")
		}

		labels[key] = value
	}

	labels["service"] = "gvs"
	labels["team"] = "variants"
	labels["managedby"] = managedBy

	return labels, nil
}
