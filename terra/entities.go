package terra

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

type entityQueryResponse struct {
	Results []struct {
		Name       string                     `json:"name"`
		Attributes map[string]json.RawMessage `json:"attributes"`
	} `json:"results"`
}

// SampleEntityColumns reads up to maxRows rows of a workspace entity table
// and groups the sampled values by column, in the shape ChooseVCFColumns
// expects. The entity ids themselves are reported under "<entityType>_id".
// Attributes whose values are not plain strings (numbers, entity references)
// are skipped; they cannot hold VCF paths.
func (c *Client) SampleEntityColumns(ctx context.Context, namespace, name, entityType string, maxRows int) (ColumnSamples, int, error) {
	var out entityQueryResponse

	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"page":     "1",
			"pageSize": strconv.Itoa(maxRows),
		}).
		SetResult(&out).
		Get(fmt.Sprintf("/api/workspaces/%s/%s/entityQuery/%s", namespace, name, entityType))
	if err != nil {
		return nil, 0, err
	}
	if resp.IsError() {
		return nil, 0, fmt.Errorf("rawls entity query for %s/%s %q failed: %s: %s", namespace, name, entityType, resp.Status(), resp.String())
	}

	samples := make(ColumnSamples)
	for _, row := range out.Results {
		samples[entityType+"_id"] = append(samples[entityType+"_id"], row.Name)

		for column, raw := range row.Attributes {
			var value string
			if err := json.Unmarshal(raw, &value); err != nil {
				continue
			}
			samples[column] = append(samples[column], value)
		}
	}

	return samples, len(out.Results), nil
}
