package bq

import (
	"log"
	"time"

	"github.com/carbocation/pfx"
)

const costObservabilityTable = "cost_observability"

type costRow struct {
	CallSetIdentifier  string    `bigquery:"call_set_identifier"`
	Step               string    `bigquery:"step"`
	Call               string    `bigquery:"call"`
	ShardIdentifier    string    `bigquery:"shard_identifier"`
	CallStartTimestamp time.Time `bigquery:"call_start_timestamp"`
	EventTimestamp     time.Time `bigquery:"event_timestamp"`
	EventKey           string    `bigquery:"event_key"`
	EventBytes         int64     `bigquery:"event_bytes"`
}

// WriteJobStats flushes the accumulated per-query costs into the
// cost_observability table of fqDataset, one row per executed query. When
// writeCostToDB is false it only logs the totals, so a dry run still shows
// what the extract scanned.
func (c *Client) WriteJobStats(fqDataset, callSetIdentifier, step, call, shardIdentifier string, writeCostToDB bool) error {
	var total int64
	for _, job := range c.Jobs {
		total += job.BytesProcessed
	}
	log.Printf("%d queries scanned %.2f MB total", len(c.Jobs), float64(total)/(1024*1024))

	if !writeCostToDB || len(c.Jobs) == 0 {
		return nil
	}

	project, dataset, err := SplitDataset(fqDataset)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	rows := make([]*costRow, 0, len(c.Jobs))
	for _, job := range c.Jobs {
		rows = append(rows, &costRow{
			CallSetIdentifier:  callSetIdentifier,
			Step:               step,
			Call:               call,
			ShardIdentifier:    shardIdentifier,
			CallStartTimestamp: job.StartTime.UTC(),
			EventTimestamp:     now,
			EventKey:           "BigQuery Query Scanned",
			EventBytes:         job.BytesProcessed,
		})
	}

	inserter := c.BQ.DatasetInProject(project, dataset).Table(costObservabilityTable).Inserter()
	if err := inserter.Put(c.Context, rows); err != nil {
		return pfx.Err(err)
	}

	return nil
}
