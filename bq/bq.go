// Package bq wraps the BigQuery client with the labeling, retry, and cost
// accounting conventions shared by the variant-store tools.
package bq

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/carbocation/pfx"
	"google.golang.org/api/googleapi"
)

const (
	maxQueryAttempts = 3
	retryBaseDelay   = 10 * time.Second
)

// Client carries a BigQuery connection plus the default labels attached to
// every query it runs.
type Client struct {
	Context context.Context
	BQ      *bigquery.Client
	Project string
	Labels  map[string]string

	// Jobs accumulates one entry per executed query, for the cost ledger.
	Jobs []JobStat
}

// JobStat records what a single query cost.
type JobStat struct {
	Label          string
	BytesProcessed int64
	StartTime      time.Time
}

// NewClient connects to BigQuery in the given billing project.
func NewClient(ctx context.Context, project string, labels map[string]string) (*Client, error) {
	client, err := bigquery.NewClient(ctx, project)
	if err != nil {
		return nil, pfx.Err(err)
	}

	return &Client{
		Context: ctx,
		BQ:      client,
		Project: project,
		Labels:  labels,
	}, nil
}

// Close releases the underlying BigQuery connection.
func (c *Client) Close() error {
	return c.BQ.Close()
}

// ExecuteWithRetry runs a query with the client's default labels plus a
// gvs_query_name derived from label, retrying transient server failures.
// The returned iterator is positioned at the first result row.
func (c *Client) ExecuteWithRetry(label, sql string) (*bigquery.RowIterator, error) {
	var lastErr error

	for attempt := 0; attempt < maxQueryAttempts; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay << (attempt - 1)
			log.Printf("Retrying %q in %s after: %v", label, delay, lastErr)
			select {
			case <-time.After(delay):
			case <-c.Context.Done():
				return nil, c.Context.Err()
			}
		}

		itr, err := c.runOnce(label, sql)
		if err == nil {
			return itr, nil
		}
		lastErr = err

		if !transient(err) {
			break
		}
	}

	return nil, pfx.Err(lastErr)
}

func (c *Client) runOnce(label, sql string) (*bigquery.RowIterator, error) {
	q := c.BQ.Query(sql)
	q.Priority = bigquery.InteractivePriority
	q.Labels = make(map[string]string, len(c.Labels)+1)
	for k, v := range c.Labels {
		q.Labels[k] = v
	}
	q.Labels["gvs_query_name"] = strings.ReplaceAll(label, " ", "-")

	start := time.Now()
	job, err := q.Run(c.Context)
	if err != nil {
		return nil, err
	}

	status, err := job.Wait(c.Context)
	if err != nil {
		return nil, err
	}
	if err := status.Err(); err != nil {
		return nil, err
	}

	stat := JobStat{Label: label, StartTime: start}
	if last := job.LastStatus(); last != nil && last.Statistics != nil {
		stat.BytesProcessed = last.Statistics.TotalBytesProcessed
	}
	c.Jobs = append(c.Jobs, stat)

	return job.Read(c.Context)
}

// transient reports whether an error is worth retrying: rate limiting or a
// server-side failure, as opposed to a malformed query.
func transient(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == 429 || gerr.Code >= 500
	}

	return false
}
