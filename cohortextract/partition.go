// Package cohortextract assembles the BigQuery SQL that copies a cohort's
// reference-range and variant rows out of the sharded variant-store tables
// into consolidated destination tables.
package cohortextract

import "fmt"

const (
	// RefTablePrefix and VetTablePrefix name the sharded source tables;
	// shard i holds samples (i-1)*SamplesPerPartition+1 through
	// i*SamplesPerPartition.
	RefTablePrefix = "ref_ranges_"
	VetTablePrefix = "vet_"

	// SamplesPerPartition is the number of sample ids each shard covers.
	SamplesPerPartition = 4000

	// samplesPerChunk bounds the sample ids named in a single subquery so
	// the assembled SQL stays under BigQuery's query length limits.
	samplesPerChunk = 1000

	// maxIntervalFilters bounds how many intervals can become location
	// predicates before the filter is abandoned entirely.
	maxIntervalFilters = 5000
)

// PartitionRange is the inclusive sample-id range a shard covers.
type PartitionRange struct {
	Start int64
	End   int64
}

// GetPartitionRange returns the sample-id range of shard i (1-based) out of
// tableCount shards.
func GetPartitionRange(i, tableCount int) (PartitionRange, error) {
	if i < 1 || i > tableCount {
		return PartitionRange{}, fmt.Errorf("partition %d out of range 1..%d", i, tableCount)
	}

	return PartitionRange{
		Start: int64(i-1)*SamplesPerPartition + 1,
		End:   int64(i) * SamplesPerPartition,
	}, nil
}

// SamplesForPartition selects the sample ids that live in shard i.
func SamplesForPartition(sampleIDs []int64, i, tableCount int) ([]int64, error) {
	r, err := GetPartitionRange(i, tableCount)
	if err != nil {
		return nil, err
	}

	var out []int64
	for _, s := range sampleIDs {
		if r.Start <= s && s <= r.End {
			out = append(out, s)
		}
	}

	return out, nil
}

// SplitList chunks samples into pieces of at most n (the last piece may be
// short).
func SplitList(samples []int64, n int) [][]int64 {
	if n <= 0 {
		return nil
	}

	var out [][]int64
	for start := 0; start < len(samples); start += n {
		end := start + n
		if end > len(samples) {
			end = len(samples)
		}
		out = append(out, samples[start:end])
	}

	return out
}
