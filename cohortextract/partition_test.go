package cohortextract

import (
	"reflect"
	"testing"
)

func TestGetPartitionRange(t *testing.T) {
	for _, v := range []struct {
		i          int
		start, end int64
	}{
		{1, 1, 4000},
		{2, 4001, 8000},
		{250, 996001, 1000000},
	} {
		got, err := GetPartitionRange(v.i, 250)
		if err != nil {
			t.Fatalf("partition %d: %v", v.i, err)
		}
		if got.Start != v.start || got.End != v.end {
			t.Errorf("partition %d = [%d, %d], expected [%d, %d]", v.i, got.Start, got.End, v.start, v.end)
		}
	}
}

func TestGetPartitionRangeOutOfRange(t *testing.T) {
	for _, i := range []int{0, -1, 251} {
		if _, err := GetPartitionRange(i, 250); err == nil {
			t.Errorf("expected error for partition %d", i)
		}
	}
}

func TestSamplesForPartition(t *testing.T) {
	samples := []int64{1, 2, 4000, 4001, 7999, 8000, 8001, 900000}

	got, err := SamplesForPartition(samples, 1, 250)
	if err != nil {
		t.Fatal(err)
	}
	if expected := []int64{1, 2, 4000}; !reflect.DeepEqual(got, expected) {
		t.Errorf("partition 1 samples = %v, expected %v", got, expected)
	}

	got, err = SamplesForPartition(samples, 2, 250)
	if err != nil {
		t.Fatal(err)
	}
	if expected := []int64{4001, 7999, 8000}; !reflect.DeepEqual(got, expected) {
		t.Errorf("partition 2 samples = %v, expected %v", got, expected)
	}

	got, err = SamplesForPartition(samples, 4, 250)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("partition 4 samples = %v, expected none", got)
	}
}

func TestSplitList(t *testing.T) {
	samples := []int64{1, 2, 3, 4, 5, 6, 7}

	got := SplitList(samples, 3)
	expected := [][]int64{{1, 2, 3}, {4, 5, 6}, {7}}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("SplitList = %v, expected %v", got, expected)
	}

	if got := SplitList(samples, 10); len(got) != 1 || len(got[0]) != 7 {
		t.Errorf("oversized chunk: %v", got)
	}
	if got := SplitList(nil, 3); got != nil {
		t.Errorf("empty input should yield no chunks, got %v", got)
	}
}
