package cohortextract

import (
	"strings"
	"testing"
)

func TestRefInsertSQL(t *testing.T) {
	sql := RefInsertSQL("proj.gvs.ref_ranges_001", "proj.cohort.my_cohort__REF_DATA",
		1, [][]int64{{1, 2, 3}}, false, "")

	expected := "\nINSERT INTO `proj.cohort.my_cohort__REF_DATA` (location, sample_id, length, state) \n WITH \n" +
		"    q_1_1 AS (SELECT location, sample_id, length, state FROM \n" +
		" `proj.gvs.ref_ranges_001` WHERE sample_id IN (1,2,3)), \n" +
		"q_all AS ((SELECT * FROM q_1_1))\n" +
		" (SELECT * FROM q_all )"
	if sql != expected {
		t.Errorf("RefInsertSQL:\n%q\nexpected:\n%q", sql, expected)
	}
}

func TestRefInsertSQLMultipleChunks(t *testing.T) {
	sql := RefInsertSQL("proj.gvs.ref_ranges_002", "proj.cohort.c__REF_DATA",
		2, [][]int64{{4001, 4002}, {4003}}, false, "")

	for _, want := range []string{
		"q_2_1 AS",
		"q_2_2 AS",
		"sample_id IN (4001,4002)",
		"sample_id IN (4003)",
		"q_all AS ((SELECT * FROM q_2_1) union all (SELECT * FROM q_2_2))",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("expected %q in:\n%s", want, sql)
		}
	}
}

func TestRefInsertSQLCompressed(t *testing.T) {
	sql := RefInsertSQL("proj.gvs.ref_ranges_001", "proj.cohort.c__REF_DATA",
		1, [][]int64{{5}}, true, "")

	if !strings.HasPrefix(sql, "CREATE TEMP FUNCTION intToState(state INT64)") {
		t.Error("compressed insert should begin with the helper function definitions")
	}
	for _, want := range []string{
		"CREATE TEMP FUNCTION UnpackRefRangeInfo(superpackEntry int64)",
		"UnpackRefRangeInfo(packed_ref_data).location as location",
		"UnpackRefRangeInfo(packed_ref_data).len as length",
		"UnpackRefRangeInfo(packed_ref_data).state as state",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("expected %q in:\n%s", want, sql)
		}
	}
}

func TestVetInsertSQL(t *testing.T) {
	sql := VetInsertSQL("proj.gvs.vet_003", "proj.cohort.c__VET_DATA",
		3, [][]int64{{9000}}, "WHERE ((location >= 1000000010000 AND location <= 1000000207666))")

	for _, want := range []string{
		"INSERT INTO `proj.cohort.c__VET_DATA` (location, sample_id, ref, alt, call_GT, call_GQ, call_AD," +
			" AS_QUALapprox, QUALapprox, call_PL, call_PGT, call_PID, call_PS)",
		"q_3_1 AS (SELECT location, sample_id, ref, alt, call_GT, call_GQ, call_AD," +
			" AS_QUALapprox, QUALapprox, call_PL, call_PGT, call_PID, SAFE_CAST(call_PS AS INT64) AS call_PS FROM",
		"`proj.gvs.vet_003` WHERE sample_id IN (9000)",
		" (SELECT * FROM q_all WHERE ((location >= 1000000010000 AND location <= 1000000207666)))",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("expected %q in:\n%s", want, sql)
		}
	}
}

func TestTableDDL(t *testing.T) {
	ddl := RefTableDDL("proj.cohort.c__REF_DATA", false)
	for _, want := range []string{
		"CREATE OR REPLACE TABLE `proj.cohort.c__REF_DATA`",
		"PARTITION BY RANGE_BUCKET(location, GENERATE_ARRAY(0, 26000000000000, 6500000000))",
		"CLUSTER BY location",
	} {
		if !strings.Contains(ddl, want) {
			t.Errorf("expected %q in:\n%s", want, ddl)
		}
	}
	if strings.Contains(ddl, "expiration_timestamp") {
		t.Error("TTL option should be absent unless requested")
	}

	ddl = VetTableDDL("proj.cohort.c__VET_DATA", true)
	for _, want := range []string{
		"call_PS       INT64",
		"AS_QUALapprox STRING",
		"OPTIONS( expiration_timestamp=TIMESTAMP_ADD(CURRENT_TIMESTAMP(), INTERVAL 14 DAY))",
	} {
		if !strings.Contains(ddl, want) {
			t.Errorf("expected %q in:\n%s", want, ddl)
		}
	}
}

func TestSamplesTableSQL(t *testing.T) {
	sql := SamplesTableSQL("proj.cohort.c__SAMPLES", "proj.temp.abcd_sample_names",
		"proj.gvs.sample_info", false, true, false)

	for _, want := range []string{
		"CREATE OR REPLACE TABLE `proj.cohort.c__SAMPLES`",
		"m.withdrawn,",
		"m.is_loaded IS TRUE AND m.is_control = false",
		"AND m.withdrawn IS NULL",
		"`proj.temp.abcd_sample_names` s JOIN",
		"`proj.gvs.sample_info` m ON (s.sample_name = m.sample_name)",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("expected %q in:\n%s", want, sql)
		}
	}

	// An explicit sample-names file overrides withdrawal.
	sql = SamplesTableSQL("proj.cohort.c__SAMPLES", "proj.temp.abcd_sample_names",
		"proj.gvs.sample_info", true, false, false)
	for _, want := range []string{"NULL as withdrawn,", "m.is_control = true"} {
		if !strings.Contains(sql, want) {
			t.Errorf("expected %q in:\n%s", want, sql)
		}
	}
	if strings.Contains(sql, "AND m.withdrawn IS NULL") {
		t.Error("withdrawn clause should be absent when not honoring withdrawal")
	}
}

func TestShardTableName(t *testing.T) {
	if got := ShardTableName(RefTablePrefix, 7); got != "ref_ranges_007" {
		t.Errorf("ShardTableName = %q", got)
	}
	if got := ShardTableName(VetTablePrefix, 250); got != "vet_250" {
		t.Errorf("ShardTableName = %q", got)
	}
}
