package cohortextract

import (
	"fmt"
	"strconv"
	"strings"
)

// extractTableTTL is appended to the destination table DDL when the caller
// wants the extract tables to clean themselves up.
const extractTableTTL = "OPTIONS( expiration_timestamp=TIMESTAMP_ADD(CURRENT_TIMESTAMP(), INTERVAL 14 DAY))"

// RefRangeHelperFunctions defines the temp SQL functions that expand
// bit-packed reference rows. Prepended to every compressed-reference insert.
const RefRangeHelperFunctions = `CREATE TEMP FUNCTION intToState(state INT64)
RETURNS string
AS (
    CASE state
WHEN 7 THEN 'v'
WHEN 8 THEN '*'
WHEN 9 THEN 'm'
WHEN 10 THEN 'u'
ELSE CAST(state as string)
END
);

CREATE TEMP FUNCTION UnpackRefRangeInfo(superpackEntry int64)
RETURNS STRUCT<location INT64, len INT64, state string>
AS (
    STRUCT(
        1000000000000 * ((superpackEntry >> 48) & 0xFFFF) + ((superpackEntry >> 16) & 0xFFFFFFFF),
        (superpackEntry >> 4) & 0xFFF,
        intToState(superpackEntry & 0xF))
);
`

// RefTableDDL creates the destination __REF_DATA table, partitioned and
// clustered by location.
func RefTableDDL(fqTable string, ttl bool) string {
	return fmt.Sprintf(`CREATE OR REPLACE TABLE `+"`%s`"+`
(
      location      INT64,
      sample_id     INT64,
      length        INT64,
      state         STRING
)
  PARTITION BY RANGE_BUCKET(location, GENERATE_ARRAY(0, 26000000000000, 6500000000))
  CLUSTER BY location
  %s`, fqTable, ttlOption(ttl))
}

// VetTableDDL creates the destination __VET_DATA table.
func VetTableDDL(fqTable string, ttl bool) string {
	return fmt.Sprintf(`CREATE OR REPLACE TABLE `+"`%s`"+`
(
      location      INT64,
      sample_id     INT64,
      ref           STRING,
      alt           STRING,
      call_GT       STRING,
      call_GQ       INT64,
      call_AD       STRING,
      AS_QUALapprox STRING,
      QUALapprox    STRING,
      call_PL       STRING,
      call_PGT      STRING,
      call_PID      STRING,
      call_PS       INT64
)
  PARTITION BY RANGE_BUCKET(location, GENERATE_ARRAY(0, 26000000000000, 6500000000))
  CLUSTER BY location
  %s`, fqTable, ttlOption(ttl))
}

// SamplesTableSQL creates the destination __SAMPLES table by joining the
// table of requested sample names against the sample mapping table. When
// honorWithdrawn is set, withdrawn samples are excluded and their withdrawn
// date carried through; an explicitly supplied name list overrides withdrawal
// and the column is nulled out.
func SamplesTableSQL(fqDestination, fqSampleNames, fqSampleMapping string, controlSamples, honorWithdrawn, ttl bool) string {
	withdrawnColumn := "NULL as withdrawn,"
	withdrawnClause := ""
	if honorWithdrawn {
		withdrawnColumn = "m.withdrawn,"
		withdrawnClause = "AND m.withdrawn IS NULL"
	}

	return fmt.Sprintf(`CREATE OR REPLACE TABLE `+"`%s`"+` %s
AS (
    SELECT m.sample_id, m.sample_name, m.is_loaded, %s m.is_control FROM `+"`%s`"+` s JOIN
    `+"`%s`"+` m ON (s.sample_name = m.sample_name) WHERE
         m.is_loaded IS TRUE AND m.is_control = %t
         %s
)`, fqDestination, ttlOption(ttl), withdrawnColumn, fqSampleNames, fqSampleMapping, controlSamples, withdrawnClause)
}

func ttlOption(ttl bool) string {
	if ttl {
		return extractTableTTL
	}

	return ""
}

func sampleStanza(samples []int64) string {
	strs := make([]string, 0, len(samples))
	for _, s := range samples {
		strs = append(strs, strconv.FormatInt(s, 10))
	}

	return strings.Join(strs, ",")
}

func refSubselect(fqRefTable string, samples []int64, id string) string {
	return fmt.Sprintf("    q_%s AS (SELECT location, sample_id, length, state FROM \n"+
		" `%s` WHERE sample_id IN (%s)), ", id, fqRefTable, sampleStanza(samples))
}

func compressedRefSubselect(fqRefTable string, samples []int64, id string) string {
	return fmt.Sprintf("    q_%s AS (SELECT UnpackRefRangeInfo(packed_ref_data).location as location, sample_id,"+
		" UnpackRefRangeInfo(packed_ref_data).len as length, UnpackRefRangeInfo(packed_ref_data).state as state FROM \n"+
		" `%s` WHERE sample_id IN (%s)), ", id, fqRefTable, sampleStanza(samples))
}

func vetSubselect(fqVetTable string, samples []int64, id string) string {
	return fmt.Sprintf("    q_%s AS (SELECT location, sample_id, ref, alt, call_GT, call_GQ, call_AD,"+
		" AS_QUALapprox, QUALapprox, call_PL, call_PGT, call_PID, SAFE_CAST(call_PS AS INT64) AS call_PS FROM \n"+
		" `%s` WHERE sample_id IN (%s)), ", id, fqVetTable, sampleStanza(samples))
}

// assembleInsert stitches the per-chunk subselects into a single INSERT:
// a WITH clause per chunk, a q_all UNION of the chunks, and the optional
// location filter applied to the union.
func assembleInsert(insert string, ids []string, subselects []string, locationFilter string) string {
	union := make([]string, 0, len(ids))
	for _, id := range ids {
		union = append(union, fmt.Sprintf("(SELECT * FROM q_%s)", id))
	}

	return insert + strings.Join(subselects, "\n") + "\n" +
		"q_all AS (" + strings.Join(union, " union all ") + ")\n" +
		fmt.Sprintf(" (SELECT * FROM q_all %s)", locationFilter)
}

// RefInsertSQL builds the INSERT that copies one shard's reference rows for
// the given sample-id chunks into the destination table.
func RefInsertSQL(fqRefTable, fqDestination string, partition int, chunks [][]int64, compressed bool, locationFilter string) string {
	insert := fmt.Sprintf("\nINSERT INTO `%s` (location, sample_id, length, state) \n WITH \n", fqDestination)

	var ids, subs []string
	for j, chunk := range chunks {
		id := fmt.Sprintf("%d_%d", partition, j+1)
		ids = append(ids, id)
		if compressed {
			subs = append(subs, compressedRefSubselect(fqRefTable, chunk, id))
		} else {
			subs = append(subs, refSubselect(fqRefTable, chunk, id))
		}
	}

	sql := assembleInsert(insert, ids, subs, locationFilter)
	if compressed {
		sql = RefRangeHelperFunctions + sql
	}

	return sql
}

// VetInsertSQL builds the INSERT that copies one shard's variant rows for the
// given sample-id chunks into the destination table.
func VetInsertSQL(fqVetTable, fqDestination string, partition int, chunks [][]int64, locationFilter string) string {
	insert := fmt.Sprintf("\nINSERT INTO `%s` (location, sample_id, ref, alt, call_GT, call_GQ, call_AD,"+
		" AS_QUALapprox, QUALapprox, call_PL, call_PGT, call_PID, call_PS) \n WITH \n", fqDestination)

	var ids, subs []string
	for j, chunk := range chunks {
		id := fmt.Sprintf("%d_%d", partition, j+1)
		ids = append(ids, id)
		subs = append(subs, vetSubselect(fqVetTable, chunk, id))
	}

	return assembleInsert(insert, ids, subs, locationFilter)
}

// ShardTableName returns the zero-padded name of shard i, e.g.
// ref_ranges_007.
func ShardTableName(prefix string, i int) string {
	return fmt.Sprintf("%s%03d", prefix, i)
}
