package cohortextract

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/carbocation/pfx"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/broadinstitute/gvstools/bq"
)

// ToolName is the gvs_tool_name label value for this extract.
const ToolName = "gvs_prepare_ranges_callset"

// Config is the full parameter set of a cohort extract run. Exactly one of
// SampleNamesFile and FqCohortSampleNames must be set.
type Config struct {
	CallSetIdentifier       string
	ControlSamples          bool
	FqRangesDataset         string
	MaxTables               int
	SampleNamesFile         string
	FqCohortSampleNames     string
	FqTempTableDataset      string
	FqDestinationDataset    string
	DestinationTablePrefix  string
	FqSampleMappingTable    string
	TempTableTTLHours       int
	OnlyOutputVetTables     bool
	WriteCostToDB           bool
	UseCompressedReferences bool
	EnableExtractTableTTL   bool
	IntervalListPath        string
}

func (cfg Config) validate() error {
	if (cfg.SampleNamesFile == "") == (cfg.FqCohortSampleNames == "") {
		return fmt.Errorf("exactly one of a sample names file and a cohort sample names table must be given")
	}
	if cfg.MaxTables < 1 {
		return fmt.Errorf("max tables must be at least 1")
	}

	return nil
}

// NewRunPrefix returns the short random prefix that names a run's temp
// tables and labels its queries.
func NewRunPrefix() string {
	return strings.Split(uuid.New().String(), "-")[0]
}

// Engine drives one cohort extract against BigQuery.
type Engine struct {
	BQ        *bq.Client
	RunPrefix string

	cfg Config
}

func NewEngine(client *bq.Client, cfg Config, runPrefix string) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Engine{BQ: client, RunPrefix: runPrefix, cfg: cfg}, nil
}

// Run executes the extract: stage sample names, build the __SAMPLES table,
// then create and populate the __REF_DATA and __VET_DATA destination tables.
// The cost ledger is flushed even when the extract fails partway.
func (e *Engine) Run() (err error) {
	cfg := e.cfg

	fqDestinationRef := fmt.Sprintf("%s.%s__REF_DATA", cfg.FqDestinationDataset, cfg.DestinationTablePrefix)
	fqDestinationVet := fmt.Sprintf("%s.%s__VET_DATA", cfg.FqDestinationDataset, cfg.DestinationTablePrefix)
	fqDestinationSamples := fmt.Sprintf("%s.%s__SAMPLES", cfg.FqDestinationDataset, cfg.DestinationTablePrefix)

	defer func() {
		statsErr := e.BQ.WriteJobStats(cfg.FqDestinationDataset, cfg.CallSetIdentifier,
			"GvsPrepareRanges", "PrepareRangesCallsetTask", e.RunPrefix, cfg.WriteCostToDB)
		if err == nil {
			err = statsErr
		}
	}()

	log.Printf("Using %d tables in %s...", cfg.MaxTables, cfg.FqRangesDataset)

	locationFilter := ""
	if cfg.IntervalListPath != "" {
		locationFilter, err = LocationFilterFromFile(cfg.IntervalListPath)
		if err != nil {
			return err
		}
	}

	// With an explicit file of sample names the cohort is taken as given,
	// withdrawal dates notwithstanding. A cohort table goes through the
	// sample mapping table's withdrawn column instead.
	fqSampleNames := cfg.FqCohortSampleNames
	honorWithdrawn := true
	if cfg.SampleNamesFile != "" {
		fqSampleNames, err = e.loadSampleNames()
		if err != nil {
			return err
		}
		honorWithdrawn = false
	}

	if !cfg.OnlyOutputVetTables {
		sql := SamplesTableSQL(fqDestinationSamples, fqSampleNames, cfg.FqSampleMappingTable,
			cfg.ControlSamples, honorWithdrawn, cfg.EnableExtractTableTTL)
		log.Println(sql)
		if _, err := e.BQ.ExecuteWithRetry("create extract sample table", sql); err != nil {
			return err
		}
	}

	sampleIDs, err := e.sampleIDs(fqDestinationSamples)
	if err != nil {
		return err
	}

	if !cfg.OnlyOutputVetTables {
		ddl := RefTableDDL(fqDestinationRef, cfg.EnableExtractTableTTL)
		log.Println(ddl)
		if _, err := e.BQ.ExecuteWithRetry("create final export ref table", ddl); err != nil {
			return err
		}
		if err := e.populate(refPopulation, fqDestinationRef, sampleIDs, locationFilter); err != nil {
			return err
		}
	}

	ddl := VetTableDDL(fqDestinationVet, cfg.EnableExtractTableTTL)
	log.Println(ddl)
	if _, err := e.BQ.ExecuteWithRetry("create final export vet table", ddl); err != nil {
		return err
	}

	return e.populate(vetPopulation, fqDestinationVet, sampleIDs, locationFilter)
}

// loadSampleNames stages the one-column sample names file into a temp table
// with a TTL and returns the table's fully qualified name.
func (e *Engine) loadSampleNames() (string, error) {
	cfg := e.cfg

	project, dataset, err := bq.SplitDataset(cfg.FqTempTableDataset)
	if err != nil {
		return "", err
	}
	tableName := fmt.Sprintf("%s_sample_names", e.RunPrefix)

	f, err := os.Open(cfg.SampleNamesFile)
	if err != nil {
		return "", pfx.Err(err)
	}
	defer f.Close()

	schema := bigquery.Schema{
		{Name: "sample_name", Type: bigquery.StringFieldType, Required: true},
	}

	source := bigquery.NewReaderSource(f)
	source.SourceFormat = bigquery.CSV
	source.SkipLeadingRows = 0
	source.Schema = schema

	table := e.BQ.BQ.DatasetInProject(project, dataset).Table(tableName)
	loader := table.LoaderFrom(source)
	loader.Labels = e.labelsWith("load-sample-names")

	job, err := loader.Run(e.BQ.Context)
	if err != nil {
		return "", pfx.Err(err)
	}
	status, err := job.Wait(e.BQ.Context)
	if err != nil {
		return "", pfx.Err(err)
	}
	if err := status.Err(); err != nil {
		return "", pfx.Err(err)
	}

	// The TTL has to be set with a second API call once the table exists.
	expiration := time.Now().UTC().Add(time.Duration(cfg.TempTableTTLHours) * time.Hour)
	if _, err := table.Update(e.BQ.Context, bigquery.TableMetadataToUpdate{ExpirationTime: expiration}, ""); err != nil {
		return "", pfx.Err(err)
	}

	return fmt.Sprintf("%s.%s", cfg.FqTempTableDataset, tableName), nil
}

func (e *Engine) labelsWith(queryName string) map[string]string {
	labels := make(map[string]string, len(e.BQ.Labels)+1)
	for k, v := range e.BQ.Labels {
		labels[k] = v
	}
	labels["gvs_query_name"] = queryName

	return labels
}

// sampleIDs pulls the cohort's sample ids back down, sorted ascending.
func (e *Engine) sampleIDs(fqDestinationSamples string) ([]int64, error) {
	cfg := e.cfg

	sql := fmt.Sprintf("select sample_id from `%s`", fqDestinationSamples)
	sourceTable := fqDestinationSamples
	if cfg.OnlyOutputVetTables {
		sql = fmt.Sprintf("select sample_id from `%s` WHERE is_control = false AND withdrawn IS NULL", cfg.FqSampleMappingTable)
		sourceTable = cfg.FqSampleMappingTable
	}

	itr, err := e.BQ.ExecuteWithRetry("read cohort sample table", sql)
	if err != nil {
		return nil, err
	}

	var out []int64
	for {
		var row struct {
			SampleID int64 `bigquery:"sample_id"`
		}
		err := itr.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, pfx.Err(err)
		}
		out = append(out, row.SampleID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	log.Printf("Discovered %d samples in %s...", len(out), sourceTable)

	return out, nil
}

type populationKind int

const (
	refPopulation populationKind = iota
	vetPopulation
)

// populate walks every shard, assembles the INSERT for the shard's samples,
// and runs it. Shards with no cohort samples are skipped.
func (e *Engine) populate(kind populationKind, fqDestination string, sampleIDs []int64, locationFilter string) error {
	cfg := e.cfg

	for i := 1; i <= cfg.MaxTables; i++ {
		partitionSamples, err := SamplesForPartition(sampleIDs, i, cfg.MaxTables)
		if err != nil {
			return err
		}
		if len(partitionSamples) == 0 {
			continue
		}

		chunks := SplitList(partitionSamples, samplesPerChunk)

		var fqShard, sql, label string
		switch kind {
		case refPopulation:
			fqShard = fmt.Sprintf("%s.%s", cfg.FqRangesDataset, ShardTableName(RefTablePrefix, i))
			sql = RefInsertSQL(fqShard, fqDestination, i, chunks, cfg.UseCompressedReferences, locationFilter)
			label = "populate destination table with reference data"
		case vetPopulation:
			fqShard = fmt.Sprintf("%s.%s", cfg.FqRangesDataset, ShardTableName(VetTablePrefix, i))
			sql = VetInsertSQL(fqShard, fqDestination, i, chunks, locationFilter)
			label = "populate destination table with variant data"
		}

		log.Println(sql)
		log.Printf("%s query is %f MB in length", fqShard, float64(len(sql))/(1024*1024))

		if _, err := e.BQ.ExecuteWithRetry(label, sql); err != nil {
			return err
		}
	}

	return nil
}
