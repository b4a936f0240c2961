// extractcohort stages a cohort's reference ranges and variant data out of
// the sharded variant-store tables into per-callset __SAMPLES, __REF_DATA,
// and __VET_DATA extract tables in BigQuery.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/broadinstitute/gvstools"
	"github.com/broadinstitute/gvstools/bq"
	"github.com/broadinstitute/gvstools/cohortextract"
)

// E.g.: go build -ldflags "-X main.builddate=`date -u +%Y-%m-%d:%H:%M:%S%Z`"
// Consider aliasing in .profile: alias gobuild='go build -ldflags "-X main.builddate=`date -u +%Y-%m-%d:%H:%M:%S%Z`"'
var builddate string

type labelList []string

func (l *labelList) String() string {
	return fmt.Sprint(*l)
}

func (l *labelList) Set(value string) error {
	*l = append(*l, value)

	return nil
}

func main() {
	var cfg cohortextract.Config
	var queryProject string
	var queryLabels labelList

	fmt.Fprintf(os.Stderr, "This extractcohort binary was built at: %s\n", builddate)

	flag.StringVar(&cfg.CallSetIdentifier, "call_set_identifier", "", "Callset identifier used to track costs in the cost_observability table")
	flag.BoolVar(&cfg.ControlSamples, "control_samples", false, "True for control samples only, false for participant samples only")
	flag.StringVar(&cfg.FqRangesDataset, "fq_ranges_dataset", "", "project.dataset location of the ranges/vet data")
	flag.StringVar(&cfg.FqTempTableDataset, "fq_temp_table_dataset", "", "project.dataset location where temporary tables should be created")
	flag.StringVar(&cfg.FqDestinationDataset, "fq_destination_dataset", "", "project.dataset location of the destination extract tables")
	flag.StringVar(&cfg.DestinationTablePrefix, "destination_cohort_table_prefix", "", "Prefix of the extract table names")
	flag.StringVar(&queryProject, "query_project", "", "Google project where queries should be executed and billed")
	flag.Var(&queryLabels, "query_labels", "Label to attach to the BigQuery jobs, as key=value. May be repeated.")
	flag.StringVar(&cfg.FqSampleMappingTable, "fq_sample_mapping_table", "", "Fully qualified sample_info mapping table")
	flag.IntVar(&cfg.MaxTables, "max_tables", 250, "Maximum number of vet/ref ranges shard tables to consider")
	flag.IntVar(&cfg.TempTableTTLHours, "ttl", 72, "Temp table TTL in hours")
	flag.BoolVar(&cfg.OnlyOutputVetTables, "only_output_vet_tables", false, "Only create the __VET_DATA table, skip __REF_DATA and __SAMPLES")
	flag.BoolVar(&cfg.WriteCostToDB, "write_cost_to_db", true, "Populate the cost_observability table with BigQuery bytes scanned")
	flag.BoolVar(&cfg.UseCompressedReferences, "use_compressed_references", false, "Expect bit-packed reference data and expand the fields")
	flag.BoolVar(&cfg.EnableExtractTableTTL, "enable_extract_table_ttl", false, "Add a TTL to the extract tables")
	flag.StringVar(&cfg.IntervalListPath, "interval_list", "", "Optional interval list restricting the extract's locations")
	flag.StringVar(&cfg.SampleNamesFile, "sample_names_to_extract", "", "File with one sample name per line. Mutually exclusive with fq_cohort_sample_names.")
	flag.StringVar(&cfg.FqCohortSampleNames, "fq_cohort_sample_names", "", "Fully qualified table of cohort sample names. Mutually exclusive with sample_names_to_extract.")
	flag.Parse()

	if queryProject == "" || cfg.FqRangesDataset == "" || cfg.FqTempTableDataset == "" ||
		cfg.FqDestinationDataset == "" || cfg.DestinationTablePrefix == "" || cfg.FqSampleMappingTable == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(cfg, queryProject, queryLabels); err != nil {
		log.Fatalln(err)
	}
}

func run(cfg cohortextract.Config, queryProject string, queryLabels []string) error {
	cfg.SampleNamesFile = gvstools.ExpandHome(cfg.SampleNamesFile)
	cfg.IntervalListPath = gvstools.ExpandHome(cfg.IntervalListPath)

	runPrefix := cohortextract.NewRunPrefix()

	labels, err := bq.ParseQueryLabels(runPrefix, cohortextract.ToolName, "prepare_ranges_callset", queryLabels)
	if err != nil {
		return err
	}

	ctx := context.Background()
	client, err := bq.NewClient(ctx, queryProject, labels)
	if err != nil {
		return err
	}
	defer client.Close()

	engine, err := cohortextract.NewEngine(client, cfg, runPrefix)
	if err != nil {
		return err
	}

	return engine.Run()
}
