// workspaceinfo looks up a Terra workspace's name and namespace in Rawls by
// workspace id and writes each to its own newline-terminated file, for
// consumption by downstream WDL tasks. It can also sample the workspace's
// sample entity table to identify which columns hold the reblocked VCFs and
// their indexes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/oauth2/google"

	"github.com/broadinstitute/gvstools/terra"
)

type options struct {
	workspaceID       string
	nameOutput        string
	namespaceOutput   string
	rawlsURL          string
	entityType        string
	sampleRows        int
	vcfColumn         string
	vcfIndexColumn    string
	vcfColumnOutput   string
	indexColumnOutput string
}

func main() {
	var opts options

	flag.StringVar(&opts.workspaceID, "workspace_id", "", "The ID of the workspace that holds your sample data")
	flag.StringVar(&opts.nameOutput, "workspace_name_output", "", "The location to write the workspace name to")
	flag.StringVar(&opts.namespaceOutput, "workspace_namespace_output", "", "The location to write the workspace namespace to")
	flag.StringVar(&opts.rawlsURL, "rawls_url", terra.DefaultRawlsURL, "Rawls API base URL")
	flag.StringVar(&opts.entityType, "entity_type", "sample", "The entity table holding the sample VCFs")
	flag.IntVar(&opts.sampleRows, "sample_rows", 50, "The number of entity rows to sample when detecting VCF columns")
	flag.StringVar(&opts.vcfColumn, "vcf_column", "", "Skip detection and use this entity column for the VCFs")
	flag.StringVar(&opts.vcfIndexColumn, "vcf_index_column", "", "Skip detection and use this entity column for the VCF indexes")
	flag.StringVar(&opts.vcfColumnOutput, "vcf_column_output", "", "The location to write the chosen VCF column name to")
	flag.StringVar(&opts.indexColumnOutput, "vcf_index_column_output", "", "The location to write the chosen VCF index column name to")
	flag.Parse()

	if opts.workspaceID == "" || opts.nameOutput == "" || opts.namespaceOutput == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}
	if (opts.vcfColumnOutput == "") != (opts.indexColumnOutput == "") {
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		log.Fatalln(err)
	}
}

func run(opts options) error {
	ctx := context.Background()

	tokenSource, err := google.DefaultTokenSource(ctx, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return fmt.Errorf("fetching application default credentials: %w", err)
	}
	token, err := tokenSource.Token()
	if err != nil {
		return fmt.Errorf("fetching access token: %w", err)
	}

	client := terra.NewClientForURL(opts.rawlsURL, token.AccessToken)

	workspace, err := client.WorkspaceByID(ctx, opts.workspaceID)
	if err != nil {
		return err
	}

	log.Printf("Workspace %s is %s/%s", opts.workspaceID, workspace.Namespace, workspace.Name)

	if err := os.WriteFile(opts.nameOutput, []byte(workspace.Name+"\n"), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(opts.namespaceOutput, []byte(workspace.Namespace+"\n"), 0o644); err != nil {
		return err
	}

	if opts.vcfColumnOutput == "" {
		return nil
	}

	samples, sampledRows, err := client.SampleEntityColumns(ctx, workspace.Namespace, workspace.Name, opts.entityType, opts.sampleRows)
	if err != nil {
		return err
	}

	vcfColumn, indexColumn, err := terra.ChooseVCFColumns(samples, sampledRows, opts.vcfColumn, opts.vcfIndexColumn)
	if err != nil {
		return err
	}

	log.Printf("Using VCF column %s with index column %s", vcfColumn, indexColumn)

	if err := os.WriteFile(opts.vcfColumnOutput, []byte(vcfColumn+"\n"), 0o644); err != nil {
		return err
	}

	return os.WriteFile(opts.indexColumnOutput, []byte(indexColumn+"\n"), 0o644)
}
