// hailcluster spins up a Dataproc cluster with hailctl, submits a pyspark
// script against a variant dataset, and tears the cluster back down when the
// job finishes.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/broadinstitute/gvstools/cluster"
)

func main() {
	var cfg cluster.Config

	flag.StringVar(&cfg.Name, "cluster-name", "", "Name of the Hail cluster")
	flag.StringVar(&cfg.Account, "account", "", "GCP account name")
	flag.StringVar(&cfg.WorkerMachineType, "worker-machine-type", cluster.DefaultWorkerMachineType, "Dataproc cluster worker machine type")
	flag.StringVar(&cfg.Region, "region", "", "GCS region")
	flag.StringVar(&cfg.Project, "gcs-project", "", "GCS project")
	flag.StringVar(&cfg.AutoscalingPolicy, "autoscaling-policy", "", "Name of the autoscaling policy that should get used")
	flag.StringVar(&cfg.ScriptPath, "script-path", "", "Path to the pyspark script to run in the Hail cluster")
	flag.StringVar(&cfg.SecondaryScriptPath, "secondary-script-path", "", "Path to a secondary script shipped alongside the main one")
	flag.BoolVar(&cfg.UseClassicVQSR, "use-classic-vqsr", false, "If set, expect that the input Avro files were generated using VQSR Classic")
	flag.StringVar(&cfg.VDSPath, "vds-path", "", "VDS URL")
	flag.StringVar(&cfg.AvroPath, "avro-path", "", "Avro URL")
	flag.StringVar(&cfg.TempPath, "temp-path", "", "Temporary storage URL")
	flag.BoolVar(&cfg.LeaveRunningAtEnd, "leave-cluster-running-at-end", false, "Skip cluster deletion when the job finishes")
	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stderr)

	if cfg.Name == "" || cfg.Region == "" || cfg.Project == "" || cfg.ScriptPath == "" || cfg.VDSPath == "" || cfg.TempPath == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := cluster.NewLifecycle(cfg, log).Run(context.Background()); err != nil {
		log.Fatalln(err)
	}
}
