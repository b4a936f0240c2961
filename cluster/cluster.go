// Package cluster starts, drives, and tears down the Dataproc clusters that
// run the Hail variant-dataset jobs.
package cluster

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// Config describes one Hail job run: the cluster to create and the pyspark
// script to submit to it.
type Config struct {
	Name              string
	Account           string
	WorkerMachineType string
	Region            string
	Project           string
	AutoscalingPolicy string

	ScriptPath          string
	SecondaryScriptPath string
	UseClassicVQSR      bool
	VDSPath             string
	TempPath            string
	AvroPath            string

	LeaveRunningAtEnd bool
}

// DefaultWorkerMachineType is used when the caller does not pick one.
const DefaultWorkerMachineType = "n1-standard-8"

var whitespaceRun = regexp.MustCompile(`\s{2,}`)

// Unwrap collapses the whitespace of a multi-line command string into single
// spaces so it can be split into argv.
func Unwrap(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// StartCommand is the hailctl invocation that creates the cluster.
func (c Config) StartCommand() []string {
	worker := c.WorkerMachineType
	if worker == "" {
		worker = DefaultWorkerMachineType
	}

	cmd := fmt.Sprintf(`
	hailctl dataproc start
	 --autoscaling-policy=%s
	 --worker-machine-type %s
	 --master-machine-type n1-highmem-16
	 --master-memory-fraction 0.6
	 --region %s
	 --project %s
	 --service-account %s
	 --num-master-local-ssds 1
	 --num-worker-local-ssds 1
	 --max-idle=60m
	 --subnet=projects/%s/regions/%s/subnetworks/subnetwork
	 --properties=dataproc:dataproc.monitoring.stackdriver.enable=true,dataproc:dataproc.logging.stackdriver.enable=true,core:fs.gs.outputstream.sync.min.interval=5
	 %s
	`, c.AutoscalingPolicy, worker, c.Region, c.Project, c.Account, c.Project, c.Region, c.Name)

	return strings.Fields(Unwrap(cmd))
}

// SubmitCommand is the gcloud invocation that submits the pyspark job.
func (c Config) SubmitCommand() []string {
	pyFiles := ""
	if c.SecondaryScriptPath != "" {
		pyFiles = "--py-files=" + c.SecondaryScriptPath
	}
	avro := ""
	if c.AvroPath != "" {
		avro = "--avro-path " + c.AvroPath
	}
	classicVQSR := ""
	if c.UseClassicVQSR {
		classicVQSR = "--use-classic-vqsr"
	}

	cmd := fmt.Sprintf(`
	gcloud dataproc jobs submit pyspark %s
	 %s
	 --cluster=%s
	 --project %s
	 --region=%s
	 --account %s
	 --driver-log-levels root=WARN
	 --
	 --vds-path %s
	 --temp-path %s
	 %s
	 %s
	`, c.ScriptPath, pyFiles, c.Name, c.Project, c.Region, c.Account, c.VDSPath, c.TempPath, avro, classicVQSR)

	return strings.Fields(Unwrap(cmd))
}

// DeleteCommand is the gcloud invocation that tears the cluster down.
func (c Config) DeleteCommand() []string {
	cmd := fmt.Sprintf(`
	gcloud dataproc clusters delete
	 --project %s
	 --region %s
	 --account %s
	 --quiet
	 %s
	`, c.Project, c.Region, c.Account, c.Name)

	return strings.Fields(Unwrap(cmd))
}

func listClustersCommand(project, region string) []string {
	return []string{"gcloud", "dataproc", "clusters", "list",
		"--project", project, "--region", region, "--format=json"}
}

// runner abstracts command execution so the lifecycle can be tested without
// gcloud present.
type runner interface {
	run(ctx context.Context, argv []string) ([]byte, error)
}

type execRunner struct {
	log *logrus.Logger
}

func (r execRunner) run(ctx context.Context, argv []string) ([]byte, error) {
	r.log.Infof("Running: %s", strings.Join(argv, " "))
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		r.log.Info(string(out))
	}
	if err != nil {
		return out, fmt.Errorf("unexpected exit running %s: %w", argv[0], err)
	}

	return out, nil
}

// Lifecycle runs a full create/verify/submit/delete pass.
type Lifecycle struct {
	Config Config
	Log    *logrus.Logger

	run runner
}

func NewLifecycle(cfg Config, log *logrus.Logger) *Lifecycle {
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Lifecycle{Config: cfg, Log: log, run: execRunner{log: log}}
}

// Run starts the cluster, confirms it exists, submits the job, and deletes
// the cluster afterwards unless LeaveRunningAtEnd is set. Deletion happens
// even when the submission fails.
func (l *Lifecycle) Run(ctx context.Context) (err error) {
	cfg := l.Config

	defer func() {
		if cfg.LeaveRunningAtEnd {
			l.Log.Infof("Leaving cluster %s running as `leave-cluster-running-at-end` option is set.", cfg.Name)
			return
		}

		l.Log.Infof("Stopping cluster: %s", cfg.Name)
		if _, deleteErr := l.run.run(ctx, cfg.DeleteCommand()); deleteErr != nil && err == nil {
			err = deleteErr
		}
	}()

	l.Log.Infof("Starting cluster '%s'...", cfg.Name)
	if _, err := l.run.run(ctx, cfg.StartCommand()); err != nil {
		return err
	}

	exists, err := l.clusterExists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("cluster %s not found after creation", cfg.Name)
	}

	_, err = l.run.run(ctx, cfg.SubmitCommand())

	return err
}

func (l *Lifecycle) clusterExists(ctx context.Context) (bool, error) {
	out, err := l.run.run(ctx, listClustersCommand(l.Config.Project, l.Config.Region))
	if err != nil {
		return false, err
	}

	var clusters []struct {
		ClusterName string `json:"clusterName"`
	}
	if err := json.Unmarshal(out, &clusters); err != nil {
		return false, fmt.Errorf("parsing cluster list: %w", err)
	}

	for _, c := range clusters {
		if c.ClusterName == l.Config.Name {
			return true, nil
		}
	}

	return false, nil
}
