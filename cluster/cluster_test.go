package cluster

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func testConfig() Config {
	return Config{
		Name:              "vds-cluster-1",
		Account:           "pipeline@my-project.iam.gserviceaccount.com",
		Region:            "us-central1",
		Project:           "my-project",
		AutoscalingPolicy: "vds-autoscale",
		ScriptPath:        "gs://bucket/scripts/create_vat_inputs.py",
		VDSPath:           "gs://bucket/vds/callset.vds",
		TempPath:          "gs://bucket/tmp",
	}
}

func TestUnwrap(t *testing.T) {
	got := Unwrap("\n\tgcloud   dataproc\n\t clusters   list  \n")
	if expected := "gcloud dataproc clusters list"; got != expected {
		t.Errorf("Unwrap = %q, expected %q", got, expected)
	}
}

func TestStartCommand(t *testing.T) {
	argv := testConfig().StartCommand()
	cmd := strings.Join(argv, " ")

	for _, want := range []string{
		"hailctl dataproc start",
		"--autoscaling-policy=vds-autoscale",
		"--worker-machine-type n1-standard-8",
		"--master-machine-type n1-highmem-16",
		"--master-memory-fraction 0.6",
		"--region us-central1",
		"--project my-project",
		"--service-account pipeline@my-project.iam.gserviceaccount.com",
		"--max-idle=60m",
		"--subnet=projects/my-project/regions/us-central1/subnetworks/subnetwork",
		"vds-cluster-1",
	} {
		if !strings.Contains(cmd, want) {
			t.Errorf("expected %q in start command: %s", want, cmd)
		}
	}
}

func TestStartCommandWorkerOverride(t *testing.T) {
	cfg := testConfig()
	cfg.WorkerMachineType = "n1-highmem-8"
	if cmd := strings.Join(cfg.StartCommand(), " "); !strings.Contains(cmd, "--worker-machine-type n1-highmem-8") {
		t.Errorf("worker machine type not honored: %s", cmd)
	}
}

func TestSubmitCommand(t *testing.T) {
	cfg := testConfig()
	cfg.SecondaryScriptPath = "gs://bucket/scripts/helpers.py"
	cfg.AvroPath = "gs://bucket/avro"
	cfg.UseClassicVQSR = true

	cmd := strings.Join(cfg.SubmitCommand(), " ")
	for _, want := range []string{
		"gcloud dataproc jobs submit pyspark gs://bucket/scripts/create_vat_inputs.py",
		"--py-files=gs://bucket/scripts/helpers.py",
		"--cluster=vds-cluster-1",
		"--driver-log-levels root=WARN",
		"-- --vds-path gs://bucket/vds/callset.vds",
		"--temp-path gs://bucket/tmp",
		"--avro-path gs://bucket/avro",
		"--use-classic-vqsr",
	} {
		if !strings.Contains(cmd, want) {
			t.Errorf("expected %q in submit command: %s", want, cmd)
		}
	}
}

func TestSubmitCommandOmitsOptionalFlags(t *testing.T) {
	cmd := strings.Join(testConfig().SubmitCommand(), " ")
	for _, unwanted := range []string{"--py-files", "--avro-path", "--use-classic-vqsr"} {
		if strings.Contains(cmd, unwanted) {
			t.Errorf("unexpected %q in submit command: %s", unwanted, cmd)
		}
	}
}

func TestDeleteCommand(t *testing.T) {
	cmd := strings.Join(testConfig().DeleteCommand(), " ")
	if expected := "gcloud dataproc clusters delete --project my-project --region us-central1" +
		" --account pipeline@my-project.iam.gserviceaccount.com --quiet vds-cluster-1"; cmd != expected {
		t.Errorf("delete command = %q, expected %q", cmd, expected)
	}
}

// fakeRunner records invocations and scripts their results.
type fakeRunner struct {
	calls  [][]string
	output map[string][]byte
	fail   map[string]error
}

func (f *fakeRunner) run(_ context.Context, argv []string) ([]byte, error) {
	f.calls = append(f.calls, argv)
	n := 4
	if len(argv) < n {
		n = len(argv)
	}
	key := strings.Join(argv[:n], " ")
	if err := f.fail[key]; err != nil {
		return nil, err
	}
	return f.output[key], nil
}

func newFakeLifecycle(cfg Config) (*Lifecycle, *fakeRunner) {
	runner := &fakeRunner{
		output: map[string][]byte{
			"gcloud dataproc clusters list": []byte(`[{"clusterName": "vds-cluster-1"}]`),
		},
		fail: map[string]error{},
	}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	return &Lifecycle{Config: cfg, Log: log, run: runner}, runner
}

func TestLifecycleRunDeletesCluster(t *testing.T) {
	lc, runner := newFakeLifecycle(testConfig())
	if err := lc.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(runner.calls) != 4 {
		t.Fatalf("expected start, list, submit, delete; got %d calls", len(runner.calls))
	}
	if runner.calls[0][0] != "hailctl" {
		t.Errorf("first call should start the cluster: %v", runner.calls[0])
	}
	last := runner.calls[len(runner.calls)-1]
	if !strings.Contains(strings.Join(last, " "), "clusters delete") {
		t.Errorf("last call should delete the cluster: %v", last)
	}
}

func TestLifecycleLeavesClusterRunning(t *testing.T) {
	cfg := testConfig()
	cfg.LeaveRunningAtEnd = true
	lc, runner := newFakeLifecycle(cfg)
	if err := lc.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	for _, call := range runner.calls {
		if strings.Contains(strings.Join(call, " "), "clusters delete") {
			t.Errorf("cluster should have been left running: %v", call)
		}
	}
}

func TestLifecycleDeletesClusterOnSubmitFailure(t *testing.T) {
	lc, runner := newFakeLifecycle(testConfig())
	runner.fail["gcloud dataproc jobs submit"] = fmt.Errorf("submission exploded")

	err := lc.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "submission exploded") {
		t.Fatalf("expected submission error, got %v", err)
	}

	last := runner.calls[len(runner.calls)-1]
	if !strings.Contains(strings.Join(last, " "), "clusters delete") {
		t.Errorf("cluster should still be deleted after a failed submit: %v", last)
	}
}

func TestLifecycleMissingCluster(t *testing.T) {
	lc, runner := newFakeLifecycle(testConfig())
	runner.output["gcloud dataproc clusters list"] = []byte(`[]`)

	if err := lc.Run(context.Background()); err == nil {
		t.Error("expected error when the created cluster is not listed")
	}
}
