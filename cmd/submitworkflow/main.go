// submitworkflow stages a WDL workflow and its inputs into a Cromwell on
// Azure deployment's storage account and drops a trigger JSON into the
// workflows container to start it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/caarlos0/env/v11"

	"github.com/broadinstitute/gvstools/trigger"
)

// E.g.: go build -ldflags "-X main.builddate=`date -u +%Y-%m-%d:%H:%M:%S%Z`"
// Consider aliasing in .profile: alias gobuild='go build -ldflags "-X main.builddate=`date -u +%Y-%m-%d:%H:%M:%S%Z`"'
var builddate string

type environment struct {
	// A SAS connection string for the deployment's storage account, see
	// https://learn.microsoft.com/en-us/azure/storage/common/storage-configure-connection-string#store-a-connection-string
	ConnectionString string `env:"AZURE_CONNECTION_STRING,required"`
	User             string `env:"USER"`
}

const (
	inputsContainer    = "inputs"
	workflowsContainer = "workflows"
)

func main() {
	var workflowFile, inputsFile, resourceGroup string

	fmt.Fprintf(os.Stderr, "This submitworkflow binary was built at: %s\n", builddate)

	flag.StringVar(&workflowFile, "workflow", "", "Workflow WDL source")
	flag.StringVar(&inputsFile, "inputs", "", "Workflow inputs JSON")
	flag.StringVar(&resourceGroup, "resource-group", "", "Azure Resource Group name. Defaults to the single group named like $USER-<hex>.")
	flag.Parse()

	if workflowFile == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	var envCfg environment
	if err := env.Parse(&envCfg); err != nil {
		log.Fatalln(err)
	}

	if err := run(workflowFile, inputsFile, resourceGroup, envCfg); err != nil {
		log.Fatalln(err)
	}
}

func stem(path string) string {
	base := filepath.Base(path)

	return strings.TrimSuffix(base, filepath.Ext(base))
}

func run(workflowFile, inputsFile, resourceGroup string, envCfg environment) error {
	ctx := context.Background()

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return err
	}

	subscription, err := findSubscription(ctx, cred)
	if err != nil {
		return err
	}

	group, err := findResourceGroup(ctx, cred, *subscription.SubscriptionID, resourceGroup, envCfg.User)
	if err != nil {
		return err
	}

	account, err := findStorageAccount(ctx, cred, *subscription.SubscriptionID, *group.Name)
	if err != nil {
		return err
	}

	blobClient, err := azblob.NewClientFromConnectionString(envCfg.ConnectionString, nil)
	if err != nil {
		return err
	}

	workflowStem := stem(workflowFile)

	workflowStoragePath, err := uploadInput(ctx, blobClient, *account.Name, workflowStem, workflowFile)
	if err != nil {
		return err
	}

	inputsStoragePath := ""
	if inputsFile != "" {
		inputsStoragePath, err = uploadInput(ctx, blobClient, *account.Name, workflowStem, inputsFile)
		if err != nil {
			return err
		}
	}

	descriptor, err := trigger.New(workflowStoragePath, inputsStoragePath).JSON()
	if err != nil {
		return err
	}

	triggerBlob := trigger.BlobName(workflowStem)
	if _, err := blobClient.UploadBuffer(ctx, workflowsContainer, triggerBlob, descriptor, nil); err != nil {
		return err
	}

	fmt.Printf("Trigger JSON staged to /%s/%s/%s.\n", *account.Name, workflowsContainer, triggerBlob)

	return nil
}

// uploadInput stages a local file under <workflow stem>/<file name> in the
// inputs container and returns its Cromwell-style storage path.
func uploadInput(ctx context.Context, client *azblob.Client, accountName, workflowStem, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	blobName := fmt.Sprintf("%s/%s", workflowStem, filepath.Base(localPath))
	if _, err := client.UploadStream(ctx, inputsContainer, blobName, f, nil); err != nil {
		return "", err
	}

	return fmt.Sprintf("/%s/%s/%s", accountName, inputsContainer, blobName), nil
}
