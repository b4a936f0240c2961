// Package trigger builds the descriptor JSON that tells Cromwell on Azure to
// start a newly staged workflow.
package trigger

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Descriptor is the trigger file schema consumed by the workflow runner. A
// descriptor is written once to the workflows container and never mutated.
// Null fields are part of the contract and must be serialized.
type Descriptor struct {
	WorkflowUrl             string   `json:"WorkflowUrl"`
	WorkflowInputsUrl       *string  `json:"WorkflowInputsUrl"`
	WorkflowInputsUrls      []string `json:"WorkflowInputsUrls"`
	WorkflowOptionsUrl      *string  `json:"WorkflowOptionsUrl"`
	WorkflowDependenciesUrl *string  `json:"WorkflowDependenciesUrl"`
}

// New builds a descriptor for a staged workflow. inputsURL may be empty, in
// which case WorkflowInputsUrl serializes as null.
func New(workflowURL, inputsURL string) Descriptor {
	d := Descriptor{WorkflowUrl: workflowURL}
	if inputsURL != "" {
		d.WorkflowInputsUrl = &inputsURL
	}

	return d
}

// JSON renders the descriptor.
func (d Descriptor) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// BlobName returns the blob path of a new trigger file for the named
// workflow, unique per submission.
func BlobName(workflowStem string) string {
	return fmt.Sprintf("new/%s-%s.json", workflowStem, uuid.New())
}
