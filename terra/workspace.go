// Package terra looks up workspace metadata from the Terra/Rawls API and
// applies the column-name heuristics used to locate VCFs in an entity table.
package terra

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// DefaultRawlsURL is the production Rawls endpoint.
const DefaultRawlsURL = "https://rawls.dsde-prod.broadinstitute.org"

// Workspace is the subset of Rawls workspace metadata the pipeline consumes.
type Workspace struct {
	Name          string `json:"name"`
	Namespace     string `json:"namespace"`
	GoogleProject string `json:"googleProject"`
}

type workspaceResponse struct {
	Workspace Workspace `json:"workspace"`
}

// Client calls the Rawls REST API with a bearer token.
type Client struct {
	rest *resty.Client
}

// NewClient builds a Rawls client against DefaultRawlsURL.
func NewClient(token string) *Client {
	return NewClientForURL(DefaultRawlsURL, token)
}

// NewClientForURL builds a Rawls client against an explicit base URL.
func NewClientForURL(baseURL, token string) *Client {
	rest := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(token)

	return &Client{rest: rest}
}

// WorkspaceByID fetches the name, namespace, and Google project of a
// workspace from its id.
func (c *Client) WorkspaceByID(ctx context.Context, workspaceID string) (Workspace, error) {
	var out workspaceResponse

	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParam("fields", "workspace.name,workspace.namespace,workspace.googleProject").
		SetResult(&out).
		Get(fmt.Sprintf("/api/workspaces/id/%s", workspaceID))
	if err != nil {
		return Workspace{}, err
	}
	if resp.IsError() {
		return Workspace{}, fmt.Errorf("rawls workspace lookup for %q failed: %s: %s", workspaceID, resp.Status(), resp.String())
	}
	if out.Workspace.Name == "" {
		return Workspace{}, fmt.Errorf("rawls workspace lookup for %q returned no workspace name", workspaceID)
	}

	return out.Workspace, nil
}
