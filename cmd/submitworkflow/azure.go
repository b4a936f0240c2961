package main

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
)

// exactlyOne returns the single candidate, or an error naming kind when there
// are zero or several. describe renders candidates for the error message.
func exactlyOne[T any](candidates []T, kind string, describe func(T) string) (T, error) {
	var zero T

	switch len(candidates) {
	case 0:
		return zero, fmt.Errorf("could not find a %s", kind)
	case 1:
		return candidates[0], nil
	}

	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		names = append(names, describe(c))
	}

	return zero, fmt.Errorf("found multiple %s: %s", kind, strings.Join(names, ", "))
}

// findSubscription expects the credential to see exactly one subscription.
func findSubscription(ctx context.Context, cred azcore.TokenCredential) (*armsubscriptions.Subscription, error) {
	client, err := armsubscriptions.NewClient(cred, nil)
	if err != nil {
		return nil, err
	}

	var found []*armsubscriptions.Subscription
	pager := client.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		found = append(found, page.Value...)
	}

	return exactlyOne(found, "subscription", func(s *armsubscriptions.Subscription) string {
		return *s.ID
	})
}

// findResourceGroup picks the resource group by explicit name, or failing
// that, the single group named like <user>-<hex> that Cromwell on Azure
// deployments create.
func findResourceGroup(ctx context.Context, cred azcore.TokenCredential, subscriptionID, name, user string) (*armresources.ResourceGroup, error) {
	client, err := armresources.NewResourceGroupsClient(subscriptionID, cred, nil)
	if err != nil {
		return nil, err
	}

	keep := func(g *armresources.ResourceGroup) bool {
		return g.Name != nil && *g.Name == name
	}
	kind := fmt.Sprintf("resource group '%s'", name)

	if name == "" {
		pattern, err := regexp.Compile("^" + regexp.QuoteMeta(user) + "-[a-f0-9]+$")
		if err != nil {
			return nil, err
		}
		keep = func(g *armresources.ResourceGroup) bool {
			return g.Name != nil && pattern.MatchString(*g.Name)
		}
		kind = fmt.Sprintf("resource group matching pattern '%s'", pattern)
	}

	var found []*armresources.ResourceGroup
	pager := client.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, group := range page.Value {
			if keep(group) {
				found = append(found, group)
			}
		}
	}

	return exactlyOne(found, kind, func(g *armresources.ResourceGroup) string {
		return *g.Name
	})
}

// findStorageAccount expects exactly one storage account in the resource
// group. Accounts carry no resource group attribute of their own, but their
// ids begin with a predictable prefix that names it.
func findStorageAccount(ctx context.Context, cred azcore.TokenCredential, subscriptionID, resourceGroup string) (*armstorage.Account, error) {
	client, err := armstorage.NewAccountsClient(subscriptionID, cred, nil)
	if err != nil {
		return nil, err
	}

	idPrefix := fmt.Sprintf("/subscriptions/%s/resourceGroups/%s", subscriptionID, resourceGroup)

	var found []*armstorage.Account
	pager := client.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, account := range page.Value {
			if account.ID != nil && strings.HasPrefix(*account.ID, idPrefix) {
				found = append(found, account)
			}
		}
	}

	return exactlyOne(found, "storage account", func(a *armstorage.Account) string {
		return *a.Name
	})
}
