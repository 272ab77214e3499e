package shopify

import (
	"context"
	"fmt"
	"strings"

	"backend/internal/retry"
)

const activeSubscriptionsQuery = `query activeSubscriptions {
  currentAppInstallation {
    activeSubscriptions {
      id
      name
      status
    }
  }
}`

type appInstallationPayload struct {
	CurrentAppInstallation struct {
		ActiveSubscriptions []struct {
			ID     string `json:"id"`
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"activeSubscriptions"`
	} `json:"currentAppInstallation"`
}

// HasActivePayment reports whether the shop holds an ACTIVE recurring
// charge for this app. An unreachable billing subsystem is an error, never
// an implicit grant.
func HasActivePayment(ctx context.Context, c *AdminClient) (bool, error) {
	var active bool
	err := retry.AdminAPIReads.Do(ctx, func(ctx context.Context) error {
		resp, err := postChecked[appInstallationPayload](ctx, c, activeSubscriptionsQuery, nil)
		if err != nil {
			return err
		}
		active = false
		for _, sub := range resp.Data.CurrentAppInstallation.ActiveSubscriptions {
			if strings.EqualFold(sub.Status, "ACTIVE") {
				active = true
				break
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return active, nil
}

// PlanSelectionURL points at the managed-pricing plan page for this app.
// It lives outside the embedded app scope, so callers must break out of the
// iframe (target _top) when redirecting.
func PlanSelectionURL(shopDomain, appHandle string) string {
	storeHandle := strings.TrimSuffix(shopDomain, ".myshopify.com")
	return fmt.Sprintf("https://admin.shopify.com/store/%s/charges/%s/pricing_plans", storeHandle, appHandle)
}
