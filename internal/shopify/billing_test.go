package shopify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasActivePayment(t *testing.T) {
	srv := adminStub(t, map[string]func(gqlRequest) string{
		"activeSubscriptions": func(gqlRequest) string {
			return `{"data":{"currentAppInstallation":{"activeSubscriptions":[{"id":"gid://shopify/AppSubscription/1","name":"Pro","status":"ACTIVE"}]}}}`
		},
	})
	defer srv.Close()

	active, err := HasActivePayment(context.Background(), testClient(srv))
	require.NoError(t, err)
	assert.True(t, active)
}

func TestHasActivePaymentNoSubscription(t *testing.T) {
	srv := adminStub(t, map[string]func(gqlRequest) string{
		"activeSubscriptions": func(gqlRequest) string {
			return `{"data":{"currentAppInstallation":{"activeSubscriptions":[]}}}`
		},
	})
	defer srv.Close()

	active, err := HasActivePayment(context.Background(), testClient(srv))
	require.NoError(t, err)
	assert.False(t, active)
}

func TestHasActivePaymentIgnoresNonActiveStatuses(t *testing.T) {
	srv := adminStub(t, map[string]func(gqlRequest) string{
		"activeSubscriptions": func(gqlRequest) string {
			return `{"data":{"currentAppInstallation":{"activeSubscriptions":[{"id":"1","name":"Pro","status":"CANCELLED"},{"id":"2","name":"Pro","status":"FROZEN"}]}}}`
		},
	})
	defer srv.Close()

	active, err := HasActivePayment(context.Background(), testClient(srv))
	require.NoError(t, err)
	assert.False(t, active)
}

func TestPlanSelectionURL(t *testing.T) {
	got := PlanSelectionURL("s1.myshopify.com", "zenloop-surveys-1")
	assert.Equal(t, "https://admin.shopify.com/store/s1/charges/zenloop-surveys-1/pricing_plans", got)
}
