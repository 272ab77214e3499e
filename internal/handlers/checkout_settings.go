package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"backend/internal/config"
	"backend/internal/shopify"

	"github.com/aws/aws-lambda-go/events"
)

// CheckoutSettingsHandler serves the post-purchase extension: POST with a
// Bearer session token, answers {data:{orgId,surveyId,...}} from the
// authenticated shop's metafield.
func CheckoutSettingsHandler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	if req.RequestContext.HTTP.Method != "POST" {
		return errResp(405, "method not allowed")
	}

	auth := header(req, "authorization")
	tokenStr := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	if tokenStr == "" || tokenStr == auth {
		return errResp(401, "missing session token")
	}

	secret, err := config.ShopifyAPISecret(ctx)
	if err != nil {
		log.Printf("checkout-settings: secret unavailable: %v", err)
		return errResp(500, "Failed to fetch settings")
	}

	shop, err := shopify.ShopFromSessionToken(tokenStr, secret)
	if err != nil {
		log.Printf("checkout-settings: session token rejected: %v", err)
		return errResp(400, "Shop domain not found")
	}

	admin, err := adminClientForShop(ctx, shop)
	if err != nil {
		if errors.Is(err, errNoSession) {
			log.Printf("checkout-settings: shop=%s has no session", shop)
			return errResp(404, "Shop session not found")
		}
		log.Printf("checkout-settings: shop=%s session lookup failed: %v", shop, err)
		return errResp(500, "Failed to fetch settings")
	}

	store := &shopify.MetafieldStore{Client: admin}
	raw, err := store.Get(ctx, shopify.SettingsNamespace, shopify.SettingsKey)
	if err != nil {
		log.Printf("checkout-settings: shop=%s metafield read failed: %v", shop, err)
		return errResp(500, "Failed to fetch settings")
	}
	if raw == nil {
		return errResp(404, "Settings not found")
	}

	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		log.Printf("checkout-settings: shop=%s settings parse failed: %v", shop, err)
		return errResp(500, "Failed to fetch settings")
	}
	if _, ok := parsed["orgId"]; !ok {
		return errResp(400, "Invalid settings format")
	}
	if _, ok := parsed["surveyId"]; !ok {
		return errResp(400, "Invalid settings format")
	}

	return jsonResp(200, map[string]any{"data": parsed})
}
