package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"backend/internal/shopify"

	"github.com/aws/aws-lambda-go/events"
)

var proxyCORSHeaders = map[string]string{
	"access-control-allow-origin":  "*",
	"access-control-allow-methods": "GET, OPTIONS",
	"access-control-allow-headers": "*",
	"content-type":                 "application/json",
}

// SettingsProxyHandler is the CORS-open settings read used by the checkout
// extensions from their own origin: GET ?shop=<domain> → settings JSON.
func SettingsProxyHandler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	if req.RequestContext.HTTP.Method == "OPTIONS" {
		h := map[string]string{"access-control-max-age": "86400"}
		for k, v := range proxyCORSHeaders {
			h[k] = v
		}
		return events.APIGatewayV2HTTPResponse{StatusCode: 204, Headers: h}, nil
	}

	shop := strings.ToLower(strings.TrimSpace(req.QueryStringParameters["shop"]))
	if shop == "" {
		return proxyJSON(400, map[string]any{"error": "Shop parameter is required"})
	}
	if !shopify.IsValidShopDomain(shop) {
		return proxyJSON(400, map[string]any{"error": "Invalid shop domain"})
	}

	admin, err := adminClientForShop(ctx, shop)
	if err != nil {
		if errors.Is(err, errNoSession) {
			return proxyJSON(404, map[string]any{"error": "Settings not found"})
		}
		log.Printf("settings-proxy: shop=%s session lookup failed: %v", shop, err)
		return proxyJSON(500, map[string]any{"error": "Failed to fetch settings"})
	}

	store := &shopify.MetafieldStore{Client: admin}
	raw, err := store.Get(ctx, shopify.SettingsNamespace, shopify.SettingsKey)
	if err != nil {
		log.Printf("settings-proxy: shop=%s metafield read failed: %v", shop, err)
		return proxyJSON(500, map[string]any{"error": "Failed to fetch settings"})
	}
	if raw == nil {
		return proxyJSON(404, map[string]any{"error": "Settings not found"})
	}

	return events.APIGatewayV2HTTPResponse{
		StatusCode: 200,
		Headers:    proxyCORSHeaders,
		Body:       string(raw),
	}, nil
}

func proxyJSON(status int, v any) (events.APIGatewayV2HTTPResponse, error) {
	b, _ := json.Marshal(v)
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    proxyCORSHeaders,
		Body:       string(b),
	}, nil
}
