package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// Webhook delivery headers.
const (
	HeaderWebhookTopic = "x-shopify-topic"
	HeaderShopDomain   = "x-shopify-shop-domain"
	HeaderWebhookHmac  = "x-shopify-hmac-sha256"
	HeaderWebhookID    = "x-shopify-webhook-id"
)

// VerifyWebhookHMAC checks the base64 HMAC-SHA256 digest Shopify computes
// over the raw request body.
func VerifyWebhookHMAC(body []byte, secret, provided string) bool {
	if strings.TrimSpace(provided) == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(provided))
}

// IsValidShopDomain accepts only *.myshopify.com domains.
func IsValidShopDomain(shop string) bool {
	if !strings.HasSuffix(shop, ".myshopify.com") {
		return false
	}
	if strings.Contains(shop, "/") || strings.Contains(shop, " ") {
		return false
	}
	return len(shop) >= len("a.myshopify.com")
}
