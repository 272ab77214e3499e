package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signBody(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookHMAC(t *testing.T) {
	body := []byte(`{"id":1}`)
	secret := "shh"

	assert.True(t, VerifyWebhookHMAC(body, secret, signBody(body, secret)))
	assert.False(t, VerifyWebhookHMAC(body, secret, signBody(body, "other")))
	assert.False(t, VerifyWebhookHMAC([]byte(`{"id":2}`), secret, signBody(body, secret)))
	assert.False(t, VerifyWebhookHMAC(body, secret, ""))
	assert.False(t, VerifyWebhookHMAC(body, secret, "   "))
}

func TestIsValidShopDomain(t *testing.T) {
	assert.True(t, IsValidShopDomain("s1.myshopify.com"))
	assert.True(t, IsValidShopDomain("my-store.myshopify.com"))

	assert.False(t, IsValidShopDomain(""))
	assert.False(t, IsValidShopDomain("example.com"))
	assert.False(t, IsValidShopDomain(".myshopify.com"))
	assert.False(t, IsValidShopDomain("evil.com/x.myshopify.com"))
	assert.False(t, IsValidShopDomain("spaced shop.myshopify.com"))
}
