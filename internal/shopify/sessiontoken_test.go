package shopify

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokenSecret = "client-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	claims["exp"] = time.Now().Add(time.Minute).Unix()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(tokenSecret))
	require.NoError(t, err)
	return s
}

func TestShopFromSessionTokenDest(t *testing.T) {
	tok := signToken(t, jwt.MapClaims{"dest": "https://s1.myshopify.com"})

	shop, err := ShopFromSessionToken(tok, tokenSecret)
	require.NoError(t, err)
	assert.Equal(t, "s1.myshopify.com", shop)
}

func TestShopFromSessionTokenDestTrailingSlash(t *testing.T) {
	tok := signToken(t, jwt.MapClaims{"dest": "https://s1.myshopify.com/"})

	shop, err := ShopFromSessionToken(tok, tokenSecret)
	require.NoError(t, err)
	assert.Equal(t, "s1.myshopify.com", shop)
}

func TestShopFromSessionTokenInputData(t *testing.T) {
	tok := signToken(t, jwt.MapClaims{
		"input_data": map[string]any{
			"shop": map[string]any{"domain": "s2.myshopify.com"},
		},
	})

	shop, err := ShopFromSessionToken(tok, tokenSecret)
	require.NoError(t, err)
	assert.Equal(t, "s2.myshopify.com", shop)
}

func TestShopFromSessionTokenWrongSecret(t *testing.T) {
	tok := signToken(t, jwt.MapClaims{"dest": "https://s1.myshopify.com"})

	_, err := ShopFromSessionToken(tok, "wrong")
	assert.Error(t, err)
}

func TestShopFromSessionTokenNoShop(t *testing.T) {
	tok := signToken(t, jwt.MapClaims{"aud": "whatever"})

	_, err := ShopFromSessionToken(tok, tokenSecret)
	assert.Error(t, err)
}

func TestShopFromSessionTokenBogusDest(t *testing.T) {
	tok := signToken(t, jwt.MapClaims{"dest": "https://evil.example.com"})

	_, err := ShopFromSessionToken(tok, tokenSecret)
	assert.Error(t, err)
}
