package shopify

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ShopFromSessionToken verifies a checkout/post-purchase session token
// (HS256, signed with the app's client secret) and extracts the shop
// domain. Checkout tokens carry it in the dest claim; post-purchase tokens
// nest it under input_data.shop.domain.
func ShopFromSessionToken(tokenStr, secret string) (string, error) {
	tok, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("session token has no claims")
	}

	if dest, _ := claims["dest"].(string); dest != "" {
		shop := strings.TrimPrefix(dest, "https://")
		shop = strings.TrimSuffix(shop, "/")
		if IsValidShopDomain(shop) {
			return shop, nil
		}
	}

	if input, _ := claims["input_data"].(map[string]any); input != nil {
		if shopMap, _ := input["shop"].(map[string]any); shopMap != nil {
			if domain, _ := shopMap["domain"].(string); IsValidShopDomain(domain) {
				return domain, nil
			}
		}
	}

	return "", errors.New("session token carries no shop domain")
}
