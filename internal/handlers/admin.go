package handlers

import (
	"context"
	"errors"

	"backend/internal/config"
	"backend/internal/db"
	"backend/internal/sessions"
	"backend/internal/shopify"
)

var errNoSession = errors.New("no session for shop")

// adminClientForShop resolves the shop's offline session and builds a
// request-scoped Admin API client from it.
func adminClientForShop(ctx context.Context, shop string) (*shopify.AdminClient, error) {
	ddb, err := db.NewDynamoClient(ctx)
	if err != nil {
		return nil, err
	}

	store := &sessions.Store{Client: ddb}
	sess, err := store.FindByShop(ctx, shop)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, errNoSession
	}

	return &shopify.AdminClient{
		ShopDomain:  shop,
		APIVersion:  config.ShopifyAPIVersion(),
		AccessToken: sess.AccessToken,
	}, nil
}
