package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"backend/internal/config"
	"backend/internal/resolver"
	"backend/internal/settings"
	"backend/internal/shopify"
	"backend/internal/zenloop"

	"github.com/aws/aws-lambda-go/events"
)

type resolveRequest struct {
	Shop    string `json:"shop"`
	OrderID string `json:"orderId"`
	Locale  string `json:"locale"`

	PostPurchase   bool   `json:"postPurchase"`
	CustomerID     string `json:"customerId"`
	ProductTitle   string `json:"productTitle"`
	ProductVariant string `json:"productVariant"`
	TotalPrice     string `json:"totalPrice"`
	Currency       string `json:"currency"`
}

// SurveyResolveHandler computes the render plan for the thank-you /
// post-purchase surface: which widget (if any) and the survey URL per
// option. Called by the extension at presentation time.
func SurveyResolveHandler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	if req.RequestContext.HTTP.Method != "POST" {
		return errResp(405, "method not allowed")
	}

	var in resolveRequest
	if err := json.Unmarshal(rawBody(req), &in); err != nil {
		return errResp(400, "invalid json body")
	}
	if !shopify.IsValidShopDomain(in.Shop) {
		return errResp(400, "invalid shop")
	}

	order := resolver.OrderContext{
		ShopDomain:     in.Shop,
		OrderID:        in.OrderID,
		PostPurchase:   in.PostPurchase,
		CustomerID:     in.CustomerID,
		ProductTitle:   in.ProductTitle,
		ProductVariant: in.ProductVariant,
		TotalPrice:     in.TotalPrice,
		Currency:       in.Currency,
	}

	st, err := loadShopSettings(ctx, in.Shop)
	if err != nil {
		log.Printf("survey-resolve: shop=%s settings load failed: %v", in.Shop, err)
		// No settings reachable: render nothing rather than fail checkout.
		return jsonResp(200, resolver.Resolve(resolver.Input{}))
	}

	input := resolver.Input{
		Settings: st,
		Order:    order,
		Locale:   in.Locale,
		BaseURL:  config.SurveyBaseURL(),
	}

	if st != nil && st.DisplayType == settings.DisplayForm {
		survey, fetchErr := zenloop.New().FetchSurvey(ctx, st.SurveyID)
		if fetchErr != nil && !errors.Is(fetchErr, context.Canceled) {
			log.Printf("survey-resolve: shop=%s survey fetch failed, using link mode: %v", in.Shop, fetchErr)
		}
		input.Survey = survey
		input.FetchErr = fetchErr
	}

	return jsonResp(200, resolver.Resolve(input))
}

// loadShopSettings reads the shop's metafield via its offline session.
// (nil, nil) means unconfigured.
func loadShopSettings(ctx context.Context, shop string) (*settings.SurveySettings, error) {
	admin, err := adminClientForShop(ctx, shop)
	if err != nil {
		if errors.Is(err, errNoSession) {
			return nil, nil
		}
		return nil, err
	}

	store := &shopify.MetafieldStore{Client: admin}
	raw, err := store.Get(ctx, shopify.SettingsNamespace, shopify.SettingsKey)
	if err != nil || raw == nil {
		return nil, err
	}

	var st settings.SurveySettings
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, nil
	}
	if st.OrgID == "" || st.SurveyID == "" {
		return nil, nil
	}
	if st.DisplayType == "" {
		st.DisplayType = settings.DisplayLink
	}
	return &st, nil
}
