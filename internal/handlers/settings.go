package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/url"
	"strings"

	"backend/internal/config"
	"backend/internal/settings"
	"backend/internal/shopify"
	"backend/internal/zenloop"

	"github.com/aws/aws-lambda-go/events"
)

// SettingsHandler serves the embedded admin settings page data: GET reads
// the current configuration, POST validates and saves it. The billing gate
// runs before either.
func SettingsHandler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	shop := strings.ToLower(strings.TrimSpace(req.QueryStringParameters["shop"]))
	if !shopify.IsValidShopDomain(shop) {
		return errResp(400, "invalid shop (expected like your-store.myshopify.com)")
	}

	admin, err := adminClientForShop(ctx, shop)
	if err != nil {
		if errors.Is(err, errNoSession) {
			return errResp(401, "Authentication failed. Please refresh the page.")
		}
		log.Printf("settings: shop=%s session lookup failed: %v", shop, err)
		return errResp(500, "failed to load session")
	}

	// Billing gate. An unreachable billing subsystem reads as an auth
	// failure, never as access.
	active, err := shopify.HasActivePayment(ctx, admin)
	if err != nil {
		log.Printf("settings: shop=%s billing check failed: %v", shop, err)
		return errResp(401, "Authentication failed. Please refresh the page.")
	}
	if !active {
		return jsonResp(200, map[string]any{
			"needsBilling":     true,
			"planSelectionUrl": shopify.PlanSelectionURL(shop, config.AppHandle()),
			"settings":         map[string]any{},
			"initialized":      false,
		})
	}

	switch req.RequestContext.HTTP.Method {
	case "GET":
		return getSettings(ctx, admin)
	case "POST":
		return saveSettings(ctx, admin, req)
	default:
		return errResp(405, "method not allowed")
	}
}

func getSettings(ctx context.Context, admin *shopify.AdminClient) (events.APIGatewayV2HTTPResponse, error) {
	store := &shopify.MetafieldStore{Client: admin}

	raw, err := store.Get(ctx, shopify.SettingsNamespace, shopify.SettingsKey)
	if err != nil {
		log.Printf("settings: shop=%s metafield read failed: %v", admin.ShopDomain, err)
		return errResp(500, "failed to load settings")
	}

	shopID, err := store.ShopID(ctx)
	if err != nil {
		log.Printf("settings: shop=%s shop id lookup failed: %v", admin.ShopDomain, err)
		return errResp(500, "failed to load settings")
	}

	if raw == nil {
		return jsonResp(200, map[string]any{
			"shopId":      shopID,
			"settings":    map[string]any{},
			"initialized": false,
		})
	}

	var st settings.SurveySettings
	if err := json.Unmarshal(raw, &st); err != nil {
		// Get already filtered invalid JSON; a shape mismatch here still
		// just means "not configured yet".
		log.Printf("settings: shop=%s stored settings have unexpected shape: %v", admin.ShopDomain, err)
		return jsonResp(200, map[string]any{
			"shopId":      shopID,
			"settings":    map[string]any{},
			"initialized": false,
		})
	}

	return jsonResp(200, map[string]any{
		"shopId":      shopID,
		"settings":    st,
		"initialized": true,
	})
}

func saveSettings(ctx context.Context, admin *shopify.AdminClient, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	form, err := url.ParseQuery(string(rawBody(req)))
	if err != nil {
		return errResp(400, "invalid form body")
	}

	st, err := settings.Validate(ctx, zenloop.New(),
		form.Get("orgId"), form.Get("surveyId"), form.Get("displayType"))
	if err != nil {
		return errResp(400, validationMessage(err))
	}

	store := &shopify.MetafieldStore{Client: admin}
	if _, err := store.Set(ctx, shopify.SettingsNamespace, shopify.SettingsKey, st); err != nil {
		var ce *shopify.CommitError
		if errors.As(err, &ce) && ce.Message != "no metafield returned" {
			// Field-level rejection from the upsert is user-correctable.
			return errResp(400, ce.Message)
		}
		log.Printf("settings: shop=%s metafield write failed: %v", admin.ShopDomain, err)
		return errResp(500, "Failed to save settings. Please try again.")
	}

	return jsonResp(200, map[string]any{
		"message":  "Settings saved successfully",
		"settings": st,
	})
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, settings.ErrMissingField):
		return "All fields are required"
	case errors.Is(err, settings.ErrInvalidNumber):
		return "Organization ID and Survey ID must be valid numbers"
	default:
		var ute *settings.UnsupportedDisplayTypeError
		if errors.As(err, &ute) {
			return "Unable to save display type as embedded form. Survey " + ute.SurveyID + " must have a rating question."
		}
		return err.Error()
	}
}
