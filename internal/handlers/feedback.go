package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"backend/internal/config"
	"backend/internal/settings"
	"backend/internal/shopify"
	"backend/internal/zenloop"

	"github.com/aws/aws-lambda-go/events"
)

// FeedbackHandler backs the admin feedback page: aggregate results for the
// configured survey plus the individual responses per question.
func FeedbackHandler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	shop := strings.ToLower(strings.TrimSpace(req.QueryStringParameters["shop"]))
	if !shopify.IsValidShopDomain(shop) {
		return errResp(400, "invalid shop (expected like your-store.myshopify.com)")
	}

	admin, err := adminClientForShop(ctx, shop)
	if err != nil {
		if errors.Is(err, errNoSession) {
			return errResp(401, "Authentication failed. Please refresh the page.")
		}
		log.Printf("feedback: shop=%s session lookup failed: %v", shop, err)
		return errResp(500, "failed to load session")
	}

	active, err := shopify.HasActivePayment(ctx, admin)
	if err != nil {
		log.Printf("feedback: shop=%s billing check failed: %v", shop, err)
		return errResp(401, "Authentication failed. Please refresh the page.")
	}
	if !active {
		return jsonResp(200, map[string]any{
			"needsBilling":     true,
			"planSelectionUrl": shopify.PlanSelectionURL(shop, config.AppHandle()),
		})
	}

	store := &shopify.MetafieldStore{Client: admin}
	raw, err := store.Get(ctx, shopify.SettingsNamespace, shopify.SettingsKey)
	if err != nil {
		log.Printf("feedback: shop=%s metafield read failed: %v", shop, err)
		return errResp(500, "failed to load settings")
	}
	if raw == nil {
		return errResp(400, "Please configure your Zenloop settings first")
	}

	var st settings.SurveySettings
	if err := json.Unmarshal(raw, &st); err != nil || st.OrgID == "" || st.SurveyID == "" {
		return errResp(400, "Organization ID and Survey ID are required")
	}

	zl := zenloop.New()
	agg, err := zl.FetchAggregate(ctx, st.SurveyID)
	if err != nil {
		log.Printf("feedback: shop=%s survey=%s aggregate fetch failed: %v", shop, st.SurveyID, err)
		return errResp(500, "failed to load survey responses")
	}

	// One sequential pagination walk per question; a single broken
	// question should not empty the whole page.
	responses := map[string][]zenloop.Response{}
	for _, q := range agg.AggregatedData {
		rs, err := zl.FetchQuestionResponses(ctx, st.SurveyID, q.QuestionID)
		if err != nil {
			log.Printf("feedback: shop=%s survey=%s question=%s responses fetch failed: %v", shop, st.SurveyID, q.QuestionID, err)
			continue
		}
		responses[q.QuestionID] = rs
	}

	return jsonResp(200, map[string]any{
		"settings":  st,
		"aggregate": agg,
		"responses": responses,
	})
}
