package handlers

import (
	"context"
	"errors"
	"log"
	"strings"

	"backend/internal/alerts"
	"backend/internal/config"
	"backend/internal/db"
	"backend/internal/sessions"
	"backend/internal/shopify"

	"github.com/aws/aws-lambda-go/events"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type sessionDeleter interface {
	DeleteAllForShop(ctx context.Context, shop string) (int, error)
}

// WebhookHandler processes Shopify webhook deliveries: app/uninstalled and
// the three GDPR topics. Dependencies are injected so the dispatch logic
// is testable without AWS.
type WebhookHandler struct {
	Secret   string
	Sessions sessionDeleter

	// ClaimDelivery returns true when this webhook id was already
	// processed. Optional.
	ClaimDelivery func(ctx context.Context, webhookID, shop, topic string) (bool, error)
	// NotifyUninstall is best-effort. Optional.
	NotifyUninstall func(ctx context.Context, shop string, deleted int) error
	// DeleteSettings removes the shop's settings metafield on shop/redact.
	// Best-effort. Optional.
	DeleteSettings func(ctx context.Context, shop string) error
}

func (h *WebhookHandler) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	body := rawBody(req)

	if !shopify.VerifyWebhookHMAC(body, h.Secret, header(req, shopify.HeaderWebhookHmac)) {
		return errResp(401, "invalid hmac")
	}

	topic := strings.TrimSpace(header(req, shopify.HeaderWebhookTopic))
	shop := strings.ToLower(strings.TrimSpace(header(req, shopify.HeaderShopDomain)))
	webhookID := strings.TrimSpace(header(req, shopify.HeaderWebhookID))

	if topic == "" || !shopify.IsValidShopDomain(shop) {
		return errResp(400, "missing webhook headers")
	}

	log.Printf("webhooks: received %s for %s", topic, shop)

	if h.ClaimDelivery != nil {
		dup, err := h.ClaimDelivery(ctx, webhookID, shop, topic)
		if err != nil {
			log.Printf("webhooks: shop=%s dedupe claim failed: %v", shop, err)
		} else if dup {
			return jsonResp(200, map[string]any{"message": "Already processed"})
		}
	}

	switch topic {
	case "app/uninstalled":
		deleted, err := h.Sessions.DeleteAllForShop(ctx, shop)
		if err != nil {
			log.Printf("webhooks: shop=%s session cleanup failed: %v", shop, err)
			return errResp(500, "failed to clean up sessions")
		}
		if h.NotifyUninstall != nil {
			if err := h.NotifyUninstall(ctx, shop, deleted); err != nil {
				log.Printf("webhooks: shop=%s uninstall notify failed: %v", shop, err)
			}
		}
		return jsonResp(200, map[string]any{"message": "Sessions removed"})

	case "customers/data_request":
		return jsonResp(200, map[string]any{"message": "No customer data stored"})

	case "customers/redact":
		return jsonResp(200, map[string]any{"message": "No customer data to erase"})

	case "shop/redact":
		// Best-effort: the platform wants an acknowledgment within its
		// deadline whether or not the metafield delete goes through.
		if h.DeleteSettings != nil {
			if err := h.DeleteSettings(ctx, shop); err != nil {
				log.Printf("webhooks: shop=%s settings redact failed: %v", shop, err)
			}
		}
		return jsonResp(200, map[string]any{"message": "Shop data erased"})

	default:
		return jsonResp(400, map[string]any{"message": "Unhandled topic"})
	}
}

// WebhooksHandler is the Lambda entrypoint; it wires the real AWS-backed
// dependencies per invocation.
func WebhooksHandler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	secret, err := config.ShopifyAPISecret(ctx)
	if err != nil {
		log.Printf("webhooks: secret unavailable: %v", err)
		return errResp(500, "webhook secret unavailable")
	}

	ddb, err := db.NewDynamoClient(ctx)
	if err != nil {
		return errResp(500, "failed to init dynamodb")
	}
	store := &sessions.Store{Client: ddb}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return errResp(500, "failed to load aws config")
	}
	snsClient := sns.NewFromConfig(awsCfg)

	h := &WebhookHandler{
		Secret:   secret,
		Sessions: store,
		ClaimDelivery: func(ctx context.Context, webhookID, shop, topic string) (bool, error) {
			return shopify.ClaimWebhook(ctx, ddb, webhookID, shop, topic)
		},
		NotifyUninstall: func(ctx context.Context, shop string, deleted int) error {
			return alerts.NotifyUninstall(ctx, snsClient, shop, deleted)
		},
		DeleteSettings: func(ctx context.Context, shop string) error {
			admin, err := adminClientForShop(ctx, shop)
			if err != nil {
				if errors.Is(err, errNoSession) {
					// Session already gone (uninstall precedes redact);
					// the metafield is platform-owned and dies with the
					// shop record.
					log.Printf("webhooks: shop=%s has no session, skipping metafield delete", shop)
					return nil
				}
				return err
			}
			mfs := &shopify.MetafieldStore{Client: admin}
			return mfs.Delete(ctx, shopify.SettingsNamespace, shopify.SettingsKey)
		},
	}

	return h.Handle(ctx, req)
}
