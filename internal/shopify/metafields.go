package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"backend/internal/retry"
)

// The one metafield this app owns on the shop resource.
const (
	SettingsNamespace = "zenloop"
	SettingsKey       = "settings"
)

// CommitError reports a metafieldsSet upsert that did not commit: either
// Shopify returned userErrors, or it claimed success without returning the
// written record.
type CommitError struct {
	Field   string
	Message string
}

func (e *CommitError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("metafield commit failed: %s: %s", e.Field, e.Message)
	}
	return "metafield commit failed: " + e.Message
}

// MetafieldStore reads and writes the shop-scoped settings metafield. The
// shop's GID is resolved lazily on first write and cached for the lifetime
// of the store, which is one request.
type MetafieldStore struct {
	Client *AdminClient

	shopID string
}

const shopIDQuery = `query getShopId {
  shop {
    id
  }
}`

const getMetafieldQuery = `query getShopMetafield($namespace: String!, $key: String!) {
  shop {
    id
    metafield(namespace: $namespace, key: $key) {
      id
      value
    }
  }
}`

const setMetafieldMutation = `mutation metafieldsSet($metafields: [MetafieldsSetInput!]!) {
  metafieldsSet(metafields: $metafields) {
    metafields {
      id
      namespace
      key
      value
    }
    userErrors {
      field
      message
    }
  }
}`

const deleteMetafieldMutation = `mutation metafieldDelete($input: MetafieldsDeleteInput!) {
  metafieldsDelete(input: $input) {
    deletedId
    userErrors {
      field
      message
    }
  }
}`

type shopIDPayload struct {
	Shop struct {
		ID string `json:"id"`
	} `json:"shop"`
}

type metafieldPayload struct {
	Shop struct {
		ID        string `json:"id"`
		Metafield *struct {
			ID    string `json:"id"`
			Value string `json:"value"`
		} `json:"metafield"`
	} `json:"shop"`
}

type metafieldsSetPayload struct {
	MetafieldsSet struct {
		Metafields []struct {
			ID        string `json:"id"`
			Namespace string `json:"namespace"`
			Key       string `json:"key"`
			Value     string `json:"value"`
		} `json:"metafields"`
		UserErrors []userError `json:"userErrors"`
	} `json:"metafieldsSet"`
}

type metafieldsDeletePayload struct {
	MetafieldsDelete struct {
		DeletedID  string      `json:"deletedId"`
		UserErrors []userError `json:"userErrors"`
	} `json:"metafieldsDelete"`
}

type userError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// ShopID resolves the shop's opaque GID, retrying like all Admin reads.
func (s *MetafieldStore) ShopID(ctx context.Context) (string, error) {
	if s.shopID != "" {
		return s.shopID, nil
	}

	var id string
	err := retry.AdminAPIReads.Do(ctx, func(ctx context.Context) error {
		resp, err := postChecked[shopIDPayload](ctx, s.Client, shopIDQuery, nil)
		if err != nil {
			return err
		}
		id = resp.Data.Shop.ID
		return nil
	})
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", errors.New("could not retrieve shop id")
	}

	s.shopID = id
	return id, nil
}

// Get returns the metafield's JSON value, or nil when the key is absent.
// A value that is not valid JSON is treated as absent: the shop simply has
// not been configured yet, so a stale or mangled payload is logged and
// swallowed rather than surfaced.
func (s *MetafieldStore) Get(ctx context.Context, namespace, key string) (json.RawMessage, error) {
	vars := map[string]any{
		"namespace": namespace,
		"key":       key,
	}

	var value json.RawMessage
	err := retry.AdminAPIReads.Do(ctx, func(ctx context.Context) error {
		resp, err := postChecked[metafieldPayload](ctx, s.Client, getMetafieldQuery, vars)
		if err != nil {
			return err
		}
		if resp.Data.Shop.ID != "" {
			s.shopID = resp.Data.Shop.ID
		}
		mf := resp.Data.Shop.Metafield
		if mf == nil || mf.Value == "" {
			value = nil
			return nil
		}
		if !json.Valid([]byte(mf.Value)) {
			log.Printf("shopify: shop=%s metafield %s/%s holds invalid json, treating as unset", s.Client.ShopDomain, namespace, key)
			value = nil
			return nil
		}
		value = json.RawMessage(mf.Value)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set upserts the metafield with the JSON encoding of value and returns the
// committed value. Writes are single-shot: the upsert is atomic on the
// Shopify side and a retry after an ambiguous failure could mask a
// concurrent save.
func (s *MetafieldStore) Set(ctx context.Context, namespace, key string, value any) (json.RawMessage, error) {
	shopID, err := s.ShopID(ctx)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	vars := map[string]any{
		"metafields": []map[string]any{{
			"namespace": namespace,
			"key":       key,
			"type":      "json",
			"value":     string(encoded),
			"ownerId":   shopID,
		}},
	}

	resp, err := postChecked[metafieldsSetPayload](ctx, s.Client, setMetafieldMutation, vars)
	if err != nil {
		return nil, err
	}

	if errs := resp.Data.MetafieldsSet.UserErrors; len(errs) > 0 {
		first := errs[0]
		ce := &CommitError{Message: first.Message}
		if len(first.Field) > 0 {
			ce.Field = first.Field[len(first.Field)-1]
		}
		return nil, ce
	}
	if len(resp.Data.MetafieldsSet.Metafields) == 0 {
		// Upsert claimed success but committed nothing.
		return nil, &CommitError{Message: "no metafield returned"}
	}

	return json.RawMessage(resp.Data.MetafieldsSet.Metafields[0].Value), nil
}

// Delete removes the shop-owned metafield. Absent metafields delete cleanly.
func (s *MetafieldStore) Delete(ctx context.Context, namespace, key string) error {
	vars := map[string]any{
		"input": map[string]any{
			"namespace": namespace,
			"key":       key,
			"ownerType": "SHOP",
		},
	}

	resp, err := postChecked[metafieldsDeletePayload](ctx, s.Client, deleteMetafieldMutation, vars)
	if err != nil {
		return err
	}
	if errs := resp.Data.MetafieldsDelete.UserErrors; len(errs) > 0 {
		return fmt.Errorf("metafield delete failed: %s", errs[0].Message)
	}
	return nil
}
