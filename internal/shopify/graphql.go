package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// AdminClient carries the request-scoped credentials for one shop's Admin
// GraphQL API. Build one per request; there is no shared client state.
type AdminClient struct {
	ShopDomain  string
	APIVersion  string
	AccessToken string

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
	// Endpoint overrides the computed Admin API URL (tests only).
	Endpoint string
}

func (c *AdminClient) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return fmt.Sprintf("https://%s/admin/api/%s/graphql.json", c.ShopDomain, c.APIVersion)
}

func (c *AdminClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

type GraphQLError struct {
	Message    string `json:"message"`
	Path       []any  `json:"path,omitempty"`
	Extensions struct {
		Code string `json:"code,omitempty"`
	} `json:"extensions,omitempty"`
}

type GraphQLResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []GraphQLError `json:"errors"`
}

func PostGraphQL[T any](ctx context.Context, c *AdminClient, query string, variables any) (*GraphQLResponse[T], int, error) {
	body := map[string]any{
		"query":     query,
		"variables": variables,
	}
	b, _ := json.Marshal(body)

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(b))
	req.Header.Set("content-type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.AccessToken)

	res, err := c.httpClient().Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()

	raw, _ := io.ReadAll(res.Body)

	var out GraphQLResponse[T]
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, res.StatusCode, err
	}

	return &out, res.StatusCode, nil
}

// postChecked is PostGraphQL plus the status/errors bookkeeping every call
// site repeats: non-2xx and top-level GraphQL errors become Go errors.
func postChecked[T any](ctx context.Context, c *AdminClient, query string, variables any) (*GraphQLResponse[T], error) {
	resp, status, err := PostGraphQL[T](ctx, c, query, variables)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("admin api status %d", status)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("admin api graphql error: %s", resp.Errors[0].Message)
	}
	return resp, nil
}
