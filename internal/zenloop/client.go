// Package zenloop is the client for the public Zenloop survey API. Survey
// definitions are never cached: every presentation-time render fetches
// fresh.
package zenloop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"backend/internal/config"
)

// ErrNoSurvey means the API answered but carried no survey definition.
var ErrNoSurvey = errors.New("zenloop: no survey in response")

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func New() *Client {
	return &Client{BaseURL: config.SurveyAPIURL()}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// Title is either a plain string or a locale→string map in the survey JSON.
type Title map[string]string

func (t *Title) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Title{"default": s}
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*t = Title(m)
	return nil
}

// For returns the title for a locale like "de-DE", falling back to the
// language part and then to "default".
func (t Title) For(locale string) string {
	if len(t) == 0 {
		return ""
	}
	language, _, _ := strings.Cut(locale, "-")
	if v, ok := t[language]; ok {
		return v
	}
	return t["default"]
}

type Question struct {
	Type               string `json:"type"`
	RateMin            int    `json:"rateMin"`
	RateMax            int    `json:"rateMax"`
	RateCount          int    `json:"rateCount"`
	RateType           string `json:"rateType"`
	MinRateDescription string `json:"minRateDescription"`
	MaxRateDescription string `json:"maxRateDescription"`
}

type Page struct {
	Elements []Question `json:"elements"`
}

type Survey struct {
	Title Title  `json:"title"`
	Pages []Page `json:"pages"`
}

// RatingQuestion returns the survey's first rating-type question, wherever
// it sits in the page/element lists, or nil.
func (s *Survey) RatingQuestion() *Question {
	if s == nil {
		return nil
	}
	for _, p := range s.Pages {
		for i := range p.Elements {
			if p.Elements[i].Type == "rating" {
				return &p.Elements[i]
			}
		}
	}
	return nil
}

type surveyEnvelope struct {
	SurveyJSON *Survey `json:"surveyJson"`
}

// FetchSurvey loads the public survey definition. Cancellation propagates
// as the context's error; callers on the presentation path treat that as
// "navigated away", not as a failure.
func (c *Client) FetchSurvey(ctx context.Context, surveyID string) (*Survey, error) {
	endpoint := fmt.Sprintf("%s/api/v2/surveys/public/%s", strings.TrimRight(c.BaseURL, "/"), surveyID)

	var env surveyEnvelope
	if err := c.getJSON(ctx, endpoint, &env); err != nil {
		return nil, err
	}
	if env.SurveyJSON == nil {
		return nil, ErrNoSurvey
	}
	return env.SurveyJSON, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("accept", "application/json")

	res, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("zenloop: status %d for %s", res.StatusCode, endpoint)
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
