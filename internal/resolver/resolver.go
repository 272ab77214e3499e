// Package resolver decides what the thank-you / post-purchase surface
// shows: nothing, a loading marker, a single survey link, or an inline
// rating widget. The decision is pure; fetching happens elsewhere.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"backend/internal/settings"
	"backend/internal/zenloop"
)

type State string

const (
	// StateNone renders nothing: no settings, or the shopper navigated
	// away mid-fetch.
	StateNone    State = "none"
	StateLoading State = "loading"
	StateLink    State = "link"
	StateForm    State = "form"
)

type Widget string

const (
	WidgetSmileys Widget = "smileys"
	WidgetStars   Widget = "stars"
	WidgetLabels  Widget = "labels"
)

// OrderContext carries the shopper context appended to survey URLs. The
// post-purchase variant includes the purchase detail keys even when their
// values are empty, for analytics continuity on the Zenloop side.
type OrderContext struct {
	ShopDomain string
	OrderID    string

	PostPurchase   bool
	CustomerID     string
	ProductTitle   string
	ProductVariant string
	TotalPrice     string
	Currency       string
}

// Option is one selectable rating. Choosing it navigates straight to URL;
// there is no separate submit step.
type Option struct {
	Rating int    `json:"rating"`
	Label  string `json:"label"`
	URL    string `json:"url"`
}

type RenderPlan struct {
	State  State  `json:"state"`
	Widget Widget `json:"widget,omitempty"`

	Title              string `json:"title,omitempty"`
	MinRateDescription string `json:"minRateDescription,omitempty"`
	MaxRateDescription string `json:"maxRateDescription,omitempty"`

	// SurveyURL is set in link mode.
	SurveyURL string   `json:"surveyUrl,omitempty"`
	Options   []Option `json:"options,omitempty"`
}

type Input struct {
	Settings *settings.SurveySettings
	// Survey and FetchErr are the outcome of the definition fetch;
	// Fetching marks it still in flight.
	Survey   *zenloop.Survey
	FetchErr error
	Fetching bool

	Order   OrderContext
	Locale  string
	BaseURL string
}

// Resolve runs the presentation state machine. Definition-fetch failures
// never block the shopper: anything short of a confirmed rating question
// degrades to the plain link.
func Resolve(in Input) RenderPlan {
	if in.Settings == nil {
		return RenderPlan{State: StateNone}
	}
	if in.FetchErr != nil && errors.Is(in.FetchErr, context.Canceled) {
		return RenderPlan{State: StateNone}
	}
	if in.Fetching {
		return RenderPlan{State: StateLoading}
	}

	linkPlan := RenderPlan{
		State:     StateLink,
		SurveyURL: BuildSurveyURL(in.BaseURL, *in.Settings, in.Order, 0),
	}

	if in.Settings.DisplayType != settings.DisplayForm || in.FetchErr != nil || in.Survey == nil {
		return linkPlan
	}

	rating := in.Survey.RatingQuestion()
	if rating == nil {
		return linkPlan
	}

	plan := RenderPlan{
		State:              StateForm,
		Title:              in.Survey.Title.For(in.Locale),
		MinRateDescription: rating.MinRateDescription,
		MaxRateDescription: rating.MaxRateDescription,
	}

	switch rating.RateType {
	case "smileys":
		plan.Widget = WidgetSmileys
		emojis := emojisForRating(rating.RateCount)
		for i, emoji := range emojis {
			plan.Options = append(plan.Options, Option{
				Rating: i + 1,
				Label:  emoji,
				URL:    BuildSurveyURL(in.BaseURL, *in.Settings, in.Order, i+1),
			})
		}
	case "stars":
		plan.Widget = WidgetStars
		for i := 0; i < rating.RateCount; i++ {
			plan.Options = append(plan.Options, Option{
				Rating: i + 1,
				Label:  "★",
				URL:    BuildSurveyURL(in.BaseURL, *in.Settings, in.Order, i+1),
			})
		}
	default:
		plan.Widget = WidgetLabels
		for i := 0; i < rating.RateCount; i++ {
			plan.Options = append(plan.Options, Option{
				Rating: i + 1,
				Label:  paddedRating(i + 1),
				URL:    BuildSurveyURL(in.BaseURL, *in.Settings, in.Order, i+1),
			})
		}
	}

	return plan
}

// BuildSurveyURL is pure and deterministic: the key/value set must match
// what Zenloop expects exactly, key order does not matter. satisfaction 0
// means "no rating chosen" (the plain link).
func BuildSurveyURL(base string, st settings.SurveySettings, order OrderContext, satisfaction int) string {
	params := url.Values{}
	params.Set("orgId", st.OrgID)
	params.Set("surveyId", st.SurveyID)
	params.Set("shop_domain", order.ShopDomain)
	params.Set("order_id", order.OrderID)

	if order.PostPurchase {
		params.Set("customer_id", order.CustomerID)
		params.Set("product_title", order.ProductTitle)
		params.Set("product_variant", order.ProductVariant)
		params.Set("total_price", order.TotalPrice)
		params.Set("currency", order.Currency)
	}

	if satisfaction > 0 {
		params.Set("satisfaction_level", fmt.Sprintf("%d", satisfaction))
	}

	return base + "?" + params.Encode()
}

// paddedRating pads single digits with NBSPs so the round label buttons
// keep a uniform width.
func paddedRating(rating int) string {
	const space = " "
	if rating > 9 {
		return fmt.Sprintf("%s%d%s", space, rating, space)
	}
	return fmt.Sprintf("%s%s%d%s%s", space, space, rating, space, space)
}
