// Package settings defines the per-shop survey configuration and its
// validation. The configuration lives in the shop's zenloop/settings
// metafield and nowhere else.
package settings

import (
	"errors"
	"fmt"
)

type DisplayType string

const (
	// DisplayLink renders a single button out to the survey.
	DisplayLink DisplayType = "link"
	// DisplayForm renders the rating widget inline; requires the survey
	// to have a rating question.
	DisplayForm DisplayType = "form"
)

// SurveySettings is the metafield value. Overwritten whole on every save,
// never versioned.
type SurveySettings struct {
	OrgID       string      `json:"orgId"`
	SurveyID    string      `json:"surveyId"`
	DisplayType DisplayType `json:"displayType,omitempty"`
}

var (
	ErrMissingField  = errors.New("all fields are required")
	ErrInvalidNumber = errors.New("organization id and survey id must be valid numbers")
)

// UnsupportedDisplayTypeError rejects displayType=form when the referenced
// survey cannot be confirmed to contain a rating question. The settings are
// never silently downgraded to link.
type UnsupportedDisplayTypeError struct {
	SurveyID string
}

func (e *UnsupportedDisplayTypeError) Error() string {
	return fmt.Sprintf("unable to save display type as embedded form: survey %s must have a rating question", e.SurveyID)
}
