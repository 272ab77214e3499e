package settings

import (
	"context"
	"strings"

	"backend/internal/zenloop"
)

// SurveyLookup is the one external read validation may perform.
type SurveyLookup interface {
	FetchSurvey(ctx context.Context, surveyID string) (*zenloop.Survey, error)
}

// Validate normalizes raw form input into SurveySettings or fails with a
// typed error. Only displayType=form touches the network: one blocking
// survey lookup, not retried, rejected conservatively on any failure.
func Validate(ctx context.Context, lookup SurveyLookup, orgID, surveyID, displayType string) (*SurveySettings, error) {
	orgID = strings.TrimSpace(orgID)
	surveyID = strings.TrimSpace(surveyID)
	displayType = strings.TrimSpace(displayType)

	if orgID == "" || surveyID == "" || displayType == "" {
		return nil, ErrMissingField
	}
	if !isDigits(orgID) || !isDigits(surveyID) {
		return nil, ErrInvalidNumber
	}

	dt := DisplayType(displayType)
	switch dt {
	case DisplayLink:
	case DisplayForm:
		survey, err := lookup.FetchSurvey(ctx, surveyID)
		if err != nil || survey.RatingQuestion() == nil {
			return nil, &UnsupportedDisplayTypeError{SurveyID: surveyID}
		}
	default:
		return nil, &UnsupportedDisplayTypeError{SurveyID: surveyID}
	}

	return &SurveySettings{
		OrgID:       orgID,
		SurveyID:    surveyID,
		DisplayType: dt,
	}, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
