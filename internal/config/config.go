package config

import (
	"os"
	"strings"
)

func ShopifyAPIVersion() string {
	v := strings.TrimSpace(os.Getenv("SHOPIFY_API_VERSION"))
	if v == "" {
		v = "2026-01"
	}
	return v
}

// AppHandle is the "app_handle" from shopify.app.toml; it is part of the
// managed-pricing plan selection URL.
func AppHandle() string {
	h := strings.TrimSpace(os.Getenv("SHOPIFY_APP_HANDLE"))
	if h == "" {
		h = "zenloop-surveys-1"
	}
	return h
}

// SurveyBaseURL is where shoppers land when they click a survey entry link.
func SurveyBaseURL() string {
	u := strings.TrimSpace(os.Getenv("SURVEY_BASE_URL"))
	if u == "" {
		u = "https://zenresponses.zenloop.com/"
	}
	return u
}

// SurveyAPIURL is the Zenloop survey definition / responses API.
func SurveyAPIURL() string {
	u := strings.TrimSpace(os.Getenv("SURVEY_API_URL"))
	if u == "" {
		u = "https://surveys-backend-1mxy.onrender.com"
	}
	return strings.TrimRight(u, "/")
}

func AlertsTopicArn() string {
	return os.Getenv("UNINSTALL_ALERTS_TOPIC_ARN")
}
