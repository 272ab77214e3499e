package zenloop

import (
	"context"
	"fmt"
	"strings"
)

const responsePageSize = 25

type AggregatedQuestion struct {
	QuestionID string `json:"questionId"`
	Title      string `json:"title"`
	Type       string `json:"type"`
	Answers    struct {
		Values map[string]int `json:"values"`
	} `json:"answers"`
}

type Aggregate struct {
	AggregatedData []AggregatedQuestion `json:"aggregatedData"`
}

type Response struct {
	ID          string         `json:"id"`
	Created     string         `json:"created"`
	ResultsData map[string]any `json:"resultsData"`
}

type responsesPage struct {
	Responses  []Response `json:"responses"`
	TotalPages int        `json:"totalPages"`
}

// FetchAggregate loads per-question response aggregates for a survey.
func (c *Client) FetchAggregate(ctx context.Context, surveyID string) (*Aggregate, error) {
	endpoint := fmt.Sprintf("%s/api/v2/surveys/%s/responses/aggregate", strings.TrimRight(c.BaseURL, "/"), surveyID)

	var agg Aggregate
	if err := c.getJSON(ctx, endpoint, &agg); err != nil {
		return nil, err
	}
	return &agg, nil
}

// FetchQuestionResponses walks the public-responses pages for one question,
// sequentially, until the server-declared page count runs out or a page
// comes back empty. Never parallelized.
func (c *Client) FetchQuestionResponses(ctx context.Context, surveyID, questionID string) ([]Response, error) {
	base := strings.TrimRight(c.BaseURL, "/")

	var all []Response
	totalPages := 1
	for page := 1; page <= totalPages; page++ {
		endpoint := fmt.Sprintf("%s/api/v2/surveys/%s/public-responses?question_ids=%s&page=%d&page_size=%d",
			base, surveyID, questionID, page, responsePageSize)

		var pg responsesPage
		if err := c.getJSON(ctx, endpoint, &pg); err != nil {
			return nil, err
		}
		if len(pg.Responses) == 0 {
			break
		}
		all = append(all, pg.Responses...)

		if pg.TotalPages > totalPages {
			totalPages = pg.TotalPages
		}
	}
	return all, nil
}
