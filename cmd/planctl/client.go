package main

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/nutriplan/nutriplan-server/internal/auth"
	"github.com/nutriplan/nutriplan-server/internal/model"
)

func newClient() *resty.Client {
	token := tokenFlag
	if token == "" {
		token = auth.LocalDevToken
	}
	return resty.New().
		SetBaseURL(apiFlag).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(token).
		SetTimeout(30 * time.Second)
}

func checkStatus(resp *resty.Response) error {
	if resp.IsError() {
		return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// planDocResponse is the read shape of the plan endpoints: document fields
// at top level plus the flags storage adds.
type planDocResponse struct {
	Library   []model.Recipe    `json:"library"`
	Planner   model.PlannerGrid `json:"planner"`
	Themes    map[int]string    `json:"themes"`
	PlanName  string            `json:"plan_name"`
	IsActive  bool              `json:"is_active"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (r *planDocResponse) toPlan() *model.Plan {
	return &model.Plan{
		Name: r.PlanName,
		Document: model.PlanDocument{
			Library: r.Library,
			Planner: r.Planner,
			Themes:  r.Themes,
		},
		IsActive:  r.IsActive,
		UpdatedAt: r.UpdatedAt,
	}
}

func fetchPlan(c *resty.Client, planID string) (*model.Plan, error) {
	var doc planDocResponse
	resp, err := c.R().SetResult(&doc).Get("/api/plans/" + planID)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return doc.toPlan(), nil
}

func fetchLibrary(c *resty.Client) ([]model.Recipe, error) {
	var listing struct {
		Library []model.Recipe `json:"library"`
	}
	resp, err := c.R().SetResult(&listing).Get("/api/recipes")
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return listing.Library, nil
}

func savePlan(c *resty.Client, name string, doc *model.PlanDocument, makeActive bool) error {
	payload := map[string]interface{}{
		"name":      name,
		"data":      doc,
		"is_active": makeActive,
	}
	resp, err := c.R().SetBody(payload).Post("/api/plans")
	if err != nil {
		return err
	}
	return checkStatus(resp)
}
