package backend

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"

	"surveystudio/internal/model"
)

// Login signs in with email and password
func (c *Client) Login(ctx context.Context, req model.LoginRequest) (*model.BackendAuthResponse, error) {
	var out model.BackendAuthResponse
	if err := c.call(ctx, http.MethodPost, "/api/auth/login", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and signs in
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (*model.BackendAuthResponse, error) {
	var out model.BackendAuthResponse
	if err := c.call(ctx, http.MethodPost, "/api/auth/register", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GoogleLogin exchanges a Google credential for a backend token
func (c *Client) GoogleLogin(ctx context.Context, req model.GoogleLoginRequest) (*model.BackendAuthResponse, error) {
	var out model.BackendAuthResponse
	if err := c.call(ctx, http.MethodPost, "/api/auth/google", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the signed-in user's profile
func (c *Client) Me(ctx context.Context, token string) (*model.BackendUser, error) {
	var out model.BackendUser
	if err := c.call(ctx, http.MethodGet, "/api/users/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMine lists the owner's surveys
func (c *Client) ListMine(ctx context.Context, token string) ([]model.SurveySummary, error) {
	out := []model.SurveySummary{}
	if err := c.call(ctx, http.MethodGet, "/api/surveys/mine", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetForEdit loads a survey in the edit shape
func (c *Client) GetForEdit(ctx context.Context, token, niceURL string) (*model.EditPayload, error) {
	var out model.EditPayload
	path := fmt.Sprintf("/api/surveys/%s/edit", url.PathEscape(niceURL))
	if err := c.call(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSurvey creates a survey
func (c *Client) CreateSurvey(ctx context.Context, token string, s model.WireSurvey) (*model.SaveResult, error) {
	var out model.SaveResult
	if err := c.call(ctx, http.MethodPost, "/api/surveys", token, s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSurvey replaces an existing survey. The backend may answer with
// an empty body, in which case the nice URL is carried over.
func (c *Client) UpdateSurvey(ctx context.Context, token, niceURL string, s model.WireSurvey) (*model.SaveResult, error) {
	out := model.SaveResult{NiceURL: niceURL}
	path := "/api/surveys/" + url.PathEscape(niceURL)
	if err := c.call(ctx, http.MethodPut, path, token, s, &out); err != nil {
		return nil, err
	}
	if out.NiceURL == "" {
		out.NiceURL = niceURL
	}
	return &out, nil
}

// CloseSurvey closes a published survey
func (c *Client) CloseSurvey(ctx context.Context, token, niceURL string) error {
	path := fmt.Sprintf("/api/surveys/%s/close", url.PathEscape(niceURL))
	return c.call(ctx, http.MethodPost, path, token, nil, nil)
}

// Aggregates fetches the dashboard aggregates of a survey
func (c *Client) Aggregates(ctx context.Context, token, surveyID string) (*model.AggregatePayload, error) {
	var out model.AggregatePayload
	path := fmt.Sprintf("/api/surveys/%s/aggregates", url.PathEscape(surveyID))
	if err := c.call(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportFile is a downloaded export
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Export downloads one export file. Filename is empty when the backend
// sends no usable Content-Disposition.
func (c *Client) Export(ctx context.Context, token, surveyID, format string) (*ExportFile, error) {
	path := fmt.Sprintf("/api/surveys/%s/export/%s", url.PathEscape(surveyID), url.PathEscape(format))
	resp, err := c.do(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}
	return &ExportFile{
		Filename:    dispositionFilename(resp.header.Get("Content-Disposition")),
		ContentType: resp.header.Get("Content-Type"),
		Data:        resp.body,
	}, nil
}

func dispositionFilename(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}

// Generate asks the AI endpoint for a batch of questions
func (c *Client) Generate(ctx context.Context, token string, req model.GenerateRequest) (*model.GenerateResponse, error) {
	var out model.GenerateResponse
	if err := c.call(ctx, http.MethodPost, "/api/ai/generate", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refine asks the AI endpoint for an improved version of one question
func (c *Client) Refine(ctx context.Context, token string, req model.RefineRequest) (*model.RefineResponse, error) {
	var out model.RefineResponse
	if err := c.call(ctx, http.MethodPost, "/api/ai/refine", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUsers lists all accounts (admin only)
func (c *Client) ListUsers(ctx context.Context, token string) ([]model.AdminUser, error) {
	out := []model.AdminUser{}
	if err := c.call(ctx, http.MethodGet, "/api/admin/users", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BanUser bans an account (admin only)
func (c *Client) BanUser(ctx context.Context, token string, userID int) error {
	path := fmt.Sprintf("/api/admin/ban/%d", userID)
	return c.call(ctx, http.MethodPost, path, token, struct{}{}, nil)
}

// UpdateMe updates the signed-in user's profile
func (c *Client) UpdateMe(ctx context.Context, token string, update model.ProfileUpdate) (*model.BackendUser, error) {
	var out model.BackendUser
	if err := c.call(ctx, http.MethodPut, "/api/users/me", token, update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPublished lists the surveys open for responses
func (c *Client) ListPublished(ctx context.Context, token string) ([]model.PublishedSurvey, error) {
	out := []model.PublishedSurvey{}
	if err := c.call(ctx, http.MethodGet, "/api/surveys", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPublished loads a published survey with question and option ids
func (c *Client) GetPublished(ctx context.Context, token, niceURL string) (*model.PublishedSurvey, error) {
	var out model.PublishedSurvey
	path := "/api/surveys/" + url.PathEscape(niceURL)
	if err := c.call(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitResponses records one respondent's answers
func (c *Client) SubmitResponses(ctx context.Context, token, niceURL string, sub model.Submission) error {
	path := fmt.Sprintf("/api/surveys/nice/%s/submit", url.PathEscape(niceURL))
	return c.call(ctx, http.MethodPost, path, token, sub, nil)
}
