package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/thilinahansana/university-scheduler-console/internal/models"
)

// SubmitChangeRequest files a faculty change request.
func (c *Client) SubmitChangeRequest(ctx context.Context, req models.ChangeRequest) (models.ChangeRequest, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/timetable/faculty/request-change", nil, req, &raw); err != nil {
		return models.ChangeRequest{}, err
	}
	return decodeChangeRequest(raw)
}

// FacultyChangeRequests lists the caller's own requests.
func (c *Client) FacultyChangeRequests(ctx context.Context) ([]models.ChangeRequest, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/timetable/faculty/change-requests", nil, &raw); err != nil {
		return nil, err
	}
	return decodeChangeRequests(raw)
}

// AdminChangeRequests lists every request, optionally filtered by status.
func (c *Client) AdminChangeRequests(ctx context.Context, status models.ChangeRequestStatus) ([]models.ChangeRequest, error) {
	var query url.Values
	if status != "" {
		query = url.Values{"status": []string{string(status)}}
	}
	var raw json.RawMessage
	if err := c.get(ctx, "/timetable/admin/change-requests", query, &raw); err != nil {
		return nil, err
	}
	return decodeChangeRequests(raw)
}

type reviewPayload struct {
	Status        models.ChangeRequestStatus `json:"status"`
	AdminResponse string                     `json:"admin_response,omitempty"`
}

// ReviewChangeRequest records an administrator's decision.
func (c *Client) ReviewChangeRequest(ctx context.Context, id string, status models.ChangeRequestStatus, note string) (models.ChangeRequest, error) {
	var raw json.RawMessage
	path := "/timetable/admin/change-requests/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodPut, path, nil, reviewPayload{Status: status, AdminResponse: note}, &raw); err != nil {
		return models.ChangeRequest{}, err
	}
	return decodeChangeRequest(raw)
}

// decodeChangeRequest accepts the request itself or an envelope holding it under "request".
func decodeChangeRequest(raw json.RawMessage) (models.ChangeRequest, error) {
	var envelope struct {
		Request *models.ChangeRequest `json:"request"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Request != nil {
		return *envelope.Request, nil
	}
	var cr models.ChangeRequest
	if err := json.Unmarshal(raw, &cr); err != nil {
		return models.ChangeRequest{}, fmt.Errorf("decode change request: %w", err)
	}
	return cr, nil
}

// decodeChangeRequests accepts a list or an envelope holding it under "requests".
func decodeChangeRequests(raw json.RawMessage) ([]models.ChangeRequest, error) {
	var list []models.ChangeRequest
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var envelope struct {
		Requests []models.ChangeRequest `json:"requests"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode change requests: %w", err)
	}
	return envelope.Requests, nil
}
