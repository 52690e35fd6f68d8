package upstream

import (
	"encoding/json"
	"strings"

	"github.com/thilinahansana/university-scheduler-console/internal/models"
)

// decodeConflicts recognises the backend's conflict payload. It appears either at the top
// level, nested under "detail" as an object, or under "detail" as a Python-style repr
// string. The payload is kept verbatim.
func decodeConflicts(raw []byte) *models.ConflictError {
	var body struct {
		Message   string            `json:"message"`
		Conflicts []models.Conflict `json:"conflicts"`
		Detail    json.RawMessage   `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil
	}
	if len(body.Conflicts) > 0 {
		return &models.ConflictError{Message: body.Message, Conflicts: body.Conflicts, Raw: raw}
	}
	if len(body.Detail) == 0 {
		return nil
	}

	var nested struct {
		Message   string            `json:"message"`
		Conflicts []models.Conflict `json:"conflicts"`
	}
	if err := json.Unmarshal(body.Detail, &nested); err == nil && len(nested.Conflicts) > 0 {
		return &models.ConflictError{Message: firstNonEmpty(nested.Message, body.Message), Conflicts: nested.Conflicts, Raw: body.Detail}
	}

	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err != nil || !strings.Contains(detail, "conflicts") {
		return nil
	}
	normalized := strings.ReplaceAll(detail, "'", "\"")
	if err := json.Unmarshal([]byte(normalized), &nested); err == nil && len(nested.Conflicts) > 0 {
		return &models.ConflictError{Message: firstNonEmpty(nested.Message, body.Message), Conflicts: nested.Conflicts, Raw: json.RawMessage(normalized)}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
