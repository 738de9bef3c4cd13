package api

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/soyeahso/crustspace/internal/domain"
)

// FieldError describes why a single requested field was refused.
type FieldError struct {
	Field      string
	Message    string
	Permission bool // true for permission denials, false for format problems
}

func (e FieldError) Error() string { return e.Message }

// profileFields is the closed set of fields a PATCH may carry. Anything
// else in the body is rejected explicitly rather than silently ignored.
var profileFields = map[string]bool{
	"status":         true,
	"status_message": true,
	"bio":            true,
	"tagline":        true,
}

// ValidateProfileUpdate checks a decoded PATCH body against the agent's
// permission flags and field constraints. It is a pure function of
// (agent, body): no side effects.
//
// On success it returns the column→value map ready for persistence (nil
// values clear nullable columns). If any field fails, the returned error
// list covers every offending field and no updates are returned — the
// batch is all-or-nothing.
func ValidateProfileUpdate(agent *domain.Agent, body map[string]json.RawMessage) (map[string]any, []FieldError) {
	var errs []FieldError
	updates := make(map[string]any)

	// Deterministic field order keeps error lists stable across calls.
	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, field := range keys {
		if !profileFields[field] {
			errs = append(errs, FieldError{
				Field:   field,
				Message: fmt.Sprintf("Unknown field: %s", field),
			})
			continue
		}

		raw := body[field]
		val, isNull, err := decodeStringField(raw)
		if err != nil {
			errs = append(errs, FieldError{
				Field:   field,
				Message: fmt.Sprintf("Field %s must be a string", field),
			})
			continue
		}

		switch field {
		case "status":
			if !agent.CanEdit.Status {
				errs = append(errs, permissionError(field, "status"))
				continue
			}
			if isNull || !domain.IsWritableStatus(val) {
				errs = append(errs, FieldError{
					Field:   field,
					Message: "Invalid status. Must be: " + writableStatusList(),
				})
				continue
			}
			updates["status"] = val

		case "status_message":
			if !agent.CanEdit.Status {
				errs = append(errs, permissionError(field, "status"))
				continue
			}
			if bad := checkLength(field, val, isNull, domain.MaxStatusMessageLen, &errs); bad {
				continue
			}
			updates["status_message"] = nullable(val, isNull)

		case "bio":
			if !agent.CanEdit.Bio {
				errs = append(errs, permissionError(field, "bio"))
				continue
			}
			if bad := checkLength(field, val, isNull, domain.MaxBioLen, &errs); bad {
				continue
			}
			updates["bio"] = textOrEmpty(val, isNull)

		case "tagline":
			if !agent.CanEdit.Bio {
				errs = append(errs, permissionError(field, "tagline"))
				continue
			}
			if bad := checkLength(field, val, isNull, domain.MaxTaglineLen, &errs); bad {
				continue
			}
			updates["tagline"] = textOrEmpty(val, isNull)
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return updates, nil
}

// ValidateStatusUpdate checks the quick-status path. Same canonical status
// enum and the same reject-overlength policy as the general path.
func ValidateStatusUpdate(agent *domain.Agent, status string, message *string) (map[string]any, *FieldError) {
	if !agent.CanEdit.Status {
		e := permissionError("status", "status")
		return nil, &e
	}
	if !domain.IsWritableStatus(status) {
		return nil, &FieldError{
			Field:   "status",
			Message: "Invalid status. Must be one of: " + writableStatusList(),
		}
	}
	if message != nil && len(*message) > domain.MaxStatusMessageLen {
		return nil, &FieldError{
			Field:   "message",
			Message: fmt.Sprintf("Message exceeds %d characters", domain.MaxStatusMessageLen),
		}
	}

	updates := map[string]any{"status": status}
	if message != nil && *message != "" {
		updates["status_message"] = *message
	} else {
		updates["status_message"] = nil
	}
	return updates, nil
}

// HasPermissionError reports whether any error in the list is a
// permission denial (403) as opposed to a format problem (400).
func HasPermissionError(errs []FieldError) bool {
	for _, e := range errs {
		if e.Permission {
			return true
		}
	}
	return false
}

// ErrorMessages flattens a field error list for a response details array.
func ErrorMessages(errs []FieldError) []string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}
	return msgs
}

func permissionError(field, what string) FieldError {
	return FieldError{
		Field:      field,
		Message:    "You do not have permission to edit " + what,
		Permission: true,
	}
}

// checkLength appends a FieldError and returns true when val is too long.
func checkLength(field, val string, isNull bool, max int, errs *[]FieldError) bool {
	if isNull || len(val) <= max {
		return false
	}
	*errs = append(*errs, FieldError{
		Field:   field,
		Message: fmt.Sprintf("Field %s exceeds %d characters", field, max),
	})
	return true
}

// decodeStringField accepts a JSON string or null.
func decodeStringField(raw json.RawMessage) (val string, isNull bool, err error) {
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false, err
	}
	if s == nil {
		return "", true, nil
	}
	return *s, false, nil
}

// nullable maps a cleared value to SQL NULL.
func nullable(val string, isNull bool) any {
	if isNull || val == "" {
		return nil
	}
	return val
}

// textOrEmpty maps a cleared value to the empty string for NOT NULL columns.
func textOrEmpty(val string, isNull bool) any {
	if isNull {
		return ""
	}
	return val
}

func writableStatusList() string {
	parts := make([]string, len(domain.WritableStatuses))
	for i, s := range domain.WritableStatuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
