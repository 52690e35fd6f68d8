package service

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/thilinahansana/university-scheduler-console/internal/models"
	"github.com/thilinahansana/university-scheduler-console/internal/upstream"
	appErrors "github.com/thilinahansana/university-scheduler-console/pkg/errors"
)

// mapBackendError converts backend and replica failures into API errors. Conflict
// payloads keep their *models.ConflictError so handlers can pass them through.
func mapBackendError(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	var conflictErr *models.ConflictError
	if errors.As(err, &conflictErr) {
		return appErrors.Wrap(conflictErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, conflictErr.Error())
	}
	if errors.Is(err, models.ErrNothingPublished) {
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "no timetable has been published")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return appErrors.Wrap(err, appErrors.ErrUpstreamTimeout.Code, appErrors.ErrUpstreamTimeout.Status, appErrors.ErrUpstreamTimeout.Message)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return appErrors.Wrap(err, appErrors.ErrUpstreamTimeout.Code, appErrors.ErrUpstreamTimeout.Status, appErrors.ErrUpstreamTimeout.Message)
	}
	var statusErr *upstream.StatusError
	if errors.As(err, &statusErr) {
		msg := statusErr.Message
		if msg == "" {
			msg = message
		}
		switch statusErr.Status {
		case http.StatusUnauthorized:
			return appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, msg)
		case http.StatusForbidden:
			return appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, msg)
		case http.StatusNotFound:
			return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, msg)
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, msg)
		case http.StatusConflict:
			return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, msg)
		}
	}
	return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, message)
}
