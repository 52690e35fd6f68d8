package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorTreatsUnknownAsInternal(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	appErr := FromError(cause)
	require.NotNil(t, appErr)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.ErrorIs(t, appErr, cause)
	assert.Nil(t, FromError(nil))
}

func TestWrapKeepsCauseBehindClientMessage(t *testing.T) {
	cause := errors.New("backend said no")
	wrapped := Wrap(cause, ErrUpstream.Code, ErrUpstream.Status, "timetable backend request failed")

	assert.Equal(t, "timetable backend request failed: backend said no", wrapped.Error())
	assert.Same(t, wrapped, FromError(wrapped))
	assert.ErrorIs(t, wrapped, cause)
}

func TestCloneLeavesSentinelUntouched(t *testing.T) {
	clone := Clone(ErrConflict, "room B201 is taken")
	assert.Equal(t, "room B201 is taken", clone.Message)
	assert.Equal(t, ErrConflict.Code, clone.Code)
	assert.Equal(t, "schedule conflict detected", ErrConflict.Message)

	assert.Equal(t, ErrNotFound.Message, Clone(ErrNotFound, "").Message)
	assert.Nil(t, Clone(nil, "x"))
}
