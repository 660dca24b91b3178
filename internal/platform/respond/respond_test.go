// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalink/vitalink/internal/platform/apperr"
)

func decodeErrors(t *testing.T, recorder *httptest.ResponseRecorder) ErrorEnvelope {
	t.Helper()

	var envelope ErrorEnvelope
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
	return envelope
}

// Missing or unowned scoped resources surface as 403 with the message in the
// envelope; the clients render 403 bodies and treat 404 as a routing failure.
func TestErrorWritesScopedNotFoundAsForbidden(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/post/99", nil)

	Error(recorder, request, apperr.NotFound("Post"))

	assert.Equal(t, http.StatusForbidden, recorder.Code)

	envelope := decodeErrors(t, recorder)
	require.Len(t, envelope.Errors, 1)
	assert.Equal(t, "Post not found", envelope.Errors[0].Message)
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unauthorized", apperr.Unauthorized("Authentication required"), http.StatusUnauthorized},
		{"forbidden", apperr.Forbidden("Insufficient permissions"), http.StatusForbidden},
		{"validation", apperr.ValidationError("Validation failed"), http.StatusForbidden},
		{"internal", apperr.Internal(errors.New("boom")), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/", nil)

			Error(recorder, request, tc.err)

			assert.Equal(t, tc.want, recorder.Code)
		})
	}
}

func TestErrorHidesInternalCause(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)

	Error(recorder, request, errors.New("pq: syntax error at or near SELECT"))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)

	envelope := decodeErrors(t, recorder)
	require.Len(t, envelope.Errors, 1)
	assert.NotContains(t, envelope.Errors[0].Message, "SELECT")
}
