package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

func TestErrorMessages(t *testing.T) {
	forbidden := apierrors.NewForbidden(schema.GroupResource{Group: "trustyai.opendatahub.io", Resource: "trustyaiservices"}, "tais", errors.New("no access"))

	for _, tc := range []struct {
		err     *Error
		status  int
		message string
		outcome string
	}{
		{
			err:     NotFoundError("TrustyAIService", "tais", forbidden),
			status:  http.StatusNotFound,
			message: "TrustyAIService 'tais' not found. 403: " + forbidden.Error(),
			outcome: outcomeNotFound,
		},
		{
			err:     NotFoundError("TrustyAIService", "tais", nil),
			status:  http.StatusNotFound,
			message: "TrustyAIService 'tais' not found.",
			outcome: outcomeNotFound,
		},
		{
			err:     UnavailableError("DataSciencePipelinesApplication", "dspa", nil),
			status:  http.StatusNotFound,
			message: "DataSciencePipelinesApplication 'dspa' service unavailable.",
			outcome: outcomeUnavailable,
		},
		{
			err:     PluginUnavailableError("modelRegistry"),
			status:  http.StatusNotFound,
			message: "Plugin 'modelRegistry' plugin unavailable.",
			outcome: outcomeNotFound,
		},
		{
			err:     RateLimitedError(),
			status:  http.StatusTooManyRequests,
			message: "Rate limit exceeded, retry later.",
			outcome: outcomeRateLimited,
		},
	} {
		assert.Equal(t, tc.status, tc.err.StatusCode)
		assert.Equal(t, tc.message, tc.err.Error())
		assert.Equal(t, tc.outcome, tc.err.Outcome)
	}

	assert.True(t, apierrors.IsForbidden(NotFoundError("TrustyAIService", "tais", forbidden)))
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(context.Background(), w, NotFoundError("DataSciencePipelinesApplication", "dspa", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{
		"statusCode": 404,
		"error": "Not Found",
		"message": "DataSciencePipelinesApplication 'dspa' not found."
	}`, w.Body.String())

	w = httptest.NewRecorder()
	writeError(context.Background(), w, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "boom", body["message"])
}
