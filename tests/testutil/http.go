package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// HTTPTestCase drives one handler call
type HTTPTestCase struct {
	Name           string
	Method         string
	Path           string
	Body           any
	Headers        map[string]string
	ExpectedStatus int
	// ExpectedCode is the error code of a failed envelope
	ExpectedCode string
	Setup        func(t *testing.T, tc *TestContext)
	Validate     func(t *testing.T, tc *TestContext)
}

// Envelope mirrors the API response wrapper
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		Total      int64 `json:"total"`
		Page       int   `json:"page"`
		PageSize   int   `json:"page_size"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
}

// RunHTTPTestCases runs each case as a subtest
func RunHTTPTestCases(t *testing.T, handler gin.HandlerFunc, cases []HTTPTestCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			RunHTTPTestCase(t, handler, tc)
		})
	}
}

// RunHTTPTestCase calls handler directly with a recorded gin context
func RunHTTPTestCase(t *testing.T, handler gin.HandlerFunc, tc HTTPTestCase) {
	t.Helper()

	var body io.Reader
	if tc.Body != nil {
		body = ToJSONReader(t, tc.Body)
	}
	method := tc.Method
	if method == "" {
		method = http.MethodGet
	}
	path := tc.Path
	if path == "" {
		path = "/"
	}
	req := httptest.NewRequest(method, path, body)
	if tc.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range tc.Headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	c, engine := gin.CreateTestContext(w)
	c.Request = req
	testCtx := &TestContext{Context: c, Recorder: w, Engine: engine}
	if tc.Setup != nil {
		tc.Setup(t, testCtx)
	}

	handler(c)

	if tc.ExpectedStatus != 0 {
		assert.Equal(t, tc.ExpectedStatus, w.Code, "Unexpected status code: %s", w.Body.String())
	}
	if tc.ExpectedCode != "" {
		AssertErrorResponse(t, testCtx, tc.ExpectedCode)
	}
	if tc.Validate != nil {
		tc.Validate(t, testCtx)
	}
}

// DecodeEnvelope parses the response wrapper
func DecodeEnvelope(t *testing.T, tc *TestContext) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(tc.ResponseBody(), &env), "Failed to parse JSON response")
	return env
}

// DataAs decodes the envelope's data into T
func DataAs[T any](t *testing.T, tc *TestContext) T {
	t.Helper()
	env := DecodeEnvelope(t, tc)
	require.True(t, env.Success, "Expected a successful envelope")
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out), "Failed to parse response data")
	return out
}

// AssertErrorResponse checks a failed envelope carries expectedCode
func AssertErrorResponse(t *testing.T, tc *TestContext, expectedCode string) {
	t.Helper()
	env := DecodeEnvelope(t, tc)
	assert.False(t, env.Success, "Expected success to be false")
	require.NotNil(t, env.Error, "Expected error object in response")
	assert.Equal(t, expectedCode, env.Error.Code, "Unexpected error code")
}

// ToJSONReader marshals v for a request body
func ToJSONReader(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err, "Failed to marshal to JSON")
	return bytes.NewReader(data)
}
