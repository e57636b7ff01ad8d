package testutil

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNewMockDB(t *testing.T) {
	mockDB := NewMockDB(t)

	assert.NotNil(t, mockDB.DB)
	mockDB.Mock.ExpectPing()
	assert.NoError(t, mockDB.SqlDB.Ping())
	mockDB.ExpectationsWereMet(t)
}

func TestTestContext(t *testing.T) {
	tc := NewTestContext(t)
	assert.Equal(t, http.MethodGet, tc.Context.Request.Method)

	tc.SetParam("id", "42")
	tc.Set("claims", "user")
	tc.SetHeader("Authorization", "Bearer token")

	assert.Equal(t, "42", tc.Context.Param("id"))
	v, ok := tc.Context.Get("claims")
	assert.True(t, ok)
	assert.Equal(t, "user", v)
	assert.Equal(t, "Bearer token", tc.Context.Request.Header.Get("Authorization"))
}

func TestNewTestUUID(t *testing.T) {
	assert.Equal(t, NewTestUUID("seed"), NewTestUUID("seed"))
	assert.NotEqual(t, NewTestUUID("seed"), NewTestUUID("other"))
}

func TestRunHTTPTestCases(t *testing.T) {
	handler := func(c *gin.Context) {
		if c.Param("id") == "missing" {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": gin.H{"code": "NOT_FOUND", "message": "Resource not found"}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"id": c.Param("id")}})
	}

	RunHTTPTestCases(t, handler, []HTTPTestCase{
		{
			Name:           "found",
			ExpectedStatus: http.StatusOK,
			Setup:          func(_ *testing.T, tc *TestContext) { tc.SetParam("id", "7") },
			Validate: func(t *testing.T, tc *TestContext) {
				data := DataAs[map[string]string](t, tc)
				assert.Equal(t, "7", data["id"])
			},
		},
		{
			Name:           "missing",
			ExpectedStatus: http.StatusNotFound,
			ExpectedCode:   "NOT_FOUND",
			Setup:          func(_ *testing.T, tc *TestContext) { tc.SetParam("id", "missing") },
		},
	})
}

func TestWaitForCondition(t *testing.T) {
	start := time.Now()
	ok := WaitForCondition(t, func() bool { return time.Since(start) > 20*time.Millisecond }, time.Second, 5*time.Millisecond)
	assert.True(t, ok)

	AssertNever(t, func() bool { return false }, 20*time.Millisecond, 5*time.Millisecond)
}
