package integration

import (
	"net/http"
	"testing"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// TestProductAPI_Integration serves the public catalog endpoints from PostgreSQL
func TestProductAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewSharedTestDB(t)
	testDB.CleanTables()
	kurta := testDB.SeedProduct("Silk Kurta", 1100, "Red", "M", 5)
	testDB.SeedProduct("Graphic Tee", 499, "Black", "L", 12)

	svc := catalogapp.NewProductService(
		persistence.NewGormProductRepository(testDB.DB),
		catalogapp.WithProductLogger(zaptest.NewLogger(t)),
	)
	h := handler.NewProductHandler(svc)

	testutil.RunHTTPTestCases(t, h.List, []testutil.HTTPTestCase{
		{
			Name:           "lists active products with meta",
			Path:           "/products?orderBy=price&orderDir=asc",
			ExpectedStatus: http.StatusOK,
			Validate: func(t *testing.T, tc *testutil.TestContext) {
				env := testutil.DecodeEnvelope(t, tc)
				require.NotNil(t, env.Meta)
				assert.Equal(t, int64(2), env.Meta.Total)

				items := testutil.DataAs[[]catalogapp.ProductResponse](t, tc)
				require.Len(t, items, 2)
				assert.Equal(t, "Graphic Tee", items[0].Name)
			},
		},
		{
			Name:           "searches by name",
			Path:           "/products?search=kurta",
			ExpectedStatus: http.StatusOK,
			Validate: func(t *testing.T, tc *testutil.TestContext) {
				items := testutil.DataAs[[]catalogapp.ProductResponse](t, tc)
				require.Len(t, items, 1)
				assert.Equal(t, kurta.ID, items[0].ID)
			},
		},
		{
			Name:           "rejects unknown sort field",
			Path:           "/products?orderBy=stock",
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   "VALIDATION_ERROR",
		},
	})

	testutil.RunHTTPTestCases(t, h.Get, []testutil.HTTPTestCase{
		{
			Name:           "returns variants",
			ExpectedStatus: http.StatusOK,
			Setup: func(_ *testing.T, tc *testutil.TestContext) {
				tc.SetParam("id", kurta.ID.String())
			},
			Validate: func(t *testing.T, tc *testutil.TestContext) {
				p := testutil.DataAs[catalogapp.ProductResponse](t, tc)
				require.Len(t, p.Variants, 1)
				assert.Equal(t, 5, p.Variants[0].Stock)
			},
		},
		{
			Name:           "unknown product",
			ExpectedStatus: http.StatusNotFound,
			ExpectedCode:   "NOT_FOUND",
			Setup: func(_ *testing.T, tc *testutil.TestContext) {
				tc.SetParam("id", testutil.NewTestUUID("no-such-product").String())
			},
		},
		{
			Name:           "malformed id",
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   "VALIDATION_ERROR",
			Setup: func(_ *testing.T, tc *testutil.TestContext) {
				tc.SetParam("id", "not-a-uuid")
			},
		},
	})
}
