package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"meal-planner/internal/app"
	"meal-planner/internal/config"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
	"meal-planner/internal/shopping"
	"meal-planner/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	server *Server
	app    *app.App
	source *testutil.FakeSource
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	source := testutil.NewFakeSource(
		testutil.NewRecipe("52772", "Teriyaki Chicken", [2]string{"Chicken", "2 pcs"}, [2]string{"Salt", "1 tsp"}),
		testutil.NewRecipe("52773", "Honey Salmon", [2]string{"Salt", "1 tsp"}, [2]string{"Pepper", "1 tsp"}),
	)
	source.CategoryList = []recipe.Category{{ID: "1", Name: "Chicken"}}

	store := planner.NewStore(context.Background(), nil, nil)
	a := app.NewApp(store, source, nil, config.Default(), nil)

	tokens := TokenService{Secret: []byte("test-secret"), Issuer: DefaultIssuer, Duration: time.Hour}
	token, _, err := tokens.Sign("tester")
	require.NoError(t, err)

	return &testServer{server: NewServer(a, tokens, nil), app: a, source: source, token: token}
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer "+ts.token)

	w := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.NoError(t, err, "every response carries a request id")
}

func TestRequestID_Propagates(t *testing.T) {
	ts := newTestServer(t)
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, id)
	w := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(w, req)

	assert.Equal(t, id, w.Header().Get(RequestIDHeader))
}

func TestAuth(t *testing.T) {
	ts := newTestServer(t)

	t.Run("MissingToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/plan", nil)
		w := httptest.NewRecorder()
		ts.server.Handler().ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := TokenService{Secret: []byte("other"), Issuer: DefaultIssuer, Duration: time.Hour}
		token, _, err := other.Sign("tester")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/plan", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		ts.server.Handler().ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestPlanEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPut, "/api/plan/mon", `{"recipeId": "52772"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Mon", decode(t, w)["day"])

	w = ts.do(t, http.MethodGet, "/api/plan", "")
	require.Equal(t, http.StatusOK, w.Code)
	plan := decode(t, w)["mealPlan"].(map[string]any)
	assert.Len(t, plan, planner.DaysInWeek)
	assert.Equal(t, "Teriyaki Chicken", plan["Mon"].(map[string]any)["name"])
	assert.Nil(t, plan["Tue"])

	w = ts.do(t, http.MethodDelete, "/api/plan/Monday", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	t.Run("InvalidDay", func(t *testing.T) {
		w := ts.do(t, http.MethodPut, "/api/plan/someday", `{"recipeId": "52772"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("UnknownRecipe", func(t *testing.T) {
		w := ts.do(t, http.MethodPut, "/api/plan/tue", `{"recipeId": "999"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("BlankRecipe", func(t *testing.T) {
		w := ts.do(t, http.MethodPut, "/api/plan/tue", `{"recipeId": ""}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("CatalogDown", func(t *testing.T) {
		ts.source.Errors["52773"] = errors.New("unreachable")
		defer delete(ts.source.Errors, "52773")

		w := ts.do(t, http.MethodPut, "/api/plan/tue", `{"recipeId": "52773"}`)
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestShoppingListEndpoints(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPut, "/api/plan/mon", `{"recipeId": "52772"}`).Code)
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPut, "/api/plan/tue", `{"recipeId": "52773"}`).Code)

	w := ts.do(t, http.MethodPost, "/api/shopping-list", "")
	require.Equal(t, http.StatusOK, w.Code)
	items := decode(t, w)["items"].([]any)
	require.Len(t, items, 3)
	assert.Equal(t, "Chicken", items[0].(map[string]any)["name"])

	w = ts.do(t, http.MethodPost, "/api/shopping-list/toggle", `{"key": "salt-1 tsp"}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "salt-1 tsp", body["key"])
	assert.Equal(t, true, body["completed"])

	w = ts.do(t, http.MethodPost, "/api/shopping-list", "")
	items = decode(t, w)["items"].([]any)
	assert.Equal(t, true, items[1].(map[string]any)["completed"])

	w = ts.do(t, http.MethodPost, "/api/shopping-list/clear-completed", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["removed"])

	t.Run("ToggleKeyWithSlash", func(t *testing.T) {
		key := shopping.Key("Sugar", "1/2 cup")
		w := ts.do(t, http.MethodPost, "/api/shopping-list/toggle", `{"key": "`+key+`"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "sugar-1/2 cup", decode(t, w)["key"])
		assert.Equal(t, true, decode(t, w)["completed"])
		assert.True(t, ts.app.Plan().IsCompleted(key))
	})

	t.Run("ToggleRequiresKey", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/api/shopping-list/toggle", `{"key": ""}`).Code)
		assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/api/shopping-list/toggle", "").Code)
	})

	t.Run("FetchFailure", func(t *testing.T) {
		ts.source.Errors["52773"] = errors.New("timeout")
		w := ts.do(t, http.MethodPost, "/api/shopping-list", "")
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestCatalogEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/recipes?q=Honey+Salmon", "")
	require.Equal(t, http.StatusOK, w.Code)
	recipes := decode(t, w)["recipes"].([]any)
	require.Len(t, recipes, 1)
	assert.Equal(t, "52773", recipes[0].(map[string]any)["id"])

	w = ts.do(t, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["categories"].([]any), 1)
}

func TestTokenService(t *testing.T) {
	tokens := TokenService{Secret: []byte("s3cret"), Issuer: DefaultIssuer, Duration: time.Minute}

	token, exp, err := tokens.Sign("cli")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 5*time.Second)

	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "cli", claims.Subject)

	expired := TokenService{Secret: []byte("s3cret"), Issuer: DefaultIssuer, Duration: -time.Minute}
	old, _, err := expired.Sign("cli")
	require.NoError(t, err)
	_, err = tokens.Parse(old)
	assert.Error(t, err)

	_, _, err = TokenService{}.Sign("cli")
	assert.Error(t, err)
}
