package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"expensely/internal/clock"
	"expensely/internal/lock"
	"expensely/internal/logger"
	"expensely/internal/models"
	"expensely/internal/repository"
	"expensely/internal/server"
	"expensely/internal/services"
	"expensely/internal/testutil"
	"expensely/internal/validator"
)

const adminAPIKey = "integration-admin-key"

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB         *gorm.DB
	Router     *gin.Engine
	Clock      *clock.Fixed
	Categories map[string]string
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	clk := clock.NewFixed(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))
	repos := repository.New(db)

	categoryService := services.NewCategoryService(repos.Categories)
	if _, err := categoryService.EnsureDefaultCategories(context.Background()); err != nil {
		t.Fatalf("failed to seed categories: %v", err)
	}
	categories, err := categoryService.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("failed to list categories: %v", err)
	}
	byName := make(map[string]string, len(categories))
	for _, c := range categories {
		byName[c.Name] = c.ID
	}

	router := server.NewRouter(server.Services{
		Users:      services.NewUserService(repos.Users, clk),
		Categories: categoryService,
		Expenses:   services.NewExpenseService(repos, lock.NewLocal(), clk),
		Reports:    services.NewReportService(repos),
		Audit:      services.NewAuditService(repos),
	}, server.Options{AdminAPIKey: adminAPIKey})

	return &testApp{DB: db, Router: router, Clock: clk, Categories: byName}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	errObj, ok := parseJSON(t, rec)["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(string)
}

// registerManager registers a user and promotes it through the internal API.
func (app *testApp) registerManager(t *testing.T, email string) (accessToken, userID string) {
	t.Helper()
	accessToken, _, userID = app.registerUser(t, email, "password123")

	req := httptest.NewRequest("PUT", "/api/v1/internal/users/"+userID+"/role", strings.NewReader(`{"role":"MANAGER"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", adminAPIKey)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("promote failed: %d %s", rec.Code, rec.Body.String())
	}
	return accessToken, userID
}

// createExpense creates a draft expense and returns its ID.
func (app *testApp) createExpense(t *testing.T, token, category, amount, date string) string {
	t.Helper()
	body := fmt.Sprintf(`{"category_id":%q,"amount":%q,"expense_date":%q,"description":"integration"}`,
		app.Categories[category], amount, date)
	rec := app.request("POST", "/api/v1/expenses", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["expense"].(map[string]interface{})["id"].(string)
}

func expenseStatus(t *testing.T, rec *httptest.ResponseRecorder) models.ExpenseStatus {
	t.Helper()
	expense := parseJSON(t, rec)["expense"].(map[string]interface{})
	return models.ExpenseStatus(expense["status"].(string))
}
