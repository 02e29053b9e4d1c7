package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "expensely/internal/errors"
	"expensely/internal/models"
	"expensely/internal/services"
)

func TestCategoryHandler(t *testing.T) {
	svc := &mockCategoryService{
		listFn: func() ([]models.Category, error) {
			return []models.Category{{Name: "Meals"}, {Name: "Travel"}}, nil
		},
		getFn: func(id string) (*models.Category, error) {
			if id == "missing" {
				return nil, apperrors.ErrCategoryNotFound
			}
			return &models.Category{Base: models.Base{ID: id}, Name: "Travel"}, nil
		},
	}
	h := NewCategoryHandler(svc)
	r := gin.New()
	r.GET("/categories", h.ListCategories)
	r.GET("/categories/:id", h.GetCategoryByID)

	t.Run("list", func(t *testing.T) {
		rec := doRequest(r, "GET", "/categories", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if n := len(parseJSON(t, rec)["categories"].([]interface{})); n != 2 {
			t.Errorf("expected 2 categories, got %d", n)
		}
	})

	t.Run("get", func(t *testing.T) {
		rec := doRequest(r, "GET", "/categories/abc", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("get missing", func(t *testing.T) {
		rec := doRequest(r, "GET", "/categories/missing", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_NOT_FOUND")
	})
}

func TestReportHandler_GetSummary(t *testing.T) {
	t.Run("parses filters", func(t *testing.T) {
		var got services.ExpenseQuery
		svc := &mockReportService{
			summaryFn: func(_ string, q services.ExpenseQuery) (*services.ExpenseSummary, error) {
				got = q
				return &services.ExpenseSummary{
					Expenses:    []models.Expense{},
					TotalAmount: decimal.RequireFromString("12.65"),
					Count:       3,
					Filters:     q,
				}, nil
			},
		}
		r := gin.New()
		r.GET("/reports/summary", injectUserID(testUserID), NewReportHandler(svc).GetSummary)

		rec := doRequest(r, "GET", "/reports/summary?from=2026-01-01&to=2026-01-31&status=APPROVED&category_id=c1", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.From == nil || !got.From.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected from %v", got.From)
		}
		if got.To == nil || got.CategoryID == nil || *got.CategoryID != "c1" || got.Status == nil {
			t.Errorf("filters not passed through: %+v", got)
		}
		result := parseJSON(t, rec)
		if result["total_amount"] != "12.65" || result["count"] != float64(3) {
			t.Errorf("unexpected summary %v", result)
		}
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		r := gin.New()
		r.GET("/reports/summary", injectUserID(testUserID), NewReportHandler(&mockReportService{}).GetSummary)

		rec := doRequest(r, "GET", "/reports/summary?from=yesterday", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestAdminHandler_UpdateUserRole(t *testing.T) {
	setup := func(svc *mockUserService, audit *mockAuditService) *gin.Engine {
		r := gin.New()
		r.PUT("/internal/users/:id/role", NewAdminHandler(svc, audit).UpdateUserRole)
		return r
	}

	t.Run("promotes", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setup(&mockUserService{}, audit)

		rec := doRequest(r, "PUT", "/internal/users/"+testUserID+"/role", `{"role":"MANAGER"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if parseJSON(t, rec)["user"].(map[string]interface{})["role"] != "MANAGER" {
			t.Error("expected updated role in response")
		}
		if a := audit.logged(); len(a) != 1 || a[0] != "UPDATE_ROLE" {
			t.Errorf("expected UPDATE_ROLE audit entry, got %v", a)
		}
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		r := setup(&mockUserService{}, &mockAuditService{})

		rec := doRequest(r, "PUT", "/internal/users/"+testUserID+"/role", `{"role":"OWNER"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := &mockUserService{
			updateRoleFn: func(_ string, _ models.Role) (*models.User, error) { return nil, apperrors.ErrUserNotFound },
		}
		r := setup(svc, &mockAuditService{})

		rec := doRequest(r, "PUT", "/internal/users/"+testUserID+"/role", `{"role":"ADMIN"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "USER_NOT_FOUND")
	})
}
