package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"expensely/internal/models"
	"expensely/internal/pagination"
	"expensely/internal/services"
	"expensely/internal/validator"
)

// --- mock services ---

type mockUserService struct {
	createUserFn            func(email, password, firstName, lastName string) (*models.User, error)
	getUserByEmailFn        func(email string) (*models.User, error)
	getUserByIDFn           func(id string) (*models.User, error)
	verifyPasswordFn        func(user *models.User, password string) bool
	attemptLoginFn          func(email, password string) (*models.User, error)
	storeRefreshTokenHashFn func(userID, tokenHash string) error
	getRefreshTokenHashFn   func(userID string) (string, error)
	updateRoleFn            func(userID string, role models.Role) (*models.User, error)
}

func (m *mockUserService) CreateUser(_ context.Context, email, password, firstName, lastName string) (*models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(email, password, firstName, lastName)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if m.getUserByEmailFn != nil {
		return m.getUserByEmailFn(email)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{}, nil
}

func (m *mockUserService) VerifyPassword(user *models.User, password string) bool {
	if m.verifyPasswordFn != nil {
		return m.verifyPasswordFn(user, password)
	}
	return true
}

func (m *mockUserService) AttemptLogin(_ context.Context, email, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(email, password)
	}
	return &models.User{}, nil
}

func (m *mockUserService) StoreRefreshTokenHash(_ context.Context, userID, tokenHash string) error {
	if m.storeRefreshTokenHashFn != nil {
		return m.storeRefreshTokenHashFn(userID, tokenHash)
	}
	return nil
}

func (m *mockUserService) GetRefreshTokenHash(_ context.Context, userID string) (string, error) {
	if m.getRefreshTokenHashFn != nil {
		return m.getRefreshTokenHashFn(userID)
	}
	return "", nil
}

func (m *mockUserService) UpdateRole(_ context.Context, userID string, role models.Role) (*models.User, error) {
	if m.updateRoleFn != nil {
		return m.updateRoleFn(userID, role)
	}
	return &models.User{Base: models.Base{ID: userID}, Role: role}, nil
}

type mockCategoryService struct {
	listFn func() ([]models.Category, error)
	getFn  func(id string) (*models.Category, error)
}

func (m *mockCategoryService) ListCategories(_ context.Context) ([]models.Category, error) {
	if m.listFn != nil {
		return m.listFn()
	}
	return []models.Category{}, nil
}

func (m *mockCategoryService) GetCategoryByID(_ context.Context, id string) (*models.Category, error) {
	if m.getFn != nil {
		return m.getFn(id)
	}
	return &models.Category{Base: models.Base{ID: id}}, nil
}

func (m *mockCategoryService) EnsureDefaultCategories(_ context.Context) (int, error) {
	return 0, nil
}

type mockExpenseService struct {
	createFn  func(ownerID string, in services.ExpenseInput) (*models.Expense, error)
	getFn     func(expenseID, requesterID string) (*models.Expense, error)
	updateFn  func(expenseID, requesterID string, in services.ExpenseInput) (*models.Expense, error)
	deleteFn  func(expenseID, requesterID string) error
	submitFn  func(expenseID, requesterID string) (*models.Expense, error)
	pendingFn func(requesterID string) ([]models.Expense, error)
	approveFn func(expenseID, reviewerID, notes string) (*models.Expense, error)
	rejectFn  func(expenseID, reviewerID, notes string) (*models.Expense, error)
	listFn    func(ownerID string, query services.ExpenseQuery, page pagination.PageRequest, sort pagination.SortRequest) (*pagination.PageResponse[models.Expense], error)
}

func (m *mockExpenseService) CreateExpense(_ context.Context, ownerID string, in services.ExpenseInput) (*models.Expense, error) {
	if m.createFn != nil {
		return m.createFn(ownerID, in)
	}
	return &models.Expense{UserID: ownerID}, nil
}

func (m *mockExpenseService) GetExpense(_ context.Context, expenseID, requesterID string) (*models.Expense, error) {
	if m.getFn != nil {
		return m.getFn(expenseID, requesterID)
	}
	return &models.Expense{Base: models.Base{ID: expenseID}}, nil
}

func (m *mockExpenseService) UpdateExpense(_ context.Context, expenseID, requesterID string, in services.ExpenseInput) (*models.Expense, error) {
	if m.updateFn != nil {
		return m.updateFn(expenseID, requesterID, in)
	}
	return &models.Expense{Base: models.Base{ID: expenseID}}, nil
}

func (m *mockExpenseService) DeleteExpense(_ context.Context, expenseID, requesterID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(expenseID, requesterID)
	}
	return nil
}

func (m *mockExpenseService) SubmitExpense(_ context.Context, expenseID, requesterID string) (*models.Expense, error) {
	if m.submitFn != nil {
		return m.submitFn(expenseID, requesterID)
	}
	return &models.Expense{Base: models.Base{ID: expenseID}, Status: models.ExpenseStatusSubmitted}, nil
}

func (m *mockExpenseService) ListPendingExpenses(_ context.Context, requesterID string) ([]models.Expense, error) {
	if m.pendingFn != nil {
		return m.pendingFn(requesterID)
	}
	return []models.Expense{}, nil
}

func (m *mockExpenseService) ApproveExpense(_ context.Context, expenseID, reviewerID, notes string) (*models.Expense, error) {
	if m.approveFn != nil {
		return m.approveFn(expenseID, reviewerID, notes)
	}
	return &models.Expense{Base: models.Base{ID: expenseID}, Status: models.ExpenseStatusApproved, ReviewNotes: notes}, nil
}

func (m *mockExpenseService) RejectExpense(_ context.Context, expenseID, reviewerID, notes string) (*models.Expense, error) {
	if m.rejectFn != nil {
		return m.rejectFn(expenseID, reviewerID, notes)
	}
	return &models.Expense{Base: models.Base{ID: expenseID}, Status: models.ExpenseStatusRejected, ReviewNotes: notes}, nil
}

func (m *mockExpenseService) ListUserExpenses(_ context.Context, ownerID string, query services.ExpenseQuery, page pagination.PageRequest, sort pagination.SortRequest) (*pagination.PageResponse[models.Expense], error) {
	if m.listFn != nil {
		return m.listFn(ownerID, query, page, sort)
	}
	result := pagination.NewPageResponse([]models.Expense{}, 1, 20, 0)
	return &result, nil
}

type mockReportService struct {
	summaryFn func(ownerID string, query services.ExpenseQuery) (*services.ExpenseSummary, error)
}

func (m *mockReportService) GetSummary(_ context.Context, ownerID string, query services.ExpenseQuery) (*services.ExpenseSummary, error) {
	if m.summaryFn != nil {
		return m.summaryFn(ownerID, query)
	}
	return &services.ExpenseSummary{Expenses: []models.Expense{}, Filters: query}, nil
}

// mockAuditService records the actions it was asked to log.
type mockAuditService struct {
	mu      sync.Mutex
	actions []string
}

func (m *mockAuditService) Record(_ context.Context, event services.AuditEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, string(event.Action))
}

func (m *mockAuditService) logged() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.actions...)
}

// --- test helpers ---

const (
	testUserID    = "0190a8f0-0000-7000-8000-000000000001"
	testExpenseID = "0190a8f0-0000-7000-8000-0000000000e1"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}
