// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"expensely/internal/models"
	"expensely/internal/repository"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("expense_status", validateExpenseStatus)
		_ = v.RegisterValidation("user_role", validateUserRole)
		_ = v.RegisterValidation("iso_date", validateISODate)
		_ = v.RegisterValidation("sort_dir", validateSortDir)
		_ = v.RegisterValidation("expense_sort", validateExpenseSort)
	}
}

// jsonFieldName reports fields by their JSON or form name in error messages.
func jsonFieldName(field reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return field.Name
}

func validateExpenseStatus(fl validator.FieldLevel) bool {
	return models.ExpenseStatus(strings.ToUpper(fl.Field().String())).IsValid()
}

func validateUserRole(fl validator.FieldLevel) bool {
	return models.Role(fl.Field().String()).IsValid()
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

func validateSortDir(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "asc", "desc":
		return true
	}
	return false
}

func validateExpenseSort(fl validator.FieldLevel) bool {
	_, ok := repository.ExpenseSortColumns[fl.Field().String()]
	return ok
}
