package models

// Category is global reference data attached to expenses.
type Category struct {
	Base
	Name        string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
}

// DefaultCategories are seeded on startup when missing.
var DefaultCategories = []Category{
	{Name: "Travel", Description: "Transportation, accommodation, and travel-related expenses"},
	{Name: "Meals", Description: "Food and beverage expenses including client meals"},
	{Name: "Office Supplies", Description: "Stationery, office equipment, and supplies"},
	{Name: "Equipment", Description: "Computer hardware, software, and technical equipment"},
	{Name: "Other", Description: "Miscellaneous expenses not covered by other categories"},
}
