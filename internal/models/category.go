package models

// Category is a top-level quiz topic grouping
type Category struct {
	ID          int64
	Name        string
	Description string
	Icon        string
}

// Subcategory is a topic within a category; quizzes are generated per subcategory
type Subcategory struct {
	ID          int64
	Name        string
	Description string
	CategoryID  int64

	// CategoryName is populated only by cross-category listings
	CategoryName string
}

// CategoryWithSubcategories bundles a category with its subcategories for browsing views
type CategoryWithSubcategories struct {
	Category      Category
	Subcategories []Subcategory
}
