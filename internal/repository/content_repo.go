package repository

import (
	"database/sql"

	"quizhub/internal/database"
	"quizhub/internal/models"
)

// ContentRepository handles database operations for categories and subcategories
type ContentRepository struct {
	db database.DBTX
}

// NewContentRepository creates a new content repository
func NewContentRepository(db database.DBTX) *ContentRepository {
	return &ContentRepository{db: db}
}

// ListCategories returns all categories ordered by name
func (r *ContentRepository) ListCategories() ([]models.Category, error) {
	rows, err := r.db.Query("SELECT id, name, description, icon FROM categories ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Icon); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategory retrieves a category by ID, or nil if not found
func (r *ContentRepository) GetCategory(id int64) (*models.Category, error) {
	c := &models.Category{}
	err := r.db.QueryRow("SELECT id, name, description, icon FROM categories WHERE id = ?", id).
		Scan(&c.ID, &c.Name, &c.Description, &c.Icon)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreateCategory inserts a category and returns it with its ID set
func (r *ContentRepository) CreateCategory(name, description, icon string) (*models.Category, error) {
	query := "INSERT INTO categories (name, description, icon) VALUES (?, ?, ?)"
	id, err := r.db.ExecReturningID(query, name, description, icon)
	if err != nil {
		return nil, err
	}
	return &models.Category{ID: id, Name: name, Description: description, Icon: icon}, nil
}

// UpdateCategory persists category fields
func (r *ContentRepository) UpdateCategory(c *models.Category) error {
	query := "UPDATE categories SET name = ?, description = ?, icon = ? WHERE id = ?"
	_, err := r.db.Exec(query, c.Name, c.Description, c.Icon, c.ID)
	return err
}

// DeleteCategory removes a category; its subcategories cascade
func (r *ContentRepository) DeleteCategory(id int64) error {
	_, err := r.db.Exec("DELETE FROM categories WHERE id = ?", id)
	return err
}

// CountCategories returns the total number of categories
func (r *ContentRepository) CountCategories() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count)
	return count, err
}

// ListSubcategories returns subcategories for one category ordered by name
func (r *ContentRepository) ListSubcategories(categoryID int64) ([]models.Subcategory, error) {
	query := "SELECT id, name, description, category_id FROM subcategories WHERE category_id = ? ORDER BY name"
	rows, err := r.db.Query(query, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubcategories(rows)
}

// ListAllSubcategories returns every subcategory ordered by category then name
func (r *ContentRepository) ListAllSubcategories() ([]models.Subcategory, error) {
	query := `
		SELECT s.id, s.name, s.description, s.category_id, c.name
		FROM subcategories s
		JOIN categories c ON c.id = s.category_id
		ORDER BY c.name, s.name
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subcategories []models.Subcategory
	for rows.Next() {
		var s models.Subcategory
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.CategoryID, &s.CategoryName); err != nil {
			return nil, err
		}
		subcategories = append(subcategories, s)
	}
	return subcategories, rows.Err()
}

func scanSubcategories(rows *sql.Rows) ([]models.Subcategory, error) {
	var subcategories []models.Subcategory
	for rows.Next() {
		var s models.Subcategory
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.CategoryID); err != nil {
			return nil, err
		}
		subcategories = append(subcategories, s)
	}
	return subcategories, rows.Err()
}

// GetSubcategory retrieves a subcategory by ID, or nil if not found
func (r *ContentRepository) GetSubcategory(id int64) (*models.Subcategory, error) {
	s := &models.Subcategory{}
	err := r.db.QueryRow("SELECT id, name, description, category_id FROM subcategories WHERE id = ?", id).
		Scan(&s.ID, &s.Name, &s.Description, &s.CategoryID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreateSubcategory inserts a subcategory under a category
func (r *ContentRepository) CreateSubcategory(name, description string, categoryID int64) (*models.Subcategory, error) {
	query := "INSERT INTO subcategories (name, description, category_id) VALUES (?, ?, ?)"
	id, err := r.db.ExecReturningID(query, name, description, categoryID)
	if err != nil {
		return nil, err
	}
	return &models.Subcategory{ID: id, Name: name, Description: description, CategoryID: categoryID}, nil
}

// UpdateSubcategory persists subcategory fields
func (r *ContentRepository) UpdateSubcategory(s *models.Subcategory) error {
	query := "UPDATE subcategories SET name = ?, description = ?, category_id = ? WHERE id = ?"
	_, err := r.db.Exec(query, s.Name, s.Description, s.CategoryID, s.ID)
	return err
}

// DeleteSubcategory removes a subcategory; its quizzes cascade
func (r *ContentRepository) DeleteSubcategory(id int64) error {
	_, err := r.db.Exec("DELETE FROM subcategories WHERE id = ?", id)
	return err
}
