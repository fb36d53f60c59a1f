package service

import (
	"errors"
	"fmt"
	"strings"

	"quizhub/internal/models"
	"quizhub/internal/repository"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrNameRequired     = errors.New("name is required")
)

// ContentService manages the category and subcategory catalog
type ContentService struct {
	contentRepo *repository.ContentRepository
}

// NewContentService creates a new content service
func NewContentService(contentRepo *repository.ContentRepository) *ContentService {
	return &ContentService{contentRepo: contentRepo}
}

// ListCategories returns all categories ordered by name
func (s *ContentService) ListCategories() ([]models.Category, error) {
	return s.contentRepo.ListCategories()
}

// BrowseCategories returns every category with its subcategories attached
func (s *ContentService) BrowseCategories() ([]models.CategoryWithSubcategories, error) {
	categories, err := s.contentRepo.ListCategories()
	if err != nil {
		return nil, err
	}

	result := make([]models.CategoryWithSubcategories, 0, len(categories))
	for _, c := range categories {
		subs, err := s.contentRepo.ListSubcategories(c.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, models.CategoryWithSubcategories{
			Category:      c,
			Subcategories: subs,
		})
	}
	return result, nil
}

// GetCategoryDetail returns one category with its subcategories
func (s *ContentService) GetCategoryDetail(id int64) (*models.CategoryWithSubcategories, error) {
	category, err := s.contentRepo.GetCategory(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	subs, err := s.contentRepo.ListSubcategories(id)
	if err != nil {
		return nil, err
	}
	return &models.CategoryWithSubcategories{
		Category:      *category,
		Subcategories: subs,
	}, nil
}

// GetSubcategory returns one subcategory
func (s *ContentService) GetSubcategory(id int64) (*models.Subcategory, error) {
	sub, err := s.contentRepo.GetSubcategory(id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrSubcategoryNotFound
	}
	return sub, nil
}

// ListAllSubcategories returns every subcategory grouped by category name
func (s *ContentService) ListAllSubcategories() ([]models.Subcategory, error) {
	return s.contentRepo.ListAllSubcategories()
}

// CreateCategory adds a category to the catalog
func (s *ContentService) CreateCategory(name, description, icon string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if icon == "" {
		icon = "book-open"
	}
	category, err := s.contentRepo.CreateCategory(name, strings.TrimSpace(description), icon)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

// UpdateCategory edits a category's name, description, and icon
func (s *ContentService) UpdateCategory(id int64, name, description, icon string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}

	category, err := s.contentRepo.GetCategory(id)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}

	category.Name = name
	category.Description = strings.TrimSpace(description)
	if icon != "" {
		category.Icon = icon
	}
	return s.contentRepo.UpdateCategory(category)
}

// DeleteCategory removes a category and, via cascade, its subcategories
func (s *ContentService) DeleteCategory(id int64) error {
	return s.contentRepo.DeleteCategory(id)
}

// CreateSubcategory adds a subcategory under an existing category
func (s *ContentService) CreateSubcategory(name, description string, categoryID int64) (*models.Subcategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	category, err := s.contentRepo.GetCategory(categoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	sub, err := s.contentRepo.CreateSubcategory(name, strings.TrimSpace(description), categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to create subcategory: %w", err)
	}
	return sub, nil
}

// UpdateSubcategory edits a subcategory, optionally moving it to another category
func (s *ContentService) UpdateSubcategory(id int64, name, description string, categoryID int64) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}

	sub, err := s.contentRepo.GetSubcategory(id)
	if err != nil {
		return err
	}
	if sub == nil {
		return ErrSubcategoryNotFound
	}

	category, err := s.contentRepo.GetCategory(categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}

	sub.Name = name
	sub.Description = strings.TrimSpace(description)
	sub.CategoryID = categoryID
	return s.contentRepo.UpdateSubcategory(sub)
}

// DeleteSubcategory removes a subcategory
func (s *ContentService) DeleteSubcategory(id int64) error {
	return s.contentRepo.DeleteSubcategory(id)
}
