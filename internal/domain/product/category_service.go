// internal/domain/product/category_service.go
package product

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// CategoryService handles category business logic
type CategoryService struct {
	repo CategoryRepository
}

// NewCategoryService creates a new category service
func NewCategoryService(repo CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// CategoryCreateRequest represents category creation data
type CategoryCreateRequest struct {
	Name        string     `json:"name" binding:"required"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
	SortOrder   int        `json:"sort_order"`
}

// CategoryUpdateRequest represents category update data
type CategoryUpdateRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
	ClearParent bool       `json:"clear_parent"`
	SortOrder   *int       `json:"sort_order"`
}

// CategoryTree represents hierarchical category structure
type CategoryTree struct {
	Category
	Children []CategoryTree `json:"children,omitempty"`
}

// live loads every non deleted category keyed by id
func (s *CategoryService) live(ctx context.Context) (map[uuid.UUID]Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	byID := make(map[uuid.UUID]Category, len(categories))
	for _, c := range categories {
		if !c.Deleted {
			byID[c.ID] = c
		}
	}
	return byID, nil
}

// Get retrieves a live category by ID
func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*Category, error) {
	c, err := s.repo.FindCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Deleted {
		return nil, ErrCategoryNotFound
	}
	return c, nil
}

// GetBySlug retrieves a live category by slug
func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	c, err := s.repo.FindCategoryBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if c.Deleted {
		return nil, ErrCategoryNotFound
	}
	return c, nil
}

// Tree retrieves categories in hierarchical tree structure
func (s *CategoryService) Tree(ctx context.Context) ([]CategoryTree, error) {
	byID, err := s.live(ctx)
	if err != nil {
		return nil, err
	}

	children := make(map[uuid.UUID][]Category)
	var roots []Category
	for _, c := range byID {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		if _, ok := byID[*c.ParentID]; ok {
			children[*c.ParentID] = append(children[*c.ParentID], c)
		}
	}

	var build func(list []Category, depth int) []CategoryTree
	build = func(list []Category, depth int) []CategoryTree {
		sortCategories(list)
		out := make([]CategoryTree, 0, len(list))
		for _, c := range list {
			node := CategoryTree{Category: c}
			if depth < len(byID) {
				node.Children = build(children[c.ID], depth+1)
			}
			out = append(out, node)
		}
		return out
	}
	return build(roots, 0), nil
}

// Path walks parent_id from the category up to its root and returns the
// chain root first. A parent cycle stops the walk.
func (s *CategoryService) Path(ctx context.Context, id uuid.UUID) ([]Category, error) {
	byID, err := s.live(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := byID[id]; !ok {
		return nil, ErrCategoryNotFound
	}

	var path []Category
	seen := make(map[uuid.UUID]bool)
	current := &id
	for current != nil && !seen[*current] {
		c, ok := byID[*current]
		if !ok {
			break
		}
		seen[c.ID] = true
		path = append(path, c)
		current = c.ParentID
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// Subtree returns the ids of a category and all of its descendants
func (s *CategoryService) Subtree(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	byID, err := s.live(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := byID[id]; !ok {
		return nil, ErrCategoryNotFound
	}

	children := make(map[uuid.UUID][]uuid.UUID)
	for _, c := range byID {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}

	ids := []uuid.UUID{id}
	seen := map[uuid.UUID]bool{id: true}
	for i := 0; i < len(ids); i++ {
		for _, child := range children[ids[i]] {
			if !seen[child] {
				seen[child] = true
				ids = append(ids, child)
			}
		}
	}
	return ids, nil
}

// Create creates a new category
func (s *CategoryService) Create(ctx context.Context, req *CategoryCreateRequest) (*Category, error) {
	if req.ParentID != nil {
		if _, err := s.Get(ctx, *req.ParentID); err != nil {
			return nil, err
		}
	}

	c := &Category{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Slug:        req.Slug,
		Description: req.Description,
		ParentID:    req.ParentID,
		SortOrder:   req.SortOrder,
	}
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}

	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return c, nil
}

// Update applies partial changes to a category
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req *CategoryUpdateRequest) (*Category, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.SortOrder != nil {
		c.SortOrder = *req.SortOrder
	}
	if req.ClearParent {
		c.ParentID = nil
	} else if req.ParentID != nil {
		if err := s.checkParent(ctx, id, *req.ParentID); err != nil {
			return nil, err
		}
		c.ParentID = req.ParentID
	}

	if err := s.repo.SaveCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return c, nil
}

// Delete soft deletes a category without live subcategories
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	byID, err := s.live(ctx)
	if err != nil {
		return err
	}
	for _, other := range byID {
		if other.ParentID != nil && *other.ParentID == id {
			return ErrCategoryInUse
		}
	}

	c.Deleted = true
	if err := s.repo.SaveCategory(ctx, c); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

// checkParent rejects a parent that is the category itself or one of its descendants
func (s *CategoryService) checkParent(ctx context.Context, id, parentID uuid.UUID) error {
	if id == parentID {
		return ErrCategoryCycle
	}
	path, err := s.Path(ctx, parentID)
	if err != nil {
		return err
	}
	for _, ancestor := range path {
		if ancestor.ID == id {
			return ErrCategoryCycle
		}
	}
	return nil
}

func sortCategories(list []Category) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].SortOrder != list[j].SortOrder {
			return list[i].SortOrder < list[j].SortOrder
		}
		return list[i].Name < list[j].Name
	})
}
