package services

import (
	"context"
	"fmt"

	"github.com/clario-app/clario/internal/core/domain"
)

type CategoryService struct {
	repo domain.CategoryRepository
}

func NewCategoryService(repo domain.CategoryRepository) *CategoryService {
	return &CategoryService{
		repo: repo,
	}
}

type CreateCategoryInput struct {
	UserID string
	Name   string
	Color  string
}

type UpdateCategoryInput struct {
	ID     string
	UserID string
	Name   string
	Color  string
}

// List returns the user's categories, creating the default one the first
// time they are loaded.
func (s *CategoryService) List(ctx context.Context, userID string) ([]*domain.Category, error) {
	cats, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, c := range cats {
		if c.IsDefault {
			return cats, nil
		}
	}

	def := domain.NewDefaultCategory(userID)
	if err := s.repo.Create(ctx, def); err != nil {
		return nil, fmt.Errorf("create default category: %w", err)
	}

	return append([]*domain.Category{def}, cats...), nil
}

func (s *CategoryService) Create(ctx context.Context, input CreateCategoryInput) (*domain.Category, error) {
	existing, err := s.List(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	cat, err := domain.NewCategory(input.UserID, input.Name, input.Color, existing)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (s *CategoryService) Get(ctx context.Context, id, userID string) (*domain.Category, error) {
	cat, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat.UserID != userID {
		return nil, domain.ErrCategoryNotFound
	}
	return cat, nil
}

func (s *CategoryService) Update(ctx context.Context, input UpdateCategoryInput) (*domain.Category, error) {
	cat, err := s.Get(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	existing, err := s.List(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if err := cat.Update(input.Name, input.Color, existing); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (s *CategoryService) Delete(ctx context.Context, id, userID string) error {
	cat, err := s.Get(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := cat.CanDelete(); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Credit adds a finished focus session to the running totals of a category.
func (s *CategoryService) Credit(ctx context.Context, credit *domain.CategoryCredit) error {
	if credit == nil || credit.CategoryID == "" {
		return nil
	}
	return s.repo.AddSession(ctx, credit.CategoryID, credit.Minutes)
}
