package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound     = kindError(ErrNotFound, "category not found")
	ErrCategoryNameEmpty    = kindError(ErrInvalidArgument, "category name cannot be empty")
	ErrCategoryNameTooLong  = kindError(ErrInvalidArgument, "category name is too long (max 50 chars)")
	ErrCategoryNameTaken    = kindError(ErrInvalidArgument, "category name already exists")
	ErrCategoryLimitReached = kindError(ErrLimitExceeded, "category limit reached (max 25)")
	ErrDefaultCategory      = kindError(ErrInvalidOperation, "the default category cannot be deleted or renamed")
	ErrInvalidColor         = kindError(ErrInvalidArgument, "invalid color format (must be #RRGGBB)")
)

const (
	DefaultCategoryName  = "General"
	DefaultCategoryColor = "#6366F1"
	MaxCategoryNameLen   = 50
	MaxCategoriesPerUser = 25
)

type Category struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"`
	Name          string    `json:"name" db:"name"`
	Color         string    `json:"color" db:"color"`
	IsDefault     bool      `json:"is_default" db:"is_default"`
	TotalSessions int       `json:"total_sessions" db:"total_sessions"`
	TotalMinutes  int       `json:"total_minutes" db:"total_minutes"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

func validateCategory(name, color string) (string, string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", "", ErrCategoryNameEmpty
	}
	if utf8.RuneCountInString(trimmed) > MaxCategoryNameLen {
		return "", "", ErrCategoryNameTooLong
	}

	if color == "" {
		color = DefaultCategoryColor
	}
	if !colorRegex.MatchString(color) {
		return "", "", ErrInvalidColor
	}
	return trimmed, color, nil
}

// NewCategory builds a category for userID and checks it against the ones
// the user already has.
func NewCategory(userID, name, color string, existing []*Category) (*Category, error) {
	cleanName, cleanColor, err := validateCategory(name, color)
	if err != nil {
		return nil, err
	}
	if len(existing) >= MaxCategoriesPerUser {
		return nil, ErrCategoryLimitReached
	}
	if FindCategory(existing, cleanName) != nil {
		return nil, ErrCategoryNameTaken
	}

	now := time.Now().UTC()
	return &Category{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      cleanName,
		Color:     cleanColor,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func NewDefaultCategory(userID string) *Category {
	now := time.Now().UTC()
	return &Category{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      DefaultCategoryName,
		Color:     DefaultCategoryColor,
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Update renames and/or recolors c. Empty values keep the current ones.
func (c *Category) Update(name, color string, existing []*Category) error {
	if name == "" {
		name = c.Name
	}
	if color == "" {
		color = c.Color
	}
	cleanName, cleanColor, err := validateCategory(name, color)
	if err != nil {
		return err
	}

	if !strings.EqualFold(cleanName, c.Name) {
		if c.IsDefault {
			return ErrDefaultCategory
		}
		if other := FindCategory(existing, cleanName); other != nil && other.ID != c.ID {
			return ErrCategoryNameTaken
		}
	}

	c.Name = cleanName
	c.Color = cleanColor
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (c *Category) CanDelete() error {
	if c.IsDefault {
		return ErrDefaultCategory
	}
	return nil
}

// FindCategory looks a category up by name, ignoring case and surrounding
// whitespace.
func FindCategory(categories []*Category, name string) *Category {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	for _, c := range categories {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}
