package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apierrors "github.com/kutbudev/duedeck/internal/errors"
	"github.com/kutbudev/duedeck/internal/service"
	"github.com/kutbudev/duedeck/pkg/models"
)

// ListTags returns all tags ordered by name
func (d *Database) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := d.DB.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve tags: %w", err)
	}
	return tags, nil
}

// CreateTag creates a new tag
func (d *Database) CreateTag(ctx context.Context, in service.TagInput) (*models.Tag, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	tag := models.Tag{Name: strings.TrimSpace(in.Name), Color: in.Color}
	if err := d.DB.WithContext(ctx).Create(&tag).Error; err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return &tag, nil
}

// DeleteTag detaches the tag from all tasks, then deletes it.
func (d *Database) DeleteTag(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var deleted *models.Tag
	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tag models.Tag
		err := tx.First(&tag, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("tag %s: %w", id, apierrors.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to retrieve tag: %w", err)
		}
		if err := tx.Model(&models.Tag{ID: id}).Association("Tasks").Clear(); err != nil {
			return fmt.Errorf("failed to detach tag: %w", err)
		}
		if err := tx.Delete(&models.Tag{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete tag: %w", err)
		}
		deleted = &tag
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
