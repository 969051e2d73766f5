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

// ListLists returns all lists, oldest first.
func (d *Database) ListLists(ctx context.Context) ([]models.List, error) {
	var lists []models.List
	if err := d.DB.WithContext(ctx).Order("created_at ASC, name ASC").Find(&lists).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve lists: %w", err)
	}
	return lists, nil
}

// CreateList creates a new list
func (d *Database) CreateList(ctx context.Context, in service.ListInput) (*models.List, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	list := models.List{Name: strings.TrimSpace(in.Name), Color: in.Color}
	if err := d.DB.WithContext(ctx).Create(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to create list: %w", err)
	}
	return &list, nil
}

// UpdateList renames a list
func (d *Database) UpdateList(ctx context.Context, id uuid.UUID, name string) (*models.List, error) {
	if err := service.ValidateListName(name); err != nil {
		return nil, err
	}
	db := d.DB.WithContext(ctx)
	list, err := getList(db, id)
	if err != nil {
		return nil, err
	}
	list.Name = strings.TrimSpace(name)
	if err := db.Model(list).Update("name", list.Name).Error; err != nil {
		return nil, fmt.Errorf("failed to update list: %w", err)
	}
	return list, nil
}

// DeleteList deletes a list that no task references any more.
func (d *Database) DeleteList(ctx context.Context, id uuid.UUID) (*models.List, error) {
	var deleted *models.List
	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		list, err := getList(tx, id)
		if err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&models.Task{}).Where("list_id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count tasks: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("list %q still has %d tasks: %w", list.Name, count, apierrors.ErrConflict)
		}
		if err := tx.Delete(&models.List{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete list: %w", err)
		}
		deleted = list
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func getList(tx *gorm.DB, id uuid.UUID) (*models.List, error) {
	var list models.List
	err := tx.First(&list, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("list %s: %w", id, apierrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve list: %w", err)
	}
	return &list, nil
}
