package shopping

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"

	shoppingdomain "pentrypal-go/internal/domain/shopping"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(shoppingdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) ListLists(ctx context.Context, userID string, filter shoppingdomain.ListFilter) ([]shoppingdomain.ShoppingList, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&shoppingdomain.ShoppingList{}).
		Where("owner_id = ? OR id IN (SELECT list_id FROM collaborators WHERE user_id = ?)", userID, userID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at desc")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var lists []shoppingdomain.ShoppingList
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc, created_at asc")
		}).
		Preload("Collaborators").
		Find(&lists).Error
	if err != nil {
		return nil, 0, err
	}

	return lists, total, nil
}

func (r *PostgresRepository) GetListByID(ctx context.Context, listID string) (*shoppingdomain.ShoppingList, error) {
	var list shoppingdomain.ShoppingList
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc, created_at asc")
		}).
		Preload("Collaborators").
		Where("id = ?", listID).
		First(&list).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shoppingdomain.ErrListNotFound
		}
		return nil, err
	}
	return &list, nil
}

func (r *PostgresRepository) CreateList(ctx context.Context, list *shoppingdomain.ShoppingList) error {
	return r.db.WithContext(ctx).Omit("Items", "Collaborators").Create(list).Error
}

func (r *PostgresRepository) SetListStatus(ctx context.Context, listID, from, to string) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if to == shoppingdomain.StatusArchived {
		updates["archived_at"] = time.Now().UTC()
	}

	result := r.db.WithContext(ctx).
		Model(&shoppingdomain.ShoppingList{}).
		Where("id = ? AND status = ?", listID, from).
		Updates(updates)
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) GetItemByID(ctx context.Context, listID, itemID string) (*shoppingdomain.ShoppingItem, error) {
	var item shoppingdomain.ShoppingItem
	err := r.db.WithContext(ctx).
		Where("list_id = ? AND id = ?", listID, itemID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shoppingdomain.ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *PostgresRepository) CreateItem(ctx context.Context, item *shoppingdomain.ShoppingItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *PostgresRepository) UpdateItem(ctx context.Context, item *shoppingdomain.ShoppingItem) error {
	return r.db.WithContext(ctx).
		Model(&shoppingdomain.ShoppingItem{}).
		Where("id = ? AND list_id = ?", item.ID, item.ListID).
		Updates(map[string]interface{}{
			"name":             item.Name,
			"quantity":         item.Quantity,
			"unit":             item.Unit,
			"price":            item.Price,
			"completed":        item.Completed,
			"assigned_to":      item.AssignedTo,
			"purchased_amount": item.PurchasedAmount,
			"completed_at":     item.CompletedAt,
		}).Error
}

func (r *PostgresRepository) MaxItemPosition(ctx context.Context, listID string) (int, error) {
	var max sql.NullInt64
	err := r.db.WithContext(ctx).
		Model(&shoppingdomain.ShoppingItem{}).
		Select("MAX(position)").
		Where("list_id = ?", listID).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if !max.Valid {
		return -1, nil
	}
	return int(max.Int64), nil
}

func (r *PostgresRepository) AddCollaborator(ctx context.Context, collaborator *shoppingdomain.Collaborator) error {
	return r.db.WithContext(ctx).Create(collaborator).Error
}

func (r *PostgresRepository) RemoveCollaborator(ctx context.Context, listID, userID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Delete(&shoppingdomain.Collaborator{}, "list_id = ? AND user_id = ?", listID, userID)
	return result.RowsAffected > 0, result.Error
}
