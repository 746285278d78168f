package shopping

import (
	"math"
	"time"

	"gorm.io/gorm"
)

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusArchived  = "archived"
)

const (
	RoleOwner  = "owner"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

type ShoppingList struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	Name       string    `gorm:"not null"`
	OwnerID    string    `gorm:"not null;index"`
	Status     string    `gorm:"type:varchar(16);not null;default:'active'"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
	ArchivedAt *time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`

	Items         []ShoppingItem `gorm:"foreignKey:ListID;references:ID"`
	Collaborators []Collaborator `gorm:"foreignKey:ListID;references:ID"`
}

type ShoppingItem struct {
	ID       string  `gorm:"type:uuid;primaryKey"`
	ListID   string  `gorm:"type:uuid;index;not null"`
	Name     string  `gorm:"not null"`
	Quantity float64 `gorm:"type:numeric(12,3);not null;default:1"`
	Unit     string  `gorm:"size:16"`
	// Price is the estimated price shown before purchase; PurchasedAmount is
	// what was actually paid and is only set while the item is completed.
	Price           float64  `gorm:"type:numeric(12,2);not null;default:0"`
	Completed       bool     `gorm:"not null;default:false"`
	AssignedTo      *string  `gorm:"column:assigned_to"`
	PurchasedAmount *float64 `gorm:"type:numeric(12,2);column:purchased_amount"`
	Position        int      `gorm:"not null;default:0"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	CompletedAt     *time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

type Collaborator struct {
	ID       string `gorm:"type:uuid;primaryKey"`
	ListID   string `gorm:"type:uuid;uniqueIndex:idx_collaborators_list_user;not null"`
	UserID   string `gorm:"uniqueIndex:idx_collaborators_list_user;not null"`
	Name     string
	Email    string
	Phone    *string
	Role     string    `gorm:"type:varchar(16);not null"`
	JoinedAt time.Time `gorm:"autoCreateTime"`
}

// ListTotals carries the derived counters for a list.
type ListTotals struct {
	ItemsCount     int
	CompletedCount int
	Progress       int
	TotalSpent     float64
}

// Totals computes the derived counters. Progress is a rounded percentage and
// defined as 0 for an empty list. TotalSpent sums purchased amounts over
// completed items that have one recorded.
func Totals(items []ShoppingItem) ListTotals {
	totals := ListTotals{ItemsCount: len(items)}
	for _, item := range items {
		if !item.Completed {
			continue
		}
		totals.CompletedCount++
		if item.PurchasedAmount != nil {
			totals.TotalSpent += *item.PurchasedAmount
		}
	}
	if totals.ItemsCount > 0 {
		totals.Progress = int(math.Round(float64(totals.CompletedCount) / float64(totals.ItemsCount) * 100))
	}
	return totals
}

// IsOwner reports whether userID owns the list, either as the creator or via
// a collaborator entry with the owner role.
func (l *ShoppingList) IsOwner(userID string) bool {
	if l.OwnerID == userID {
		return true
	}
	for _, c := range l.Collaborators {
		if c.UserID == userID && c.Role == RoleOwner {
			return true
		}
	}
	return false
}

// CanView reports whether userID may read the list: the owner or anyone on
// the collaborator roster, regardless of role.
func (l *ShoppingList) CanView(userID string) bool {
	if l.OwnerID == userID {
		return true
	}
	for _, c := range l.Collaborators {
		if c.UserID == userID {
			return true
		}
	}
	return false
}

// CanToggle implements the shopping-mode permission rule: the list owner may
// toggle any item, everyone else only items assigned to them.
func (l *ShoppingList) CanToggle(item *ShoppingItem, userID string) bool {
	if l.IsOwner(userID) {
		return true
	}
	return item.AssignedTo != nil && *item.AssignedTo == userID
}

// FindItem returns the item with the given id, or nil.
func (l *ShoppingList) FindItem(itemID string) *ShoppingItem {
	for i := range l.Items {
		if l.Items[i].ID == itemID {
			return &l.Items[i]
		}
	}
	return nil
}

type ListFilter struct {
	Status string
	Limit  int
	Offset int
}

type CreateListInput struct {
	Name       string
	OwnerID    string
	OwnerName  string
	OwnerEmail string
}

type CreateItemInput struct {
	ListID     string
	Actor      string
	Name       string
	Quantity   float64
	Unit       string
	Price      float64
	AssignedTo *string
}

type EditItemInput struct {
	ListID     string
	ItemID     string
	Actor      string
	Name       *string
	Quantity   *float64
	Unit       *string
	Price      *float64
	AssignedTo *string
}

// UpdateItemInput is the completion-state update issued from shopping mode.
// ActualPrice is recorded only when completing; uncompleting always clears
// the stored purchased amount.
type UpdateItemInput struct {
	ListID      string
	ItemID      string
	Actor       string
	Completed   bool
	ActualPrice *float64
}

type AddCollaboratorInput struct {
	ListID string
	Actor  string
	UserID string
	Name   string
	Email  string
	Phone  *string
	Role   string
}
