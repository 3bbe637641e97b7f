package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ledgerline/ledgerline-backend/pkg/enums"
)

// Category is a user-managed classification target. ParentID forms a
// two-tier tree: parent summary category -> child subcategory.
type Category struct {
	ID              uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserScope       string             `gorm:"column:user_scope;not null;index"`
	Name            string             `gorm:"column:name;not null"`
	CategoryType    enums.CategoryType `gorm:"column:category_type;type:category_type;not null"`
	ParentID        *uuid.UUID         `gorm:"column:parent_id;type:uuid"`
	RawLabelAliases pq.StringArray     `gorm:"column:raw_label_aliases;type:text[];default:ARRAY[]::text[]"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
