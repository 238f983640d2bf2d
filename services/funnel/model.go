package funnel

import (
	"time"

	"gorm.io/datatypes"
)

// Funnel is a multi-page marketing site owned by an account.
type Funnel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	AccountID string    `gorm:"column:account_id;index;not null"`
	Name      string    `gorm:"column:name;not null"`
	Slug      string    `gorm:"column:slug;uniqueIndex;not null"`
	Theme     string    `gorm:"column:theme;default:'default'"`
	Published bool      `gorm:"column:published;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Pages []Page `gorm:"foreignKey:FunnelID"`
}

// Page is one step of a funnel; Content holds the rendered block tree.
type Page struct {
	ID        string         `gorm:"column:id;primaryKey"`
	FunnelID  string         `gorm:"column:funnel_id;index;not null"`
	Path      string         `gorm:"column:path;not null"`
	Title     string         `gorm:"column:title"`
	Position  int            `gorm:"column:position;not null;default:0"`
	Content   datatypes.JSON `gorm:"column:content;type:jsonb"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
