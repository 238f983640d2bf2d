package task

import (
	"time"

	"gorm.io/datatypes"
)

const JobCommissionRelease = "commission_release"

// Job is the execution record of one background run. The release engine
// itself is stateless; this row is the durable audit of when a run happened
// and how it ended.
type Job struct {
	ID          string         `gorm:"column:id;primaryKey"`
	Name        string         `gorm:"column:name;index;not null"`
	Status      string         `gorm:"column:status;type:varchar(20);default:'pending'"` // pending|running|success|failed
	ErrorMsg    string         `gorm:"column:error_msg;type:text"`
	StartedAt   *time.Time     `gorm:"column:started_at"`
	CompletedAt *time.Time     `gorm:"column:completed_at"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	Metadata    datatypes.JSON `gorm:"column:metadata"`
}
