package domain

import (
	"time"
)

type DomainType string

var (
	System DomainType = "system"
	Custom DomainType = "custom"
)

func (t DomainType) String() string {
	switch t {
	case System, Custom:
		return string(t)
	default:
		return ""
	}
}

type CertificateStatusType string

var (
	Pending CertificateStatusType = "pending"
	Active  CertificateStatusType = "active"
	Failed  CertificateStatusType = "failed"
)

func (t CertificateStatusType) String() string {
	switch t {
	case Pending, Active, Failed:
		return string(t)
	default:
		return ""
	}
}

// Domain maps a hostname to a published funnel.
type Domain struct {
	ID                string                `gorm:"column:id;primaryKey"`
	CreatedAt         time.Time             `gorm:"column:created_at"`
	UpdatedAt         time.Time             `gorm:"column:updated_at"`
	AccountID         string                `gorm:"column:account_id;index"`
	FunnelID          string                `gorm:"column:funnel_id;index"`
	Type              DomainType            `gorm:"column:type"`
	Hostname          string                `gorm:"column:hostname;uniqueIndex"`
	VerificationCode  string                `gorm:"column:verification_code"`
	CertificateStatus CertificateStatusType `gorm:"column:certificate_status"`
	Verified          bool                  `gorm:"column:verified"`
	VerifiedAt        *time.Time            `gorm:"column:verified_at"`
	IsPrimary         bool                  `gorm:"column:is_primary"`
}
