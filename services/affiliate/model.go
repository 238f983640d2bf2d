package affiliate

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Account is a workspace owner earning commissions through affiliate links.
// Balance is spendable; PendingBalance is held commission that has not yet
// matured. Both are mutated only through relative SQL increments so the
// invariant balance >= 0 && pending_balance >= 0 survives concurrent writers.
type Account struct {
	ID             string          `gorm:"column:id;primaryKey"`
	Name           string          `gorm:"column:name;not null"`
	Email          string          `gorm:"column:email;uniqueIndex;not null"`
	Balance        decimal.Decimal `gorm:"column:balance;type:decimal(18,2);not null;default:0"`
	PendingBalance decimal.Decimal `gorm:"column:pending_balance;type:decimal(18,2);not null;default:0"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// AffiliateLink ties a referral code to the funnel it promotes and the
// account that earns its commissions.
type AffiliateLink struct {
	ID        string    `gorm:"column:id;primaryKey"`
	AccountID string    `gorm:"column:account_id;index;not null"`
	FunnelID  string    `gorm:"column:funnel_id;index;not null"`
	Code      string    `gorm:"column:code;uniqueIndex;not null"`
	Clicks    int64     `gorm:"column:clicks;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Account *Account `gorm:"foreignKey:AccountID"`
}

// GenerateLinkCode returns a short referral code, e.g. "AF-3FA9C2".
func GenerateLinkCode() (string, error) {
	r := make([]byte, 3)
	if _, err := rand.Read(r); err != nil {
		return "", err
	}
	return fmt.Sprintf("AF-%s", strings.ToUpper(fmt.Sprintf("%x", r))), nil
}
