package domain

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"funnelforge/pkg/errutil"
	"funnelforge/pkg/repository"
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node
	repo repository.Repository[Domain]
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:   p.DB,
		node: p.Node,
		repo: repository.ProvideStore[Domain](p.DB),
	}
}

func (s *Service) ListDomains(ctx context.Context, accountID string) ([]*Domain, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	domains, err := s.repo.Find(ctx, &Domain{AccountID: accountID})
	if err != nil {
		zap.L().Error("failed to list domains", zap.Error(err), zap.String("account_id", accountID))
		return nil, err
	}

	return domains, nil
}

func (s *Service) AddDomain(ctx context.Context, accountID, funnelID, hostname string) (*Domain, error) {
	hostname = strings.ToLower(strings.TrimSpace(hostname))
	if hostname == "" {
		return nil, errutil.BadRequest("hostname is required", nil)
	}

	if exist, err := s.repo.FindOne(ctx, &Domain{Hostname: hostname}); err != nil {
		return nil, err
	} else if exist != nil {
		return nil, errutil.Conflict("hostname already attached", nil)
	}

	code, err := generateVerificationCode()
	if err != nil {
		return nil, err
	}

	d := &Domain{
		ID:                s.node.Generate().String(),
		AccountID:         accountID,
		FunnelID:          funnelID,
		Type:              Custom,
		Hostname:          hostname,
		VerificationCode:  code,
		CertificateStatus: Pending,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		zap.L().Error("failed to create domain", zap.Error(err), zap.String("hostname", hostname))
		return nil, err
	}

	return d, nil
}

// MarkVerified flips the domain to verified once the (out of scope) DNS
// checker has confirmed the verification record.
func (s *Service) MarkVerified(ctx context.Context, accountID, hostname string) (*Domain, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	if strings.TrimSpace(hostname) == "" {
		return nil, errutil.BadRequest("hostname is required", nil)
	}

	var d Domain
	if err := s.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account_id = ? AND hostname = ?", accountID, hostname).
		First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errutil.NotFound("domain not found", nil)
		}
		return nil, err
	}

	if d.Verified {
		return &d, nil
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&d).Updates(map[string]interface{}{
		"verified":           true,
		"verified_at":        now,
		"certificate_status": Active,
		"updated_at":         now,
	}).Error; err != nil {
		return nil, err
	}

	zap.L().Info("Domain verified successfully",
		zap.String("account_id", d.AccountID),
		zap.String("hostname", d.Hostname),
	)

	return &d, nil
}

func (s *Service) RemoveDomain(ctx context.Context, accountID, hostname string) error {
	res := s.db.WithContext(ctx).
		Where("account_id = ? AND hostname = ?", accountID, hostname).
		Delete(&Domain{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errutil.NotFound("domain not found", nil)
	}
	return nil
}

func generateVerificationCode() (string, error) {
	r := make([]byte, 8)
	if _, err := rand.Read(r); err != nil {
		return "", err
	}
	return fmt.Sprintf("funnelforge-verify=%x", r), nil
}
