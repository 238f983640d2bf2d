package affiliate

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"funnelforge/pkg/db/option"
	"funnelforge/pkg/errutil"
	"funnelforge/pkg/repository"
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node

	accounts repository.Repository[Account]
	links    repository.Repository[AffiliateLink]
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

		accounts: repository.ProvideStore[Account](p.DB),
		links:    repository.ProvideStore[AffiliateLink](p.DB),
	}
}

func (s *Service) CreateAccount(ctx context.Context, name, email string) (*Account, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return nil, errutil.BadRequest("name and email are required", nil)
	}

	if exist, err := s.accounts.FindOne(ctx, &Account{Email: email}); err != nil {
		return nil, err
	} else if exist != nil {
		return nil, errutil.Conflict("email already registered", nil)
	}

	account := &Account{
		ID:    s.node.Generate().String(),
		Name:  name,
		Email: email,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		zap.L().Error("failed to create account", zap.Error(err))
		return nil, err
	}

	return account, nil
}

func (s *Service) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	account, err := s.accounts.FindOne(ctx, &Account{ID: accountID})
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errutil.NotFound("account not found", nil)
	}
	return account, nil
}

func (s *Service) CreateLink(ctx context.Context, accountID, funnelID string) (*AffiliateLink, error) {
	if accountID == "" || funnelID == "" {
		return nil, errutil.BadRequest("account_id and funnel_id are required", nil)
	}

	account, err := s.accounts.FindOne(ctx, &Account{ID: accountID})
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errutil.NotFound("account not found", nil)
	}

	code, err := GenerateLinkCode()
	if err != nil {
		zap.L().Error("failed to generate link code", zap.Error(err))
		return nil, err
	}

	link := &AffiliateLink{
		ID:        s.node.Generate().String(),
		AccountID: accountID,
		FunnelID:  funnelID,
		Code:      code,
	}
	if err := s.links.Create(ctx, link); err != nil {
		zap.L().Error("failed to create affiliate link", zap.Error(err))
		return nil, err
	}

	return link, nil
}

func (s *Service) ListLinks(ctx context.Context, accountID string) ([]*AffiliateLink, error) {
	return s.links.Find(ctx, &AffiliateLink{AccountID: accountID}, option.WithSortBy(option.QuerySortBy{
		SortBy:  "created_at",
		OrderBy: "desc",
		Allow:   map[string]bool{"created_at": true},
	}))
}

// ResolveCode looks up a link by referral code, e.g. during checkout
// attribution.
func (s *Service) ResolveCode(ctx context.Context, code string) (*AffiliateLink, error) {
	link, err := s.links.FindOne(ctx, &AffiliateLink{Code: code})
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, errutil.NotFound("affiliate link not found", nil)
	}
	return link, nil
}

// TrackClick bumps the click counter with a relative update.
func (s *Service) TrackClick(ctx context.Context, code string) error {
	res := s.db.WithContext(ctx).
		Model(&AffiliateLink{}).
		Where("code = ?", code).
		Update("clicks", gorm.Expr("clicks + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errutil.NotFound("affiliate link not found", nil)
	}
	return nil
}
