package funnel

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"funnelforge/pkg/db/option"
	"funnelforge/pkg/errutil"
	"funnelforge/pkg/repository"
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node

	funnels repository.Repository[Funnel]
	pages   repository.Repository[Page]
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

		funnels: repository.ProvideStore[Funnel](p.DB),
		pages:   repository.ProvideStore[Page](p.DB),
	}
}

func (s *Service) CreateFunnel(ctx context.Context, accountID, name string) (*Funnel, error) {
	if accountID == "" || strings.TrimSpace(name) == "" {
		return nil, errutil.BadRequest("account_id and name are required", nil)
	}

	f := &Funnel{
		ID:        s.node.Generate().String(),
		AccountID: accountID,
		Name:      name,
		Slug:      slug.Make(name),
	}

	if exist, err := s.funnels.FindOne(ctx, &Funnel{Slug: f.Slug}); err != nil {
		return nil, err
	} else if exist != nil {
		// disambiguate colliding slugs with the funnel id suffix
		f.Slug = f.Slug + "-" + strings.ToLower(f.ID[len(f.ID)-6:])
	}

	if err := s.funnels.Create(ctx, f); err != nil {
		zap.L().Error("failed to create funnel", zap.Error(err))
		return nil, err
	}

	return f, nil
}

func (s *Service) GetFunnel(ctx context.Context, accountID, funnelID string) (*Funnel, error) {
	f, err := s.funnels.FindOne(ctx, &Funnel{ID: funnelID})
	if err != nil {
		return nil, err
	}
	if f == nil || f.AccountID != accountID {
		return nil, errutil.NotFound("funnel not found", nil)
	}

	pages, err := s.pages.Find(ctx, &Page{FunnelID: f.ID}, option.WithSortBy(option.QuerySortBy{
		SortBy: "position",
		Allow:  map[string]bool{"position": true},
	}))
	if err != nil {
		return nil, err
	}
	f.Pages = make([]Page, 0, len(pages))
	for _, p := range pages {
		f.Pages = append(f.Pages, *p)
	}

	return f, nil
}

func (s *Service) ListFunnels(ctx context.Context, accountID string) ([]*Funnel, error) {
	return s.funnels.Find(ctx, &Funnel{AccountID: accountID}, option.WithSortBy(option.QuerySortBy{
		SortBy:  "created_at",
		OrderBy: "desc",
		Allow:   map[string]bool{"created_at": true},
	}))
}

func (s *Service) PublishFunnel(ctx context.Context, accountID, funnelID string, published bool) error {
	res := s.db.WithContext(ctx).
		Model(&Funnel{}).
		Where("id = ? AND account_id = ?", funnelID, accountID).
		Update("published", published)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errutil.NotFound("funnel not found", nil)
	}
	return nil
}

func (s *Service) DeleteFunnel(ctx context.Context, accountID, funnelID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND account_id = ?", funnelID, accountID).Delete(&Funnel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errutil.NotFound("funnel not found", nil)
		}
		return tx.Where("funnel_id = ?", funnelID).Delete(&Page{}).Error
	})
}

func (s *Service) UpsertPage(ctx context.Context, accountID, funnelID, path, title string, position int, content datatypes.JSON) (*Page, error) {
	f, err := s.funnels.FindOne(ctx, &Funnel{ID: funnelID})
	if err != nil {
		return nil, err
	}
	if f == nil || f.AccountID != accountID {
		return nil, errutil.NotFound("funnel not found", nil)
	}

	page, err := s.pages.FindOne(ctx, &Page{FunnelID: funnelID, Path: path})
	if err != nil {
		return nil, err
	}

	if page == nil {
		page = &Page{
			ID:       s.node.Generate().String(),
			FunnelID: funnelID,
			Path:     path,
			Title:    title,
			Position: position,
			Content:  content,
		}
		if err := s.pages.Create(ctx, page); err != nil {
			return nil, err
		}
		return page, nil
	}

	if err := s.pages.Update(ctx, page.ID, map[string]any{
		"title":    title,
		"position": position,
		"content":  content,
	}); err != nil {
		return nil, err
	}

	return s.pages.FindOne(ctx, &Page{ID: page.ID})
}
