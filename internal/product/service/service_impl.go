package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/starter-spark/kitclaim/internal/cache"
	productdomain "github.com/starter-spark/kitclaim/internal/product/domain"
)

const nameCacheTTL = 5 * time.Minute

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo productdomain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo productdomain.Repository

	names cache.Cache[snowflake.ID, string]
}

func NewService(p Params) productdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("product.service"),
		repo:  p.Repo,
		names: cache.NewTTLCache[snowflake.ID, string](nameCacheTTL),
	}
}

// GetName resolves a product display name, serving hot lookups from the
// in-memory cache. Names are effectively immutable after launch, so a short
// TTL is only there to pick up renames eventually.
func (s *Service) GetName(ctx context.Context, id snowflake.ID) (string, error) {
	if name, ok := s.names.Get(id); ok {
		return name, nil
	}

	product, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return "", err
	}
	if product == nil {
		return "", productdomain.ErrNotFound
	}

	s.names.Set(id, product.Name)
	return product.Name, nil
}
