package service

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/starter-spark/kitclaim/internal/identity"
	kitdomain "github.com/starter-spark/kitclaim/internal/kit/domain"
	licensedomain "github.com/starter-spark/kitclaim/internal/license/domain"
	productdomain "github.com/starter-spark/kitclaim/internal/product/domain"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	LicenseRepo licensedomain.Repository
	ProductSvc  productdomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	licenseRepo licensedomain.Repository
	productSvc  productdomain.Service
}

func NewService(p Params) kitdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("kit.service"),
		licenseRepo: p.LicenseRepo,
		productSvc:  p.ProductSvc,
	}
}

// ListKits folds the caller's claimed licenses into deduplicated kit view
// models. A catalog miss leaves the name blank rather than failing the read.
func (s *Service) ListKits(ctx context.Context) ([]kitdomain.Kit, error) {
	ident, ok := identity.FromContext(ctx)
	if !ok {
		return nil, licensedomain.ErrInvalidActor
	}

	licenses, err := s.licenseRepo.ListClaimedByOwner(ctx, s.db, ident.UserID)
	if err != nil {
		return nil, err
	}

	kits := kitdomain.Aggregate(licenses)
	for i := range kits {
		name, err := s.productSvc.GetName(ctx, kits[i].ProductID)
		if err != nil {
			s.log.Warn("product name lookup failed",
				zap.String("product_id", kits[i].ProductID.String()),
				zap.Error(err),
			)
			continue
		}
		kits[i].ProductName = name
	}
	return kits, nil
}
