package product

import (
	"go.uber.org/fx"

	"github.com/starter-spark/kitclaim/internal/product/repository"
	"github.com/starter-spark/kitclaim/internal/product/service"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
