package kit

import (
	"go.uber.org/fx"

	"github.com/starter-spark/kitclaim/internal/kit/service"
)

var Module = fx.Module("kit.service",
	fx.Provide(service.NewService),
)
