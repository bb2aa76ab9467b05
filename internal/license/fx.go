package license

import (
	"go.uber.org/fx"

	"github.com/starter-spark/kitclaim/internal/events"
	"github.com/starter-spark/kitclaim/internal/license/repository"
	"github.com/starter-spark/kitclaim/internal/license/service"
)

var Module = fx.Module("license.service",
	fx.Provide(events.NewOutbox),
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
