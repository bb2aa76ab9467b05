package achievement

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("achievement",
	fx.Provide(DefaultConfig),
	fx.Provide(NewLogChecker),
	fx.Provide(NewWorker),
	fx.Invoke(runWorker),
)

func runWorker(lc fx.Lifecycle, worker *Worker) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go worker.RunForever(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
