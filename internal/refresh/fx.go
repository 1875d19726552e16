package refresh

import (
	"github.com/railzwaylabs/pricecalc/internal/refresh/gate"
	"github.com/railzwaylabs/pricecalc/internal/refresh/notifier"
	"github.com/railzwaylabs/pricecalc/internal/refresh/service"
	"go.uber.org/fx"
)

var Module = fx.Module("refresh.service",
	fx.Provide(gate.New),
	fx.Provide(notifier.New),
	fx.Provide(service.New),
)
