package quote

import (
	"github.com/railzwaylabs/pricecalc/internal/quote/repository"
	"github.com/railzwaylabs/pricecalc/internal/quote/service"
	"go.uber.org/fx"
)

var Module = fx.Module("quote.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
