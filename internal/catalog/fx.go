package catalog

import (
	"github.com/railzwaylabs/pricecalc/internal/catalog/cache"
	"github.com/railzwaylabs/pricecalc/internal/catalog/repository"
	"github.com/railzwaylabs/pricecalc/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(cache.New),
	fx.Provide(service.New),
)
