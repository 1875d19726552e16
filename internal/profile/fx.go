package profile

import (
	"github.com/railzwaylabs/pricecalc/internal/profile/repository"
	"github.com/railzwaylabs/pricecalc/internal/profile/service"
	"go.uber.org/fx"
)

var Module = fx.Module("profile.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
