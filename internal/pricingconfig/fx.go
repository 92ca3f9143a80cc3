package pricingconfig

import (
	"github.com/aulapay/aulapay/internal/pricingconfig/repository"
	"github.com/aulapay/aulapay/internal/pricingconfig/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricingconfig.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
