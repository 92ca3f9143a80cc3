package enrollment

import (
	"github.com/aulapay/aulapay/internal/enrollment/repository"
	"github.com/aulapay/aulapay/internal/enrollment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("enrollment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
