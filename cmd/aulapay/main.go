package main

import (
	"github.com/aulapay/aulapay/internal/clock"
	"github.com/aulapay/aulapay/internal/config"
	"github.com/aulapay/aulapay/internal/migration"
	"github.com/aulapay/aulapay/internal/observability"
	"github.com/aulapay/aulapay/internal/server"
	"github.com/aulapay/aulapay/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
