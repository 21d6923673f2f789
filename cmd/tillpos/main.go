package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/tillworks/tillpos/internal/observability"
	"github.com/tillworks/tillpos/internal/server"
	"github.com/tillworks/tillpos/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
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
