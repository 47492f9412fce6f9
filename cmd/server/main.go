package main

import (
	"github.com/kgrank/kgrank/internal/server"
	"github.com/kgrank/kgrank/internal/util"
	"github.com/kgrank/kgrank/pkg/logger"
	"github.com/kgrank/kgrank/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
