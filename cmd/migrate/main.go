package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/jhoicas/stockflow-api/internal/infrastructure/migration"
	"github.com/jhoicas/stockflow-api/pkg/config"
	"github.com/jhoicas/stockflow-api/pkg/logger"
)

func main() {
	flag.Usage = printUsage
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	m, err := migration.New(cfg.DB.ConnectionString(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("no se pudo inicializar migrate")
	}
	defer func() { _ = m.Close() }()

	switch args[0] {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		err = withInt(args, m.Steps)
	case "force":
		err = withInt(args, m.Force)
	case "version":
		var (
			v     uint
			dirty bool
		)
		v, dirty, err = m.Version()
		if err == nil {
			log.Info().Uint("version", v).Bool("dirty", dirty).Msg("versión actual")
		}
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", args[0]).Msg("migración fallida")
	}
}

func withInt(args []string, fn func(int) error) error {
	if len(args) < 2 {
		return fmt.Errorf("%s requiere un número", args[0])
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("%s: número inválido %q", args[0], args[1])
	}
	return fn(n)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `uso: migrate <comando>

  up            aplica todas las migraciones pendientes
  down          revierte todas las migraciones
  steps N       aplica N pasos (negativo = revertir)
  version       muestra la versión actual
  force V       fija la versión sin ejecutar scripts`)
}
