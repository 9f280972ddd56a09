package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/geocoder89/socialhub/internal/config"
	"github.com/geocoder89/socialhub/internal/db"
	"github.com/geocoder89/socialhub/internal/observability"
)

// usage: migrate [-steps N] up|down|version
func main() {
	steps := flag.Int("steps", 1, "number of migrations to roll back with down")
	flag.Parse()

	cfg := config.LoadUnvalidated()
	log := observability.NewLogger("socialhub-migrate", cfg.Env)

	var err error

	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "up"
	}

	switch cmd {
	case "up":
		err = db.MigrateUp(cfg.DBURL)
	case "down":
		err = db.MigrateDown(cfg.DBURL, *steps)
	case "version":
		var (
			v     uint
			dirty bool
		)
		v, dirty, err = db.Version(cfg.DBURL)
		if err == nil {
			log.Info("schema version", "version", v, "dirty", dirty)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (want up, down or version)\n", cmd)
		os.Exit(2)
	}

	if err != nil {
		log.Error("migrate failed", "cmd", cmd, "err", err)
		os.Exit(1)
	}

	log.Info("migrate done", "cmd", cmd)
}
