package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/nutriplan/nutriplan-server/plannerservice"
)

func main() {
	// Optional driver override (postgres | sqlite)
	dbDriver := flag.String("db-driver", "", "Override PLANNER_SERVER_DB_DRIVER (postgres, sqlite)")
	flag.Parse()
	if *dbDriver != "" {
		os.Setenv("PLANNER_SERVER_DB_DRIVER", *dbDriver)
	}

	if err := plannerservice.Run(); err != nil {
		log.Error().Err(err).Msg("planner-service exited with error")
		os.Exit(1)
	}
}
