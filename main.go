package main

import (
	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/auth"
	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/catalog"
	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/config"
	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/logger"
	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/monitor"
	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/persistence"
	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/server"
)

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := persistence.NewGormPostgreSQL(
		cfg.Database.Postgres.Host,
		cfg.Database.Postgres.Port,
		cfg.Database.Postgres.User,
		cfg.Database.Postgres.Password,
		cfg.Database.Postgres.DBName,
	)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Log.Info("Database connection successful.")

	// Question catalog shares the database connection pool
	cat, err := catalog.NewGormCatalog(db.DB())
	if err != nil {
		logger.Log.Fatalf("Failed to initialize question catalog: %v", err)
	}

	authn := auth.NewHMACAuthenticator(cfg.Auth.Secret)

	mon := monitor.NewMonitor("quizserver")
	if cfg.Server.MonitorAddress != "" {
		mon.StartServer(cfg.Server.MonitorAddress)
	}

	// Initialize game server
	gameServer := server.NewGameServer(cfg, db, cat, authn, mon)

	// Start server
	logger.Log.Infof("Starting quiz server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
