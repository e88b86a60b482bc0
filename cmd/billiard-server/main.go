package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/akmonengine/billiard"
	"github.com/akmonengine/billiard/config"
	"github.com/akmonengine/billiard/internal/server"
	"github.com/akmonengine/billiard/table"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	tbl := table.Standard()
	if cfg.TableFile != "" {
		var err error
		tbl, err = table.LoadFile(cfg.TableFile)
		if err != nil {
			log.Fatalf("Failed to load table: %v", err)
		}
		log.Printf("Table loaded from %s", cfg.TableFile)
	}

	physics, err := config.LoadPhysics(cfg.PhysicsFile)
	if err != nil {
		log.Fatalf("Failed to load physics: %v", err)
	}
	// The balls are the ones the table was built for
	ballParams := physics.BallParams()
	ballParams.Radius = tbl.Specs.BallRadius
	ballParams.Mass = tbl.Specs.BallMass

	hub := server.NewHub()
	world := billiard.NewWorld(tbl, cfg.BallCount,
		billiard.WithSpeed(cfg.SimSpeed),
		billiard.WithWorkers(cfg.Workers),
		billiard.WithBallParams(ballParams),
		billiard.WithSolver(physics.Contact),
		billiard.WithRenderer(hub),
		billiard.WithLogger(log.New(os.Stderr, "[SIM] ", log.LstdFlags)),
	)
	world.Events.Subscribe(billiard.COLLISION_RESOLVED, hub.OnCollision)

	session := server.NewSession(world, cfg.TickRate)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go hub.Run(ctx)
	go session.Run(ctx)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	server.SetupRoutes(router, session, hub, cfg)

	log.Printf("Starting billiard server on port %s with %d balls (%s integrator)", cfg.Port, cfg.BallCount, ballParams.Integrator)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
