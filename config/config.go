package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Server
	Port string

	// Table and physics files; empty means the standard table and the default constants
	TableFile   string
	PhysicsFile string

	// Simulation
	TickRate  int     // frames per second
	SimSpeed  float64 // simulated seconds per wall second
	Workers   int
	BallCount int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Server
		Port: getEnv("APP_PORT", "8080"),

		TableFile:   getEnv("TABLE_FILE", ""),
		PhysicsFile: getEnv("PHYSICS_FILE", ""),

		// Simulation
		TickRate:  getEnvInt("TICK_RATE", 60),
		SimSpeed:  getEnvFloat("SIM_SPEED", 1),
		Workers:   getEnvInt("SIM_WORKERS", 1),
		BallCount: getEnvInt("BALL_COUNT", 16),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
