package config

import (
	"github.com/joho/godotenv"
)

// loadDevelopmentEnv loads a local .env file into the process environment so
// the env provider picks it up. A missing file is fine.
func loadDevelopmentEnv() {
	_ = godotenv.Load()
}
