package config

import (
	"os"

	"github.com/joho/godotenv"
)

// EnvLogLevel overrides the configured log level when set
// (debug|info|warn|error).
const EnvLogLevel = "SCHEMABUILD_LOG_LEVEL"

// loadEnvFile loads .env from the working directory when present so that
// ${VAR} references in the config file resolve.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load()
}
