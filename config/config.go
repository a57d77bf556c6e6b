package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port     string
	Timezone string
	LogLimit int

	SnapshotFile string

	JWTSecret         string
	AdminUsername     string
	AdminPassword     string
	WSPath            string
	RunIterationLimit int

	MediaDir string
}

func Load() *Config {
	return &Config{
		Port:              getEnv("PORT", "8000"),
		Timezone:          getEnv("TIMEZONE", ""),
		LogLimit:          getEnvAsInt("LOG_LIMIT", 1000),
		SnapshotFile:      getEnv("SNAPSHOT_FILE", "./data/show.json"),
		JWTSecret:         getEnv("JWT_SECRET", "change-me-in-production-please"),
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:     getEnv("ADMIN_PASSWORD", "change-me"),
		WSPath:            getEnv("WS_PATH", "/ws"),
		RunIterationLimit: getEnvAsInt("RUN_ITERATION_LIMIT", 0),
		MediaDir:          getEnv("MEDIA_DIR", "./media"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultVal
}
