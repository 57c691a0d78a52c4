package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port           string
	AllowedOrigin  string
	DataFile       string
	DatabaseURL    string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string
}

func Load() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	return Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigin:  getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:5173"),
		DataFile:       getEnv("DATA_FILE", "data/textilreinigung-state.json"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        redisDB,
		RedisKeyPrefix: getEnv("REDIS_KEY_PREFIX", "textilreinigung"),
	}
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
