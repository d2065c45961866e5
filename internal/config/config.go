package config

import (
	"os"
	"strconv"
)

type Config struct {
	HTTPAddr  string
	MySQLDSN  string
	RedisAddr string
	EthRPCURL string
	GCSBucket string

	// EnforceOnePerBuyer rejects a second purchase for the same
	// (event, buyer) pair.
	EnforceOnePerBuyer bool

	LogFormat string // "json" or "text"
}

func Load() Config {
	return Config{
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		MySQLDSN:           getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/zora?parseTime=true"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		EthRPCURL:          getEnv("ETH_RPC_URL", ""),
		GCSBucket:          getEnv("GCS_BUCKET", ""),
		EnforceOnePerBuyer: getBool("ENFORCE_ONE_PER_BUYER", false),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
