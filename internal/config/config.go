package config

import (
	"os"
	"strconv"
)

type Config struct {
	AppPort        string
	DBDSN          string
	JWTSecret      string
	JWTExpiresMin  int
	RedisAddr      string
	RedisPassword  string
	UploadDir      string
	AppBaseURL     string
	GoogleClientID string
	GoogleSecret   string
	GoogleRedirect string
}

func Load() Config {
	expires, _ := strconv.Atoi(get("JWT_EXPIRES_MIN", "10080"))
	return Config{
		AppPort:        get("APP_PORT", "8080"),
		DBDSN:          must("DB_DSN"),
		JWTSecret:      must("JWT_SECRET"),
		JWTExpiresMin:  expires,
		RedisAddr:      get("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  get("REDIS_PASSWORD", ""),
		UploadDir:      get("UPLOAD_DIR", "./uploads"),
		AppBaseURL:     get("APP_BASE_URL", ""),
		GoogleClientID: get("GOOGLE_CLIENT_ID", ""),
		GoogleSecret:   get("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirect: get("GOOGLE_REDIRECT_URL", ""),
	}
}

func get(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
