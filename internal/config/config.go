package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Base URL of the remote education API, e.g. http://127.0.0.1:8000
	APIBaseURL string
	// Port the portal listens on
	Port string
	// Secret for the cookie store backing flash notifications
	SessionSecret string
}

func LoadConfig() (*Config, error) {
	// A .env file is optional; real env vars win either way.
	_ = godotenv.Load()

	apiBaseURL := os.Getenv("API_BASE_URL")
	if apiBaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL is not set")
	}
	apiBaseURL = strings.TrimRight(apiBaseURL, "/")

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is not set")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	return &Config{
		APIBaseURL:    apiBaseURL,
		Port:          port,
		SessionSecret: sessionSecret,
	}, nil
}
