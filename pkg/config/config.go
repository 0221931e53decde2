package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Server
	Port    string
	AppName string

	// GitHub API
	GitHubBaseURL string
	GitHubToken   string // optional, raises rate limits

	// Groq (AI enrichment)
	GroqBaseURL    string
	GroqAPIKey     string // empty disables enrichment
	GroqModel      string
	EnhanceTimeout int // seconds

	// Database (audit log); empty disables auditing
	DatabaseURL string

	// Frontend
	FrontendURL string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:    envOrDefault("PORT", "8080"),
		AppName: envOrDefault("APP_NAME", "RepoLens"),

		GitHubBaseURL: envOrDefault("GITHUB_API_URL", "https://api.github.com"),
		GitHubToken:   os.Getenv("GITHUB_TOKEN"),

		GroqBaseURL:    envOrDefault("GROQ_API_URL", "https://api.groq.com"),
		GroqAPIKey:     os.Getenv("GROQ_API_KEY"),
		GroqModel:      envOrDefault("GROQ_MODEL", "llama-3.1-8b-instant"),
		EnhanceTimeout: envOrDefaultInt("ENHANCE_TIMEOUT_SECONDS", 30),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		FrontendURL: envOrDefault("FRONTEND_URL", "http://localhost:3000"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return fallback
}
