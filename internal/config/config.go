package config

import (
	"crowsnest/pkg/config"
)

// Config stores environment configuration for Crow's Nest. Every
// credential is optional; missing ones degrade their feature instead of
// blocking startup.
type Config struct {
	Port        string
	DatabaseURL string

	RapidAPIKey string
	SerpAPIKey  string

	TwitterAPIURL  string
	RedditAPIURL   string
	NewsAPIURL     string
	FacebookAPIURL string
	FacebookHost   string

	LLMProvider string
	LLMModel    string
	LLMAPIKey   string
	LLMAPIURL   string
}

// LoadConfig loads the Crow's Nest configuration from environment
// variables.
func LoadConfig() Config {
	return Config{
		Port:        config.GetEnv("PORT", "3001"),
		DatabaseURL: config.GetEnv("DATABASE_URL", ""),

		RapidAPIKey: config.GetEnv("RAPIDAPI_KEY", ""),
		SerpAPIKey:  config.GetEnv("SERPAPI_KEY", ""),

		TwitterAPIURL:  config.GetEnv("RAPIDAPI_TWITTER_URL", ""),
		RedditAPIURL:   config.GetEnv("RAPIDAPI_REDDIT_URL", ""),
		NewsAPIURL:     config.GetEnv("SERPAPI_NEWS_URL", ""),
		FacebookAPIURL: config.GetEnv("RAPIDAPI_FB_SEARCH_URL", ""),
		FacebookHost:   config.GetEnv("RAPIDAPI_FB_SEARCH_HOST", ""),

		LLMProvider: config.GetEnv("LLM_PROVIDER", "openai"),
		LLMModel:    config.GetEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMAPIKey:   config.GetEnv("LLM_API_KEY", config.GetEnv("OPENAI_API_KEY", "")),
		LLMAPIURL:   config.GetEnv("LLM_API_URL", ""),
	}
}
