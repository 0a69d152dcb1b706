package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server Configuration
	Port string
	Env  string

	// Storage Configuration
	DatabaseURL string
	RedisURL    string

	// Cache Configuration
	CacheTTL           time.Duration
	CacheSweepSchedule string

	// Fetch Configuration
	FetchTimeout              time.Duration
	CodeChefTimeoutMultiplier int
	CodeChefPreDelay          time.Duration
	UserAgent                 string
	Referer                   string
	AcceptLanguage            string

	// Host rate limits (minimum spacing between two requests to one host)
	DefaultHostInterval  time.Duration
	CodeChefHostInterval time.Duration

	// Endpoints
	LeetCodeGraphQLURL   string
	CodeChefBaseURL      string
	GeeksForGeeksBaseURL string
	HackerRankBaseURL    string

	// LeetCode client-side Total_Score weights
	LeetCodeEasyWeight    int
	LeetCodeMediumWeight  int
	LeetCodeHardWeight    int
	LeetCodeContestWeight int

	// Retry-and-demote controller
	RetryAttempts int
	RetryDelay    time.Duration

	// Ranking
	RankPersistChunk    int
	RankingDefaultLimit int
	RankingMaxLimit     int

	// Scheduler
	EnableScheduler bool
	BatchSchedule   string
}

func Load() *Config {
	return &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "production"),

		// Storage
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		// Cache
		CacheTTL:           time.Duration(getIntEnv("CACHE_TTL_SECONDS", 86400)) * time.Second,
		CacheSweepSchedule: getEnv("CACHE_SWEEP_SCHEDULE", "@hourly"),

		// Fetch
		FetchTimeout:              getDurationEnv("FETCH_TIMEOUT", 15*time.Second),
		CodeChefTimeoutMultiplier: getIntEnv("CODECHEF_TIMEOUT_MULTIPLIER", 2),
		CodeChefPreDelay:          getDurationEnv("CODECHEF_PRE_REQUEST_DELAY", time.Second),
		UserAgent: getEnv("SCRAPER_USER_AGENT",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"),
		Referer:        getEnv("SCRAPER_REFERER", "https://www.google.com/"),
		AcceptLanguage: getEnv("SCRAPER_ACCEPT_LANGUAGE", "en-US,en;q=0.9"),

		DefaultHostInterval:  getDurationEnv("DEFAULT_HOST_INTERVAL", 3*time.Second),
		CodeChefHostInterval: getDurationEnv("CODECHEF_HOST_INTERVAL", 5*time.Second),

		// Endpoints
		LeetCodeGraphQLURL:   getEnv("LEETCODE_GRAPHQL_URL", "https://leetcode.com/graphql"),
		CodeChefBaseURL:      getEnv("CODECHEF_BASE_URL", "https://www.codechef.com"),
		GeeksForGeeksBaseURL: getEnv("GFG_BASE_URL", "https://www.geeksforgeeks.org"),
		HackerRankBaseURL:    getEnv("HACKERRANK_BASE_URL", "https://www.hackerrank.com"),

		// LeetCode weights
		LeetCodeEasyWeight:    getIntEnv("LEETCODE_EASY_WEIGHT", 1),
		LeetCodeMediumWeight:  getIntEnv("LEETCODE_MEDIUM_WEIGHT", 3),
		LeetCodeHardWeight:    getIntEnv("LEETCODE_HARD_WEIGHT", 5),
		LeetCodeContestWeight: getIntEnv("LEETCODE_CONTEST_WEIGHT", 5),

		// Retry
		RetryAttempts: getIntEnv("RETRY_ATTEMPTS", 5),
		RetryDelay:    getDurationEnv("RETRY_DELAY", time.Second),

		// Ranking
		RankPersistChunk:    getIntEnv("RANK_PERSIST_CHUNK", 100),
		RankingDefaultLimit: getIntEnv("RANKING_DEFAULT_LIMIT", 10),
		RankingMaxLimit:     getIntEnv("RANKING_MAX_LIMIT", 100),

		// Scheduler
		EnableScheduler: getBoolEnv("ENABLE_SCHEDULER", true),
		BatchSchedule:   getEnv("BATCH_SCHEDULE", "0 2 * * 0"),
	}
}

// CodeChefTimeout is the fetch timeout applied to CodeChef requests
func (c *Config) CodeChefTimeout() time.Duration {
	if c.CodeChefTimeoutMultiplier < 1 {
		return c.FetchTimeout
	}
	return c.FetchTimeout * time.Duration(c.CodeChefTimeoutMultiplier)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fallback
		}
		return boolVal
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return fallback
		}
		return intVal
	}
	return fallback
}

// getDurationEnv accepts Go durations ("1500ms", "3s") or bare seconds
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
