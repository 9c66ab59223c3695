// Package config loads process configuration from the environment: a
// .env file is loaded once at startup (if present) and every setting
// falls back to a documented default so the engine runs without any
// external configuration service.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config collects every tunable the core components read. Components
// never call os.Getenv directly; they take a *Config (or a narrower
// sub-struct) so tests can construct one inline.
type Config struct {
	DatabaseURL string

	MinSamplesGlobal            int
	MinSamplesIndustry          int
	TrainingWindowDays          int
	SmoothingAlpha              float64
	IndustrySimilarityThreshold float64
	MinTrainingSamplesScoring   int

	WeightTrainerSchedule   string // cron expression with a leading seconds field, default "0 0 1 * * *"
	IndustryTrainerSchedule string // cron expression, default weekly
	ReconcilerSchedule      string

	RequestDeadline      time.Duration
	TrainingDeadline     time.Duration
	MaxUpstreamRetries   int
	CircuitCoolingPeriod time.Duration

	DefaultHorizonDays int
	StaleInputsHorizon time.Duration
}

// Load reads a .env file from the working directory if present, then
// builds a Config from environment variables, falling back to defaults
// for anything unset. A missing .env file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),

		MinSamplesGlobal:   envInt("MIN_SAMPLES_GLOBAL", 100),
		MinSamplesIndustry: envInt("MIN_SAMPLES_INDUSTRY", 30),
		TrainingWindowDays: envInt("TRAINING_WINDOW_DAYS", 180),
		SmoothingAlpha:     envFloat("SMOOTHING_ALPHA", 0.3),
		IndustrySimilarityThreshold: envFloat("INDUSTRY_SIMILARITY_THRESHOLD", 0.70),
		MinTrainingSamplesScoring:   envInt("MIN_TRAINING_SAMPLES_SCORING", 100),

		WeightTrainerSchedule:   envStr("WEIGHT_TRAINER_SCHEDULE", "0 0 1 * * *"),
		IndustryTrainerSchedule: envStr("INDUSTRY_TRAINER_SCHEDULE", "0 0 2 * * 0"),
		ReconcilerSchedule:      envStr("RECONCILER_SCHEDULE", "0 30 0 * * *"),

		RequestDeadline:      envDuration("REQUEST_DEADLINE", 30*time.Second),
		TrainingDeadline:     envDuration("TRAINING_DEADLINE", 15*time.Minute),
		MaxUpstreamRetries:   envInt("MAX_UPSTREAM_RETRIES", 2),
		CircuitCoolingPeriod: envDuration("CIRCUIT_COOLING_PERIOD", 60*time.Second),

		DefaultHorizonDays: envInt("DEFAULT_HORIZON_DAYS", 90),
		StaleInputsHorizon: envDuration("STALE_INPUTS_HORIZON", 400*24*time.Hour),
	}
	return cfg, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
