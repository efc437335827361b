package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Конфигурация процесса. Источник - переменные окружения, .env подхватывается
// для локальной разработки.
type Config struct {
	AppPort   string
	LogLevel  string
	LogJSON   bool
	JWTSecret string

	// пустая строка отключает архив результатов
	DatabaseURL string
	// пустая строка отключает rate limiter
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AllowedOrigin string

	// геймплейные параметры; величины наград - настройка, не константа
	BoardSize       int
	MinPlayers      int
	MaxPlayers      int
	SessionDuration time.Duration
	MaxTurns        int
	RewardAttribute int
	RewardCellBonus int
	GuessPenalty    int
	SurplusClues    int
	ClueBudget      int
}

func Load() *Config {
	// .env опционален, в проде переменные приходят из окружения
	_ = godotenv.Load()

	return &Config{
		AppPort:   getEnv("APP_PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogJSON:   getEnv("LOG_FORMAT", "") == "json",
		JWTSecret: getEnv("JWT_SECRET", ""),

		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AllowedOrigin: getEnv("ALLOWED_ORIGIN", ""),

		BoardSize:       getEnvInt("BOARD_SIZE", 4),
		MinPlayers:      getEnvInt("MIN_PLAYERS", 2),
		MaxPlayers:      getEnvInt("MAX_PLAYERS", 4),
		SessionDuration: time.Duration(getEnvInt("SESSION_DURATION_SECONDS", 900)) * time.Second,
		MaxTurns:        getEnvInt("MAX_TURNS", 50),
		RewardAttribute: getEnvInt("REWARD_ATTRIBUTE", 10),
		RewardCellBonus: getEnvInt("REWARD_CELL_BONUS", 5),
		GuessPenalty:    getEnvInt("GUESS_PENALTY", 5),
		SurplusClues:    getEnvInt("SURPLUS_CLUES", 6),
		ClueBudget:      getEnvInt("CLUE_BUDGET", 0),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
