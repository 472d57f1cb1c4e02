package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Debug bool
	Port  int

	SadoURL  string // overrides the catalog URL of the date addressed source
	StaffURL string // overrides the catalog URL of the weekday addressed source

	UserAgent      string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

func NewConfig() *Config {
	return &Config{
		Debug: getBoolEnvDefault("DEBUG", false),
		Port:  getIntEnvDefault("PORT", 8080),

		SadoURL:  getStringEnvDefault("SADO_URL", ""),
		StaffURL: getStringEnvDefault("STAFF_URL", ""),

		UserAgent:      getStringEnvDefault("USER_AGENT", "Mozilla/5.0"),
		ConnectTimeout: getDurationEnvDefault("FETCH_CONNECT_TIMEOUT", 5*time.Second),
		ReadTimeout:    getDurationEnvDefault("FETCH_READ_TIMEOUT", 20*time.Second),
	}
}

func getBoolEnvDefault(key string, defaultValue bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}

	fmt.Printf("Using default value for %s\n", key)
	return defaultValue
}

func getStringEnvDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	fmt.Printf("Using default value for %s\n", key)
	return defaultValue
}

func getIntEnvDefault(key string, defaultValue int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}

	fmt.Printf("Using default value for %s\n", key)
	return defaultValue
}

// getDurationEnvDefault accepts Go durations ("5s", "1m30s") or plain seconds.
func getDurationEnvDefault(key string, defaultValue time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
		if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}

	fmt.Printf("Using default value for %s\n", key)
	return defaultValue
}
