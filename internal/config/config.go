package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// Backend selection
	DataBackend string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Anthropic chat
	AnthropicModel     string
	AnthropicMaxTokens int64
	ChatEnabled        bool

	// Google Sheets export
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Refresh worker
	RefreshPeriods           []string
	RefreshReconnectAttempts int
	RefreshStopTimeout       time.Duration
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/bilancio.db"),
		DataBackend:  getEnv("DATA_BACKEND", "memory"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "bilancio"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "report_refresh"),

		AnthropicModel:     getEnv("ANTHROPIC_MODEL", ""),
		AnthropicMaxTokens: int64(getEnvInt("ANTHROPIC_MAX_TOKENS", 1024)),
		ChatEnabled:        os.Getenv("ANTHROPIC_API_KEY") != "",

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Reports"),

		RefreshPeriods:           splitList(getEnv("REFRESH_PERIODS", "month")),
		RefreshReconnectAttempts: getEnvInt("REFRESH_RECONNECT_ATTEMPTS", 10),
		RefreshStopTimeout:       getEnvDuration("REFRESH_STOP_TIMEOUT", 10*time.Second),
	}
}

// Validate checks the configuration and returns a combined error listing
// every problem found.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}

		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.AnthropicMaxTokens < 1 || c.AnthropicMaxTokens > 64000 {
		errors = append(errors, fmt.Sprintf("invalid Anthropic max tokens %d: must be between 1 and 64000", c.AnthropicMaxTokens))
	}

	validPeriods := map[string]bool{"week": true, "month": true, "quarter": true, "year": true}
	for _, p := range c.RefreshPeriods {
		if !validPeriods[p] {
			errors = append(errors, fmt.Sprintf("invalid refresh period '%s': must be week, month, quarter, or year", p))
		}
	}
	if len(c.RefreshPeriods) == 0 {
		errors = append(errors, "refresh periods cannot be empty")
	}

	if c.RefreshReconnectAttempts < 1 {
		errors = append(errors, fmt.Sprintf("invalid reconnect attempts %d: must be at least 1", c.RefreshReconnectAttempts))
	}

	if c.RefreshStopTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid refresh stop timeout %v: must be at least 1 second", c.RefreshStopTimeout))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
