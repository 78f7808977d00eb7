package config

import (
	"fmt"
	"os"
	"time"
)

// ClientConfig содержит настройки dealctl
type ClientConfig struct {
	BaseURL       string
	Token         string
	Timeout       time.Duration
	DebounceDelay time.Duration
}

// NewClientConfig читает BASE_URL, DEALHUB_TOKEN и DEBOUNCE_DELAY из окружения
func NewClientConfig() (*ClientConfig, error) {
	def := Default()
	cfg := &ClientConfig{
		BaseURL:       def.BaseURL,
		Timeout:       10 * time.Second,
		DebounceDelay: def.DebounceDelay,
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	cfg.Token = os.Getenv("DEALHUB_TOKEN")
	if v := os.Getenv("DEBOUNCE_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("DEBOUNCE_DELAY: %w", err)
		}
		cfg.DebounceDelay = d
	}
	return cfg, nil
}
