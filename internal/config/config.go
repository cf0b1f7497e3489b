package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppConfig     *AppConfig
	BrowserConfig *BrowserConfig
	PagesConfig   *PagesConfig
	HealingConfig *HealingConfig
}

type AppConfig struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type BrowserConfig struct {
	Headless    bool   `envconfig:"BROWSER_HEADLESS" default:"true"`
	SlowMo      int    `envconfig:"BROWSER_SLOW_MO" default:"0"`
	Timeout     int    `envconfig:"BROWSER_TIMEOUT" default:"30000"`
	WaitTimeout int    `envconfig:"BROWSER_WAIT_TIMEOUT" default:"10000"`
	UserDataDir string `envconfig:"BROWSER_USER_DATA_DIR" default:""`
	BaseURL     string `envconfig:"BROWSER_BASE_URL" default:""`
}

type PagesConfig struct {
	PagesDir    string `envconfig:"PAGES_DIR" default:"./pages"`
	TestDataDir string `envconfig:"TEST_DATA_DIR" default:"./testdata"`
}

type HealingConfig struct {
	Enabled       bool `envconfig:"HEALING_ENABLED" default:"true"`
	RetryAttempts int  `envconfig:"HEALING_RETRY_ATTEMPTS" default:"2"`
	RetryDelayMs  int  `envconfig:"HEALING_RETRY_DELAY_MS" default:"500"`
	MaxCandidates int  `envconfig:"HEALING_MAX_CANDIDATES" default:"5"`
}

func GetConfig() (*Config, error) {
	_ = godotenv.Load()

	var conf Config

	if err := envconfig.Process("", &conf); err != nil {
		return nil, fmt.Errorf("read config from env vars: %w", err)
	}

	return &conf, nil
}
