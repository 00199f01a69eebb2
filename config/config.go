package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerPort string `yaml:"server.port"`

	// YouTube Data API configuration
	YouTubeAPIKey            string  `yaml:"youtube.api_key"` // Bootstrap key, the stored credential takes precedence
	YouTubeBaseURL           string  `yaml:"youtube.base_url"`
	YouTubeRegionCode        string  `yaml:"youtube.region_code"`
	YouTubeRequestsPerSecond float64 `yaml:"youtube.requests_per_second"`

	// Gemini configuration
	GeminiAPIKey string `yaml:"gemini.api_key"`
	GeminiModel  string `yaml:"gemini.model"`

	// Cron schedule for trending refresh, empty or "off" disables it
	CronSchedule string `yaml:"cron.schedule"`

	// Database configuration
	DatabaseURL string `yaml:"database.url"`

	// Performance tuning
	HTTPClientTimeout    time.Duration `yaml:"-"`
	HTTPClientTimeoutStr string        `yaml:"performance.http_client_timeout"`
	MaxIdleConns         int           `yaml:"performance.max_idle_conns"`
	MaxConnsPerHost      int           `yaml:"performance.max_conns_per_host"`

	// Logging configuration
	LogDirectory  string `yaml:"logging.dir"`
	LogOutputFile string `yaml:"logging.output_file"`
	LogErrorFile  string `yaml:"logging.error_file"`
	LogLevel      string `yaml:"logging.level"`
}

// configFile represents the YAML structure
type configFile struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	YouTube struct {
		APIKey            string  `yaml:"api_key"`
		BaseURL           string  `yaml:"base_url"`
		RegionCode        string  `yaml:"region_code"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
	} `yaml:"youtube"`
	Gemini struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"gemini"`
	Cron struct {
		Schedule string `yaml:"schedule"`
	} `yaml:"cron"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Performance struct {
		HTTPClientTimeout string `yaml:"http_client_timeout"`
		MaxIdleConns      int    `yaml:"max_idle_conns"`
		MaxConnsPerHost   int    `yaml:"max_conns_per_host"`
	} `yaml:"performance"`
	Logging struct {
		Directory  string `yaml:"dir"`
		OutputFile string `yaml:"output_file"`
		ErrorFile  string `yaml:"error_file"`
		Level      string `yaml:"level"`
	} `yaml:"logging"`
}

const (
	defaultServerPort        = "8080"
	defaultYouTubeBaseURL    = "https://www.googleapis.com/youtube/v3"
	defaultRegionCode        = "KR"
	defaultRequestsPerSecond = 5
	defaultGeminiModel       = "gemini-2.5-pro"
	defaultDatabaseURL       = "sqlite3:./data.db"
	defaultHTTPClientTimeout = 30 * time.Second
)

// Manager handles configuration loading and saving
type Manager struct {
	mu         sync.RWMutex
	config     *Config
	configPath string
	// secrets holds the API keys as stored in the file, without env overrides
	secrets fileSecrets
}

type fileSecrets struct {
	youTubeAPIKey string
	geminiAPIKey  string
}

// NewManager creates a new configuration manager
func NewManager(configPath string) *Manager {
	if configPath == "" {
		configPath = "config.yaml"
	}
	return &Manager{
		configPath: configPath,
	}
}

// Path returns the file the manager reads and writes
func (m *Manager) Path() string {
	return m.configPath
}

// Load reads configuration from YAML file
func (m *Manager) Load() (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		// If file doesn't exist, create default config
		if os.IsNotExist(err) {
			return m.createDefaultConfig()
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfgFile configFile
	if err := yaml.Unmarshal(data, &cfgFile); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg := &Config{
		ServerPort:               cfgFile.Server.Port,
		YouTubeAPIKey:            cfgFile.YouTube.APIKey,
		YouTubeBaseURL:           cfgFile.YouTube.BaseURL,
		YouTubeRegionCode:        cfgFile.YouTube.RegionCode,
		YouTubeRequestsPerSecond: cfgFile.YouTube.RequestsPerSecond,
		GeminiAPIKey:             cfgFile.Gemini.APIKey,
		GeminiModel:              cfgFile.Gemini.Model,
		CronSchedule:             cfgFile.Cron.Schedule,
		DatabaseURL:              cfgFile.Database.URL,
		HTTPClientTimeoutStr:     cfgFile.Performance.HTTPClientTimeout,
		MaxIdleConns:             cfgFile.Performance.MaxIdleConns,
		MaxConnsPerHost:          cfgFile.Performance.MaxConnsPerHost,
		LogDirectory:             cfgFile.Logging.Directory,
		LogOutputFile:            cfgFile.Logging.OutputFile,
		LogErrorFile:             cfgFile.Logging.ErrorFile,
		LogLevel:                 cfgFile.Logging.Level,
	}

	applyDefaults(cfg)
	applyEnv(cfg)

	m.config = cfg
	m.secrets = fileSecrets{
		youTubeAPIKey: cfgFile.YouTube.APIKey,
		geminiAPIKey:  cfgFile.Gemini.APIKey,
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.ServerPort == "" {
		cfg.ServerPort = defaultServerPort
	}
	if cfg.YouTubeBaseURL == "" {
		cfg.YouTubeBaseURL = defaultYouTubeBaseURL
	}
	if cfg.YouTubeRegionCode == "" {
		cfg.YouTubeRegionCode = defaultRegionCode
	}
	if cfg.YouTubeRequestsPerSecond <= 0 {
		cfg.YouTubeRequestsPerSecond = defaultRequestsPerSecond
	}
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = defaultGeminiModel
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = defaultDatabaseURL
	}
	if cfg.LogDirectory == "" {
		cfg.LogDirectory = "./logs"
	}
	if cfg.LogOutputFile == "" {
		cfg.LogOutputFile = "app.log"
	}
	if cfg.LogErrorFile == "" {
		cfg.LogErrorFile = "app.error.log"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.HTTPClientTimeout = defaultHTTPClientTimeout
	if cfg.HTTPClientTimeoutStr != "" {
		if d, err := time.ParseDuration(cfg.HTTPClientTimeoutStr); err == nil {
			cfg.HTTPClientTimeout = d
		}
	}

	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 100
	}
	if cfg.MaxConnsPerHost == 0 {
		cfg.MaxConnsPerHost = 20
	}
}

// applyEnv lets secrets come from the environment instead of the file
func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("YOUTUBE_API_KEY")); v != "" {
		cfg.YouTubeAPIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); v != "" {
		cfg.GeminiAPIKey = v
	}
}

// saveUnlocked persists config assuming caller already holds the write lock.
// API keys come from secrets, so values injected from the environment never reach the file.
func (m *Manager) saveUnlocked(cfg *Config, secrets fileSecrets) error {
	var cfgFile configFile
	cfgFile.Server.Port = cfg.ServerPort
	cfgFile.YouTube.APIKey = secrets.youTubeAPIKey
	cfgFile.YouTube.BaseURL = cfg.YouTubeBaseURL
	cfgFile.YouTube.RegionCode = cfg.YouTubeRegionCode
	cfgFile.YouTube.RequestsPerSecond = cfg.YouTubeRequestsPerSecond
	cfgFile.Gemini.APIKey = secrets.geminiAPIKey
	cfgFile.Gemini.Model = cfg.GeminiModel
	cfgFile.Cron.Schedule = cfg.CronSchedule
	cfgFile.Database.URL = cfg.DatabaseURL
	cfgFile.Performance.HTTPClientTimeout = cfg.HTTPClientTimeout.String()
	cfgFile.Performance.MaxIdleConns = cfg.MaxIdleConns
	cfgFile.Performance.MaxConnsPerHost = cfg.MaxConnsPerHost
	cfgFile.Logging.Directory = cfg.LogDirectory
	cfgFile.Logging.OutputFile = cfg.LogOutputFile
	cfgFile.Logging.ErrorFile = cfg.LogErrorFile
	cfgFile.Logging.Level = cfg.LogLevel

	data, err := yaml.Marshal(&cfgFile)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	// Secrets may live in this file
	if err := renameio.WriteFile(m.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.config = cfg
	m.secrets = secrets
	return nil
}

// Get returns the current configuration (thread-safe)
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Update updates specific configuration fields and saves to file
func (m *Manager) Update(updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.config == nil {
		return fmt.Errorf("config not loaded, call Load() first")
	}

	next := *m.config
	secrets := m.secrets
	for key, value := range updates {
		if err := applyUpdate(&next, key, value); err != nil {
			return err
		}
		switch key {
		case "youtube.api_key":
			secrets.youTubeAPIKey = next.YouTubeAPIKey
		case "gemini.api_key":
			secrets.geminiAPIKey = next.GeminiAPIKey
		}
	}

	// Environment keeps priority in memory
	applyEnv(&next)
	return m.saveUnlocked(&next, secrets)
}

func applyUpdate(cfg *Config, key string, value interface{}) error {
	str := func() (string, error) {
		s, ok := value.(string)
		if !ok {
			return "", fmt.Errorf("config key %s expects a string, got %T", key, value)
		}
		return s, nil
	}
	num := func() (int, error) {
		switch v := value.(type) {
		case int:
			return v, nil
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return 0, fmt.Errorf("config key %s expects an int: %w", key, err)
			}
			return n, nil
		}
		return 0, fmt.Errorf("config key %s expects an int, got %T", key, value)
	}

	var err error
	switch key {
	case "server.port":
		cfg.ServerPort, err = str()
	case "youtube.api_key":
		cfg.YouTubeAPIKey, err = str()
	case "youtube.base_url":
		cfg.YouTubeBaseURL, err = str()
	case "youtube.region_code":
		cfg.YouTubeRegionCode, err = str()
	case "youtube.requests_per_second":
		switch v := value.(type) {
		case float64:
			cfg.YouTubeRequestsPerSecond = v
		case int:
			cfg.YouTubeRequestsPerSecond = float64(v)
		case string:
			var f float64
			if f, err = strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
				err = fmt.Errorf("config key %s expects a number: %w", key, err)
			} else {
				cfg.YouTubeRequestsPerSecond = f
			}
		default:
			err = fmt.Errorf("config key %s expects a number, got %T", key, value)
		}
	case "gemini.api_key":
		cfg.GeminiAPIKey, err = str()
	case "gemini.model":
		cfg.GeminiModel, err = str()
	case "cron.schedule":
		cfg.CronSchedule, err = str()
	case "database.url":
		cfg.DatabaseURL, err = str()
	case "performance.http_client_timeout":
		var s string
		if s, err = str(); err == nil {
			var d time.Duration
			if d, err = time.ParseDuration(s); err == nil {
				cfg.HTTPClientTimeoutStr = s
				cfg.HTTPClientTimeout = d
			}
		}
	case "performance.max_idle_conns":
		cfg.MaxIdleConns, err = num()
	case "performance.max_conns_per_host":
		cfg.MaxConnsPerHost, err = num()
	case "logging.dir":
		cfg.LogDirectory, err = str()
	case "logging.output_file":
		cfg.LogOutputFile, err = str()
	case "logging.error_file":
		cfg.LogErrorFile, err = str()
	case "logging.level":
		cfg.LogLevel, err = str()
	default:
		err = fmt.Errorf("unknown config key %s", key)
	}
	return err
}

// Reload reloads configuration from file
func (m *Manager) Reload() (*Config, error) {
	return m.Load()
}

// createDefaultConfig creates a default configuration file
func (m *Manager) createDefaultConfig() (*Config, error) {
	cfg := &Config{}
	applyDefaults(cfg)

	if err := m.saveUnlocked(cfg, fileSecrets{}); err != nil {
		return nil, err
	}

	// Environment secrets are not written to disk
	applyEnv(cfg)
	m.config = cfg
	return cfg, nil
}

// Global config manager instance
var globalManager *Manager

// Load loads configuration from YAML file using the global manager
func Load() (*Config, error) {
	return GetManager().Load()
}

// GetManager returns the global config manager
func GetManager() *Manager {
	if globalManager == nil {
		configPath := "config.yaml"
		// Check if config/config.yaml exists, if so use it as default
		if _, err := os.Stat("config/config.yaml"); err == nil {
			configPath = "config/config.yaml"
		}
		globalManager = NewManager(configPath)
	}
	return globalManager
}

// UseManager replaces the global manager, e.g. when a path is given on the command line
func UseManager(m *Manager) {
	globalManager = m
}
