package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const keyEnv = "ENV"
const envLocal = "local"

const (
	defaultQuickSyncLimit    = 300
	defaultQuickSyncPageSize = 50
	defaultDeepSyncPageSize  = 10
	defaultDeepSyncDelay     = 200 * time.Millisecond
)

type Config struct {
	config *viper.Viper
}

func Load() (*Config, error) {

	env := os.Getenv(keyEnv)
	if len(env) == 0 {
		env = envLocal
	}

	configPath, err := getConfigPath(env)

	viperConfig := viper.New()
	if err == nil {
		viperConfig.SetConfigFile(configPath)
		if err := viperConfig.ReadInConfig(); err != nil {
			slog.Warn(fmt.Sprintf("error reading config file, %s", err))
		}
	}
	viperConfig.AutomaticEnv()

	cfg := &Config{
		config: viperConfig,
	}

	return cfg, nil
}

func (c *Config) GetPort() string {
	port := c.config.GetString("PORT")
	if len(port) == 0 {
		port = c.config.GetString("server.port")
	}

	return port
}

func (c *Config) GetKVDBPath() string {
	kvdbPath := c.config.GetString("KVDB_PATH")
	if len(kvdbPath) == 0 {
		kvdbPath = c.config.GetString("database.kvdb_path")
	}

	return kvdbPath
}

func (c *Config) GetDocumentDBPath() string {
	dbPath := c.config.GetString("DOCUMENT_DB_PATH")
	if len(dbPath) == 0 {
		dbPath = c.config.GetString("database.document_db_path")
	}

	return dbPath
}

// GetGalleryPath is the folder the built-in gallery source reads. An
// empty path disables it.
func (c *Config) GetGalleryPath() string {
	galleryPath := c.config.GetString("GALLERY_PATH")
	if len(galleryPath) == 0 {
		galleryPath = c.config.GetString("gallery.path")
	}

	return galleryPath
}

// GetQuickSyncLimit bounds how many items a quick sync may visit.
func (c *Config) GetQuickSyncLimit() int {
	limit := c.config.GetInt("QUICK_SYNC_LIMIT")
	if limit == 0 {
		limit = c.config.GetInt("sync.quick_limit")
	}
	if limit == 0 {
		limit = defaultQuickSyncLimit
	}

	return limit
}

func (c *Config) GetQuickSyncPageSize() int {
	pageSize := c.config.GetInt("QUICK_SYNC_PAGE_SIZE")
	if pageSize == 0 {
		pageSize = c.config.GetInt("sync.quick_page_size")
	}
	if pageSize == 0 {
		pageSize = defaultQuickSyncPageSize
	}

	return pageSize
}

func (c *Config) GetDeepSyncPageSize() int {
	pageSize := c.config.GetInt("DEEP_SYNC_PAGE_SIZE")
	if pageSize == 0 {
		pageSize = c.config.GetInt("sync.deep_page_size")
	}
	if pageSize == 0 {
		pageSize = defaultDeepSyncPageSize
	}

	return pageSize
}

// GetDeepSyncDelay is the pause between deep sync pages, bounding peak
// CPU and memory on large galleries.
func (c *Config) GetDeepSyncDelay() time.Duration {
	delay := c.config.GetDuration("DEEP_SYNC_DELAY")
	if delay == 0 {
		delay = c.config.GetDuration("sync.deep_delay")
	}
	if delay == 0 {
		delay = defaultDeepSyncDelay
	}

	return delay
}

func getProjectRoot() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}

	for {
		configDir := filepath.Join(currentDir, "config")
		if info, err := os.Stat(configDir); err == nil && info.IsDir() {
			return currentDir, nil
		}

		parent := filepath.Dir(currentDir)

		if parent == currentDir {
			break
		}

		currentDir = parent
	}

	return "", fmt.Errorf("could not find project root (directory containing 'config' folder)")
}

func getConfigPath(env string) (string, error) {
	configFile := fmt.Sprintf("config.%s.yaml", env)

	projectRoot, err := getProjectRoot()
	if err != nil {
		slog.Warn("failed to find project root with config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("failed to find project root: %w", err)
	}
	configPath := filepath.Join(projectRoot, "config", configFile)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		slog.Warn("failed to find config file within config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("config file does not exist: %s", configPath)
	}

	return configPath, nil
}
