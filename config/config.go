package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"code-inserter/editor"
)

const (
	BackendFile = "file"
	BackendBolt = "bolt"
)

// Config is the process configuration.
type Config struct {
	Port        string
	ProjectRoot string
	Dump        bool
	Settings    SettingsConfig
	CacheSize   int
	LogLevel    string
	LogFormat   string
}

// SettingsConfig selects and locates the settings backend.
type SettingsConfig struct {
	Backend     string
	ProjectFile string
	UserFile    string
	DBPath      string
}

// Load reads .env, command-line flags and the environment. Environment
// values override flags.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return parse(os.Args[1:])
}

func parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("code-inserter", flag.ContinueOnError)
	port := fs.String("port", ":8080", "server port")
	root := fs.String("root", ".", "project root")
	dump := fs.Bool("dump", false, "print the stored snippets and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if envPort := strings.TrimSpace(os.Getenv("PORT")); envPort != "" {
		*port = envPort
	}
	if !strings.HasPrefix(*port, ":") {
		*port = ":" + *port
	}

	rootDir, err := filepath.Abs(firstNonEmpty(strings.TrimSpace(os.Getenv("PROJECT_ROOT")), *root))
	if err != nil {
		return nil, fmt.Errorf("project root: %w", err)
	}

	settings, err := loadSettingsConfig(rootDir)
	if err != nil {
		return nil, err
	}

	cacheSize := editor.DefaultCacheSize
	if raw := strings.TrimSpace(os.Getenv("DOC_CACHE_SIZE")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("DOC_CACHE_SIZE: invalid value %q", raw)
		}
		cacheSize = n
	}

	return &Config{
		Port:        *port,
		ProjectRoot: rootDir,
		Dump:        *dump,
		Settings:    settings,
		CacheSize:   cacheSize,
		LogLevel:    firstNonEmpty(strings.TrimSpace(os.Getenv("LOG_LEVEL")), "info"),
		LogFormat:   firstNonEmpty(strings.TrimSpace(os.Getenv("LOG_FORMAT")), "text"),
	}, nil
}

func loadSettingsConfig(root string) (SettingsConfig, error) {
	backend := strings.ToLower(firstNonEmpty(strings.TrimSpace(os.Getenv("SETTINGS_BACKEND")), BackendFile))
	if backend != BackendFile && backend != BackendBolt {
		return SettingsConfig{}, errors.New("SETTINGS_BACKEND must be file or bolt")
	}

	userFile := strings.TrimSpace(os.Getenv("USER_SETTINGS_FILE"))
	if userFile == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			userFile = filepath.Join(dir, "code-inserter", "settings.json")
		}
	}

	return SettingsConfig{
		Backend:     backend,
		ProjectFile: firstNonEmpty(strings.TrimSpace(os.Getenv("SETTINGS_FILE")), filepath.Join(root, ".code-inserter", "settings.json")),
		UserFile:    userFile,
		DBPath:      firstNonEmpty(strings.TrimSpace(os.Getenv("SETTINGS_DB")), filepath.Join(root, ".code-inserter", "settings.db")),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
