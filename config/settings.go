package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server   ServerSettings   `json:"server"`
	Metadata MetadataSettings `json:"metadata"`
	Cache    CacheSettings    `json:"cache"`
	Catalog  CatalogSettings  `json:"catalog"`
	Embed    EmbedSettings    `json:"embed"`
	Database DatabaseSettings `json:"database"`
	Log      LogConfig        `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	// APIKey is generated on first load and can be used by reverse proxies
	// for request correlation. It is never required for API access.
	APIKey string `json:"apiKey"`
}

type MetadataSettings struct {
	TMDBAPIKey string `json:"tmdbApiKey"`
	Language   string `json:"language"`
}

type CacheSettings struct {
	// RecordTTLHours bounds how long a resolved record is served without
	// revalidation. GenreTTLHours does the same for the genre directory and
	// is deliberately coarser.
	RecordTTLHours int `json:"recordTtlHours"`
	GenreTTLHours  int `json:"genreTtlHours"`
}

type CatalogSettings struct {
	FeedURL string `json:"feedUrl"`
}

// EmbedSettings configures the playback embed URL templates.
type EmbedSettings struct {
	BaseURL string `json:"baseUrl"`
}

type DatabaseSettings struct {
	Path string `json:"path"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	File       string `json:"file"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

func DefaultSettings() Settings {
	return Settings{
		Server:   ServerSettings{Host: "0.0.0.0", Port: 8787},
		Metadata: MetadataSettings{TMDBAPIKey: "", Language: "en"},
		Cache:    CacheSettings{RecordTTLHours: 1, GenreTTLHours: 24},
		Catalog:  CatalogSettings{FeedURL: ""},
		Embed:    EmbedSettings{BaseURL: "https://vidsrc.xyz/embed"},
		Database: DatabaseSettings{Path: "cache/records.db"},
		Log: LogConfig{
			File:       "cache/logs/backend.log",
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
	}
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

// EnsureDir ensures parent directory exists.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Load reads settings from disk or creates defaults if missing. A missing
// server API key is generated and persisted.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		defaults := DefaultSettings()
		defaults.Server.APIKey = uuid.NewString()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}
	f, err := os.Open(m.path)
	if err != nil {
		return Settings{}, err
	}
	defer f.Close()

	s := DefaultSettings()
	dec := json.NewDecoder(f)
	if err := dec.Decode(&s); err != nil {
		return Settings{}, err
	}

	if strings.TrimSpace(s.Server.APIKey) == "" {
		s.Server.APIKey = uuid.NewString()
		if err := m.Save(s); err != nil {
			return Settings{}, err
		}
	}

	if s.Cache.RecordTTLHours <= 0 {
		s.Cache.RecordTTLHours = 1
	}
	if s.Cache.GenreTTLHours <= 0 {
		s.Cache.GenreTTLHours = 24
	}

	return s, nil
}

// Save writes the provided settings to disk atomically.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, m.path)
}
