package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultPort        = "3000"
	DefaultStaticDir   = "public"
	DefaultServiceName = "hello-server"
)

// Config holds the process settings for the server.
type Config struct {
	Port         string
	StaticDir    string
	ServiceName  string
	OTLPEndpoint string
}

// Load reads settings from the environment, seeded by the given .env files.
// A value in the real environment wins over one from a file. Missing files
// are skipped.
func Load(files ...string) (Config, error) {
	fileEnv := map[string]string{}
	for _, file := range files {
		values, err := godotenv.Read(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Printf("config: no %s file found, using environment only", file)
				continue
			}
			return Config{}, fmt.Errorf("config: read %s: %w", file, err)
		}
		for k, v := range values {
			if _, seen := fileEnv[k]; !seen {
				fileEnv[k] = v
			}
		}
	}

	lookup := func(key, fallback string) string {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
		if v := strings.TrimSpace(fileEnv[key]); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		Port:         lookup("PORT", DefaultPort),
		StaticDir:    lookup("STATIC_DIR", DefaultStaticDir),
		ServiceName:  lookup("OTEL_SERVICE_NAME", DefaultServiceName),
		OTLPEndpoint: lookup("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	port, err := strconv.Atoi(cfg.Port)
	if err != nil || port < 1 || port > 65535 {
		return Config{}, fmt.Errorf("config: invalid PORT %q", cfg.Port)
	}

	return cfg, nil
}

// Addr is the listen address for the configured port.
func (c Config) Addr() string {
	return ":" + c.Port
}
