package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/vancomm/minesweeper-board/internal/mines"
)

// LoadDotEnv fills unset variables from the given files (".env" when none
// are given). Missing files are not an error.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		err := godotenv.Load(name)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("unable to load %s: %w", name, err)
		}
	}
	return nil
}

func BasePath() string {
	return os.Getenv("APP_BASE_PATH")
}

func Port() string {
	port, ok := os.LookupEnv("APP_PORT")
	if !ok || port == "" {
		return ":8080"
	}
	return port
}

func Placement() (mines.Placement, error) {
	return mines.ParsePlacement(os.Getenv("MINES_PLACEMENT"))
}

// SessionTTL is how long an untouched session is kept.
func SessionTTL() (time.Duration, error) {
	ttl, ok := os.LookupEnv("SESSION_TTL")
	if !ok || ttl == "" {
		return 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(ttl)
	if err != nil {
		return 0, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("SESSION_TTL must be positive, got %s", d)
	}
	return d, nil
}

// AllowedOrigins lists CORS_ALLOWED_ORIGINS (comma separated). Empty means
// any origin.
func AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
