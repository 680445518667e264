package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads the given .env files that exist, in order. Variables
// already set in the environment win. It returns how many files were read.
func LoadDotEnv(paths ...string) (int, error) {
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}
