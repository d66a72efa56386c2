package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/lhj-lhj/SocialRobotics/core"
)

// loadDotenv loads KEY=VALUE pairs from a dotenv-style file into the process
// environment. Existing variables win; a missing file is ignored.
func loadDotenv(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return &core.ConfigurationError{Field: "env", Reason: fmt.Sprintf("open %s: %v", path, err)}
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		line = strings.TrimPrefix(line, "export ")
		idx := strings.Index(line, "=")
		if idx <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:idx])
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}

		val := strings.TrimSpace(line[idx+1:])
		if len(val) >= 2 {
			if strings.HasPrefix(val, `"`) && strings.HasSuffix(val, `"`) {
				val = val[1 : len(val)-1]
			} else if strings.HasPrefix(val, "'") && strings.HasSuffix(val, "'") {
				val = val[1 : len(val)-1]
			}
		}
		if err := os.Setenv(key, val); err != nil {
			return &core.ConfigurationError{Field: "env", Reason: fmt.Sprintf("set %s from %s: %v", key, path, err)}
		}
	}
	if err := scanner.Err(); err != nil {
		return &core.ConfigurationError{Field: "env", Reason: fmt.Sprintf("scan %s: %v", path, err)}
	}
	return nil
}
