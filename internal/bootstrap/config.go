package bootstrap

import (
	"os"

	"github.com/savetide/backend/config"
)

// configFileEnv names an explicit YAML config file for the server
const configFileEnv = "SAVETIDE_CONFIG"

// configLoad reads SAVETIDE_CONFIG when set, otherwise the default search paths
func configLoad() (*config.Config, error) {
	if path := os.Getenv(configFileEnv); path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}
