package proxies

import (
	"github.com/travigo/rtproxy/pkg/config"
	"github.com/travigo/rtproxy/pkg/redis_client"
)

// Setup loads the configuration found at configPath (or the environment) and connects to
// Redis only when one of the configured backends needs it
func Setup(configPath string) (*Manager, error) {
	path, err := config.Path(configPath)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if cfg.UsesRedis() {
		if err := redis_client.Connect(); err != nil {
			return nil, err
		}
	}

	return NewManager(cfg, redis_client.Client)
}
