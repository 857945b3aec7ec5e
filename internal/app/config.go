package app

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/kgcontent-backend/internal/data/db"
	"github.com/yungbote/kgcontent-backend/internal/platform/envutil"
	"github.com/yungbote/kgcontent-backend/internal/platform/logger"
	"github.com/yungbote/kgcontent-backend/internal/platform/neo4jdb"
	"github.com/yungbote/kgcontent-backend/internal/platform/redisdb"
)

const (
	IDStrategyRandom  = "random"
	IDStrategyCounter = "counter"
	IDStrategyRedis   = "redis"
)

type Config struct {
	LogMode             string         `yaml:"log_mode"`
	GraphStore          db.Config      `yaml:"graph_store"`
	Neo4j               neo4jdb.Config `yaml:"neo4j"`
	Redis               redisdb.Config `yaml:"redis"`
	IDStrategy          string         `yaml:"id_strategy"`
	RedisIDKeyPrefix    string         `yaml:"redis_id_key_prefix"`
	CompensateOnFailure bool           `yaml:"compensate_on_failure"`
	ServiceName         string         `yaml:"service_name"`
	Environment         string         `yaml:"environment"`
}

// LoadConfig reads the environment, then overlays the YAML file named by
// CONFIG_FILE. Keys absent from the file keep their environment value.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		LogMode:             envutil.String("LOG_MODE", "development"),
		GraphStore:          db.ConfigFromEnv(),
		Neo4j:               neo4jdb.ConfigFromEnv(),
		Redis:               redisdb.ConfigFromEnv(),
		IDStrategy:          envutil.String("ID_STRATEGY", IDStrategyRandom),
		RedisIDKeyPrefix:    envutil.String("REDIS_ID_KEY_PREFIX", "kgcontent:ids"),
		CompensateOnFailure: envutil.Bool("CONTENT_COMPENSATE_ON_FAILURE", false),
		ServiceName:         envutil.String("OTEL_SERVICE_NAME", "kgcontent"),
		Environment:         envutil.String("APP_ENV", "development"),
	}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
		if log != nil {
			log.Info("config file applied", "path", path)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	driver := strings.ToLower(strings.TrimSpace(c.GraphStore.Driver))
	switch driver {
	case db.DriverMemory, db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("config: unknown GRAPH_STORE_DRIVER %q", c.GraphStore.Driver)
	}
	switch c.IDStrategy {
	case IDStrategyRandom:
	case IDStrategyCounter:
		// The counter restarts at 1 with every process.
		if driver != db.DriverMemory {
			return fmt.Errorf("config: ID_STRATEGY=counter only works with GRAPH_STORE_DRIVER=memory; use random or redis for %s", driver)
		}
	case IDStrategyRedis:
		if strings.TrimSpace(c.Redis.Addr) == "" {
			return fmt.Errorf("config: ID_STRATEGY=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("config: unknown ID_STRATEGY %q", c.IDStrategy)
	}
	return nil
}
