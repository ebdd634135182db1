package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ConfigFileName is looked up in the directory passed to Load.
const ConfigFileName = "stereotanks.cfg.json"

// ServerConfig holds the game server connection settings
type ServerConfig struct {
	Host         string
	Port         int
	Nickname     string
	JoinCode     string
	DialAttempts int
	DialBackoff  time.Duration
}

// PolicyConfig selects the decision policy
type PolicyConfig struct {
	Type string
	Seed uint64
}

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds settings for the in-memory SQLite backend
type SQLiteConfig struct {
	Path         string
	DumpInterval time.Duration
}

// ParquetConfig holds settings for the Parquet tick archive
type ParquetConfig struct {
	OutputDir string
}

// StorageConfig selects and configures the match recorder
type StorageConfig struct {
	Type    string
	Memory  MemoryConfig
	SQLite  SQLiteConfig
	Parquet ParquetConfig
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool
}

// Load sets default values, then reads the optional JSON config file from
// configDir and STEREOTANKS_* environment variables. A missing file is not
// an error; a malformed one is.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 5000)
	viper.SetDefault("server.nickname", "")
	viper.SetDefault("server.joinCode", "")
	viper.SetDefault("server.dialAttempts", 5)
	viper.SetDefault("server.dialBackoff", "1s")

	viper.SetDefault("policy.type", "random")
	viper.SetDefault("policy.seed", 0)

	viper.SetDefault("render.enabled", false)

	viper.SetDefault("monitor.enabled", true)
	viper.SetDefault("monitor.interval", "1s")

	viper.SetDefault("storage.type", "none")
	viper.SetDefault("storage.memory.outputDir", "./matches")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.path", "./matches/stereotanks.db")
	viper.SetDefault("storage.sqlite.dumpInterval", "1m")
	viper.SetDefault("storage.parquet.outputDir", "./matches")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "stereotanks")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "stereotanks")
	viper.SetDefault("influx.bucket", "ticks")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "stereotanks-bot")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetEnvPrefix("STEREOTANKS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName(ConfigFileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"host":      "server.host",
	"port":      "server.port",
	"nickname":  "server.nickname",
	"code":      "server.joinCode",
	"policy":    "policy.type",
	"seed":      "policy.seed",
	"storage":   "storage.type",
	"render":    "render.enabled",
	"log-level": "logLevel",
}

// BindFlags registers the command line flags on fs and binds them to their
// config keys. Flags set on the command line win over the file and env.
func BindFlags(fs *pflag.FlagSet) error {
	fs.StringP("host", "h", "localhost", "game server host")
	fs.IntP("port", "p", 5000, "game server port")
	fs.StringP("nickname", "n", "", "player nickname")
	fs.StringP("code", "c", "", "join code")
	fs.String("policy", "random", "decision policy: random, passive or zoneSeeker")
	fs.Uint64("seed", 0, "policy random seed (0 picks one)")
	fs.String("storage", "none", "match recorder: none, memory, sqlite, postgres or parquet")
	fs.Bool("render", false, "print the board every tick")
	fs.String("log-level", "info", "log level")

	for name, key := range flagKeys {
		if err := viper.BindPFlag(key, fs.Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a duration config value.
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// GetServerConfig returns the connection settings.
func GetServerConfig() ServerConfig {
	return ServerConfig{
		Host:         viper.GetString("server.host"),
		Port:         viper.GetInt("server.port"),
		Nickname:     viper.GetString("server.nickname"),
		JoinCode:     viper.GetString("server.joinCode"),
		DialAttempts: viper.GetInt("server.dialAttempts"),
		DialBackoff:  viper.GetDuration("server.dialBackoff"),
	}
}

// GetPolicyConfig returns the policy selection.
func GetPolicyConfig() PolicyConfig {
	return PolicyConfig{
		Type: viper.GetString("policy.type"),
		Seed: viper.GetUint64("policy.seed"),
	}
}

// GetStorageConfig returns the recorder settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path:         viper.GetString("storage.sqlite.path"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
		},
		Parquet: ParquetConfig{
			OutputDir: viper.GetString("storage.parquet.outputDir"),
		},
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}
