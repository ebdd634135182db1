package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(body), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"server": { "host": "10.0.0.1", "port": 6000, "nickname": "tanky" },
		"db": { "host": "10.0.0.2", "port": "5433" }
	}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "10.0.0.1", viper.GetString("server.host"))
	assert.Equal(t, 6000, viper.GetInt("server.port"))
	assert.Equal(t, "tanky", viper.GetString("server.nickname"))
	assert.Equal(t, "10.0.0.2", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./logs", viper.GetString("logsDir"))
	assert.Equal(t, "localhost", viper.GetString("server.host"))
	assert.Equal(t, 5000, viper.GetInt("server.port"))
	assert.Equal(t, "random", viper.GetString("policy.type"))
	assert.Equal(t, false, viper.GetBool("render.enabled"))
	assert.Equal(t, "none", viper.GetString("storage.type"))
	assert.Equal(t, "localhost", viper.GetString("db.host"))
	assert.Equal(t, "5432", viper.GetString("db.port"))
	assert.Equal(t, "stereotanks", viper.GetString("db.database"))
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
	assert.Equal(t, "ticks", viper.GetString("influx.bucket"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
	assert.Equal(t, false, viper.GetBool("otel.enabled"))
	assert.Equal(t, true, viper.GetBool("monitor.enabled"))
	assert.Equal(t, time.Second, GetDuration("monitor.interval"))
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(t.TempDir()))
	assert.Equal(t, "localhost", viper.GetString("server.host"))
}

func TestLoad_MalformedFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load(writeConfig(t, `{"server": `))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("STEREOTANKS_SERVER_JOINCODE", "from-env")

	require.NoError(t, Load(writeConfig(t, `{"server": {"joinCode": "from-file"}}`)))
	assert.Equal(t, "from-env", GetServerConfig().JoinCode)
}

func TestBindFlags(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{"server": {"nickname": "file-nick", "port": 7000}}`)))

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.NoError(t, BindFlags(fs))
	require.NoError(t, fs.Parse([]string{"-n", "flag-nick", "--policy", "zoneSeeker", "--seed", "42", "--render"}))

	sc := GetServerConfig()
	assert.Equal(t, "flag-nick", sc.Nickname)
	assert.Equal(t, 7000, sc.Port, "unset flags leave file values alone")

	pc := GetPolicyConfig()
	assert.Equal(t, "zoneSeeker", pc.Type)
	assert.Equal(t, uint64(42), pc.Seed)
	assert.True(t, GetBool("render.enabled"))
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
}

func TestGetInt(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testInt", 42)
	assert.Equal(t, 42, GetInt("testInt"))
}

func TestGetDuration(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testDuration", "250ms")
	assert.Equal(t, 250*time.Millisecond, GetDuration("testDuration"))
}

func TestGetServerConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetServerConfig()
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, 5, cfg.DialAttempts)
	assert.Equal(t, time.Second, cfg.DialBackoff)
}

func TestGetStorageConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetStorageConfig()
	assert.Equal(t, "none", cfg.Type)
	assert.Equal(t, "./matches", cfg.Memory.OutputDir)
	assert.Equal(t, true, cfg.Memory.CompressOutput)
	assert.Equal(t, time.Minute, cfg.SQLite.DumpInterval)
	assert.Equal(t, "./matches", cfg.Parquet.OutputDir)
}

func TestGetStorageConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"storage": {
			"type": "sqlite",
			"memory": { "outputDir": "/tmp/out", "compressOutput": false },
			"sqlite": { "path": "/tmp/st.db", "dumpInterval": "10m" },
			"parquet": { "outputDir": "/tmp/pq" }
		}
	}`)
	require.NoError(t, Load(dir))

	sc := GetStorageConfig()
	assert.Equal(t, "sqlite", sc.Type)
	assert.Equal(t, "/tmp/out", sc.Memory.OutputDir)
	assert.Equal(t, false, sc.Memory.CompressOutput)
	assert.Equal(t, "/tmp/st.db", sc.SQLite.Path)
	assert.Equal(t, 10*time.Minute, sc.SQLite.DumpInterval)
	assert.Equal(t, "/tmp/pq", sc.Parquet.OutputDir)
}

func TestGetOTelConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"otel": {
			"enabled": true,
			"serviceName": "my-bot",
			"batchTimeout": "30s",
			"endpoint": "localhost:4317",
			"insecure": false
		}
	}`)
	require.NoError(t, Load(dir))

	oc := GetOTelConfig()
	assert.Equal(t, true, oc.Enabled)
	assert.Equal(t, "my-bot", oc.ServiceName)
	assert.Equal(t, 30*time.Second, oc.BatchTimeout)
	assert.Equal(t, "localhost:4317", oc.Endpoint)
	assert.Equal(t, false, oc.Insecure)
}
