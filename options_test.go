package main

import (
	"os"
	"path/filepath"
	"testing"

	"cluster-service/cluster"
	"cluster-service/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
log_level: 4
log_file: /var/log/cluster.log
redis:
  server: 192.168.7.1
  port: 6380
can:
  device: ""
  ecu_type: votol
display:
  speed_mode: mph
  window: true
  width: 1024
  height: 600
`

func defaultOptions() *Options {
	return &Options{
		LogLevel:        LogLevelInfo,
		RedisServerAddr: "127.0.0.1",
		RedisServerPort: 6379,
		CANDevice:       "can0",
		ECUType:         telemetry.DecoderBosch,
		WindowWidth:     800,
		WindowHeight:    480,
	}
}

func TestFileConfig(t *testing.T) {
	t.Run("should apply every value from the file", func(t *testing.T) {
		// given
		cfg, err := ParseConfig([]byte(sampleConfig))
		require.NoError(t, err)
		opts := defaultOptions()
		// when
		err = cfg.Apply(opts, nil)
		// then
		require.NoError(t, err)
		assert.Equal(t, LogLevelDebug, opts.LogLevel)
		assert.Equal(t, "/var/log/cluster.log", opts.LogFile)
		assert.Equal(t, "192.168.7.1", opts.RedisServerAddr)
		assert.Equal(t, uint16(6380), opts.RedisServerPort)
		assert.Equal(t, "", opts.CANDevice)
		assert.Equal(t, telemetry.DecoderVotol, opts.ECUType)
		assert.Equal(t, cluster.SpeedModeMPH, opts.SpeedMode)
		assert.True(t, opts.Window)
		assert.Equal(t, 1024, opts.WindowWidth)
		assert.Equal(t, 600, opts.WindowHeight)
		assert.False(t, opts.Fullscreen)
	})
	t.Run("should keep explicit flags", func(t *testing.T) {
		// given
		cfg, err := ParseConfig([]byte(sampleConfig))
		require.NoError(t, err)
		opts := defaultOptions()
		// when
		err = cfg.Apply(opts, map[string]bool{"redis_server": true, "can_device": true, "log": true})
		// then
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1", opts.RedisServerAddr)
		assert.Equal(t, "can0", opts.CANDevice)
		assert.Equal(t, LogLevelInfo, opts.LogLevel)
		assert.Equal(t, uint16(6380), opts.RedisServerPort)
	})
	t.Run("should leave options alone for an empty file", func(t *testing.T) {
		cfg, err := ParseConfig([]byte(""))
		require.NoError(t, err)
		opts := defaultOptions()
		require.NoError(t, cfg.Apply(opts, nil))
		assert.Equal(t, defaultOptions(), opts)
	})
	t.Run("should reject invalid values", func(t *testing.T) {
		for _, doc := range []string{
			"can:\n  ecu_type: unu\n",
			"display:\n  speed_mode: furlongs\n",
			"redis:\n  port: 70000\n",
		} {
			cfg, err := ParseConfig([]byte(doc))
			require.NoError(t, err)
			assert.Error(t, cfg.Apply(defaultOptions(), nil), doc)
		}
	})
	t.Run("should report malformed yaml", func(t *testing.T) {
		_, err := ParseConfig([]byte("redis: [unterminated"))
		assert.Error(t, err)
	})
	t.Run("should load from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cluster.yaml")
		require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))
		cfg, err := LoadConfigFile(path)
		require.NoError(t, err)
		assert.Equal(t, "192.168.7.1", cfg.Redis.Server)

		_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestOptionsValidate(t *testing.T) {
	opts := defaultOptions()
	assert.NoError(t, opts.Validate())

	opts.LogLevel = 7
	assert.Error(t, opts.Validate())

	opts = defaultOptions()
	opts.RedisServerAddr = ""
	assert.Error(t, opts.Validate())
}
