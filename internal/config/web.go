package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Web is the configuration of the control server.
type Web struct {
	BindTo       string
	StaticDir    string
	PiListConfig string
	DBPath       string
	SigningKey   string
	PollInterval time.Duration
	LogLevel     string
	AMQPURL      string
	AMQPExchange string

	// Source is the file the values were read from, empty when only
	// defaults and environment were used.
	Source string
}

const envPrefix = "MPIHOLE"

func setWebDefaults(v *viper.Viper) {
	v.SetDefault("main.bind_to", "0.0.0.0:8080")
	v.SetDefault("main.static_dir", "")
	v.SetDefault("main.pi_list_config", "/etc/mpihole.json")
	v.SetDefault("db.path", "/var/lib/mpihole/mpihole.db")
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("poll.interval", "30s")
	v.SetDefault("log.level", "info")
	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", "mpihole.events")
}

// LoadWeb reads the web config at path. A missing file is not an error:
// defaults and MPIHOLE_* environment variables still apply.
func LoadWeb(path string) (Web, error) {
	v := viper.New()
	setWebDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var source string
	if path != "" {
		v.SetConfigFile(path)
		err := v.ReadInConfig()
		var notFound viper.ConfigFileNotFoundError
		switch {
		case err == nil:
			source = v.ConfigFileUsed()
		case errors.Is(err, fs.ErrNotExist), errors.As(err, &notFound):
		default:
			return Web{}, fmt.Errorf("read web config %s: %w", path, err)
		}
	}

	cfg := Web{
		BindTo:       v.GetString("main.bind_to"),
		StaticDir:    v.GetString("main.static_dir"),
		PiListConfig: v.GetString("main.pi_list_config"),
		DBPath:       v.GetString("db.path"),
		SigningKey:   v.GetString("auth.signing_key"),
		PollInterval: v.GetDuration("poll.interval"),
		LogLevel:     v.GetString("log.level"),
		AMQPURL:      v.GetString("amqp.url"),
		AMQPExchange: v.GetString("amqp.exchange"),
		Source:       source,
	}
	if cfg.PollInterval <= 0 {
		return Web{}, fmt.Errorf("poll.interval must be positive, got %q", v.GetString("poll.interval"))
	}
	return cfg, nil
}
