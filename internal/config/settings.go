package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Settings are the per-installation options, as opposed to a scenario.
// They come from hydrosim.yaml and HYDROSIM_* environment variables.
type Settings struct {
	DataDir   string         `mapstructure:"dataDir"`
	IndexPath string         `mapstructure:"indexPath"`
	LogLevel  string         `mapstructure:"logLevel"`
	LogJSON   bool           `mapstructure:"logJson"`
	Influx    InfluxSettings `mapstructure:"influx"`
}

type InfluxSettings struct {
	Enabled     bool   `mapstructure:"enabled"`
	URL         string `mapstructure:"url"`
	Token       string `mapstructure:"token"`
	Org         string `mapstructure:"org"`
	Bucket      string `mapstructure:"bucket"`
	Measurement string `mapstructure:"measurement"`
	// Decimate writes every Nth step only.
	Decimate int `mapstructure:"decimate"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dataDir", "./runs")
	v.SetDefault("indexPath", "./runs/index.db")
	v.SetDefault("logLevel", "info")
	v.SetDefault("logJson", false)

	v.SetDefault("influx.enabled", false)
	v.SetDefault("influx.url", "http://localhost:8086")
	v.SetDefault("influx.token", "")
	v.SetDefault("influx.org", "hydrosim")
	v.SetDefault("influx.bucket", "telemetry")
	v.SetDefault("influx.measurement", "vehicle")
	v.SetDefault("influx.decimate", 5)
}

// LoadSettings reads path if given, otherwise looks for hydrosim.yaml in
// the working directory and $HOME/.hydrosim. A missing file found by search
// is not an error.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("HYDROSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("hydrosim")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.hydrosim")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading settings: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("error decoding settings: %w", err)
	}
	if s.Influx.Decimate < 1 {
		s.Influx.Decimate = 1
	}
	return &s, nil
}
