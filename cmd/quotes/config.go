package quotes

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Interval time.Duration `envconfig:"QUOTES_INTERVAL" default:"60s"`
	RunOnce  bool          `envconfig:"QUOTES_RUN_ONCE" default:"false"`
}

func GetConfig() *Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return &config
}
