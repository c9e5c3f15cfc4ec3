package marketdata

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	StooqBaseURL  string        `envconfig:"STOOQ_BASE_URL" default:"https://stooq.com"`
	HTTPTimeout   time.Duration `envconfig:"MARKETDATA_HTTP_TIMEOUT" default:"10s"`
	RetryAttempts int           `envconfig:"MARKETDATA_RETRY_ATTEMPTS" default:"3"`
	RetryBaseWait time.Duration `envconfig:"MARKETDATA_RETRY_BASE_WAIT" default:"500ms"`
}

func GetConfig() *Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return &config
}
