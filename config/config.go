package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port      int    `env:"PORT" envDefault:"3000"`
	PgURL     string `env:"PG_URL" required:"true"`
	PgPoolMax int    `env:"PG_POOL_MAX" envDefault:"10"`
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`

	JWTSecret string `env:"JWT_SECRET" required:"true"`

	CheckoutBaseURL           string        `env:"CHECKOUT_BASE_URL" required:"true"`
	CheckoutSessionPath       string        `env:"CHECKOUT_SESSION_PATH" envDefault:"/v1/checkout/sessions"`
	CheckoutSecretKey         string        `env:"CHECKOUT_SECRET_KEY" required:"true"`
	HTTPCheckoutClientTimeout time.Duration `env:"HTTP_CHECKOUT_CLIENT_TIMEOUT" envDefault:"20s"`

	SlipUploadURL         string        `env:"SLIP_UPLOAD_URL" required:"true"`
	SlipUploadPreset      string        `env:"SLIP_UPLOAD_PRESET" envDefault:"bank_slips"`
	HTTPSlipClientTimeout time.Duration `env:"HTTP_SLIP_CLIENT_TIMEOUT" envDefault:"20s"`

	Currency    string  `env:"CURRENCY" envDefault:"usd"`
	DeliveryFee float64 `env:"DELIVERY_FEE" envDefault:"10"`
}

func New() (Config, error) {
	c, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}

	return c, nil
}
