package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	pkgtls "github.com/Vjossaab/commercify-backend/pkg/tls"
)

type Config struct {
	Port      string `envconfig:"PORT" default:"8080"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LocalMode bool   `envconfig:"LOCAL_MODE" default:"true"` // in-memory store and broker, no AWS/Kafka

	AWSRegion        string `envconfig:"AWS_REGION" default:"ap-northeast-2"`
	ProductTableName string `envconfig:"PRODUCT_TABLE_NAME" default:"commercify-products"`
	OrderTableName   string `envconfig:"ORDER_TABLE_NAME" default:"commercify-orders"`

	KafkaBrokers string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	RelayGroupID string `envconfig:"RELAY_GROUP_ID" default:"event-relay"`

	RelayAddr       string        `envconfig:"RELAY_ADDR" default:":5003"`
	SendBufferSize  int           `envconfig:"SEND_BUFFER_SIZE" default:"64"`
	ConnIdleTimeout time.Duration `envconfig:"CONN_IDLE_TIMEOUT" default:"5m"`

	ReserveMaxAttempts int `envconfig:"RESERVE_MAX_ATTEMPTS" default:"5"`

	TLS pkgtls.TLSConfig
}

func Load() (*Config, error) {
	// best effort; the environment wins over .env
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
