package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type CompensationConfig struct {
	Env             string `yaml:"env"`
	HTTPServer      `yaml:"http_server"`
	CompensationDB  `yaml:"compensation_db"`
	LogConfig       `yaml:"log_config"`
	KafkaService    `yaml:"kafka-service"`
	IdentityService `yaml:"identity-service"`
	Engine          `yaml:"engine"`
}

type HTTPServer struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type CompensationDB struct {
	Dsn            string `yaml:"dsn"`
	MigrationsPath string `yaml:"migrations_path"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogOutput string `yaml:"log_output"`
}

type KafkaService struct {
	Host            string `yaml:"host"`
	Port            string `yaml:"port"`
	BillingTopic    string `yaml:"billing_topic"`
	CommissionTopic string `yaml:"commission_topic"`
	GroupID         string `yaml:"group_id"`
}

type IdentityService struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type Engine struct {
	MaxTxRetries int           `yaml:"max_tx_retries" env-default:"3"`
	RetryBackoff time.Duration `yaml:"retry_backoff" env-default:"10ms"`
}

func MustLoad() *CompensationConfig {

	// Processing env config variable and file
	configPath := os.Getenv("COMP_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("COMP_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	// YAML to struct object
	var cfg CompensationConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
