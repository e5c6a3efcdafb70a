package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	TrackGate TrackGateConfig `yaml:"trackgate"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

type KafkaConfig struct {
	Host                    string `yaml:"host"`
	Port                    int    `yaml:"port"`
	LookupRecordedTopicName string `yaml:"lookup_recorded_topic_name"`
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TrackGateConfig struct {
	HTTPAddr string `yaml:"http_addr"`

	// Origins that get Access-Control-Allow-Origin reflected back.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// WareIQ aggregator base URL. The Authorization value itself comes from
	// the WAREIQ_AUTH_HEADER env var and is checked per request.
	WareIQBaseURL string `yaml:"wareiq_base_url"`

	// "sync" applies the analytics transaction before the response is written;
	// "detached" publishes to Kafka for the analytics-worker instead.
	AnalyticsMode string `yaml:"analytics_mode"`

	StatsCacheTTLSeconds int `yaml:"stats_cache_ttl_seconds"`

	WorkerHTTPAddr           string `yaml:"worker_http_addr"`
	WorkerKafkaConsumerGroup string `yaml:"worker_kafka_consumer_group"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return &config, nil
}
