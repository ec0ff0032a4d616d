package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything a service needs to come up. Values are read from a
// YAML file (CONFIG_FILE, default ./config.yaml) and can be overridden one by
// one through environment variables, which is how they are set in k8s.
type Config struct {
	Infra struct {
		MySQL struct {
			DSN string `yaml:"dsn"`
		} `yaml:"mysql"`
		Redis struct {
			Addr string `yaml:"addr"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers []string `yaml:"brokers"`
			Topics  struct {
				TripNotifications string `yaml:"trip_notifications"`
			} `yaml:"topics"`
		} `yaml:"kafka"`
		Zookeeper struct {
			Servers []string `yaml:"servers"`
		} `yaml:"zookeeper"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
		Nacos struct {
			ServerAddrs string `yaml:"server_addrs"`
			Namespace   string `yaml:"namespace"`
			Group       string `yaml:"group"`
		} `yaml:"nacos"`
	} `yaml:"infra"`

	Services struct {
		Hotel string `yaml:"hotel"`
		Taxi  string `yaml:"taxi"`
	} `yaml:"services"`

	Travel struct {
		PolicyExpression      string        `yaml:"policy_expression"`
		HighDemandCommodities []int64       `yaml:"high_demand_commodities"`
		BookingTimeout        Duration      `yaml:"booking_timeout"`
	} `yaml:"travel"`
}

// Duration unmarshals YAML values like "10s"; yaml.v3 cannot decode into a
// bare time.Duration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

var (
	currentConfig *Config
	configOnce    sync.Once
)

// GetCurrentConfig loads the config on first use and caches it.
func GetCurrentConfig() *Config {
	configOnce.Do(func() {
		cfg, err := loadConfig()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
		currentConfig = cfg
	})
	return currentConfig
}

func loadConfig() (*Config, error) {
	cfg := defaultConfig()

	path := getEnv("CONFIG_FILE", "config.yaml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Infra.MySQL.DSN = "root:root@tcp(localhost:3306)/voyage?charset=utf8mb4&parseTime=True&loc=Local"
	cfg.Infra.Redis.Addr = "localhost:6379"
	cfg.Infra.Kafka.Brokers = []string{"localhost:9092"}
	cfg.Infra.Kafka.Topics.TripNotifications = "trip-notifications"
	cfg.Infra.Zookeeper.Servers = nil
	cfg.Infra.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	cfg.Infra.Nacos.ServerAddrs = ""
	cfg.Infra.Nacos.Group = "DEFAULT_GROUP"
	cfg.Services.Hotel = "http://localhost:8082"
	cfg.Services.Taxi = "http://localhost:8083"
	cfg.Travel.BookingTimeout = Duration(10 * time.Second)
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	cfg.Infra.MySQL.DSN = getEnv("MYSQL_DSN", cfg.Infra.MySQL.DSN)
	cfg.Infra.Redis.Addr = getEnv("REDIS_ADDR", cfg.Infra.Redis.Addr)
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Infra.Kafka.Brokers = strings.Split(v, ",")
	}
	cfg.Infra.Kafka.Topics.TripNotifications = getEnv("KAFKA_TOPIC_TRIP_NOTIFICATIONS", cfg.Infra.Kafka.Topics.TripNotifications)
	if v := os.Getenv("ZOOKEEPER_SERVERS"); v != "" {
		cfg.Infra.Zookeeper.Servers = strings.Split(v, ",")
	}
	cfg.Infra.Jaeger.Endpoint = getEnv("JAEGER_ENDPOINT", cfg.Infra.Jaeger.Endpoint)
	cfg.Infra.Nacos.ServerAddrs = getEnv("NACOS_SERVER_ADDRS", cfg.Infra.Nacos.ServerAddrs)
	cfg.Infra.Nacos.Namespace = getEnv("NACOS_NAMESPACE", cfg.Infra.Nacos.Namespace)
	cfg.Infra.Nacos.Group = getEnv("NACOS_GROUP", cfg.Infra.Nacos.Group)
	cfg.Services.Hotel = getEnv("HOTEL_SERVICE_URL", cfg.Services.Hotel)
	cfg.Services.Taxi = getEnv("TAXI_SERVICE_URL", cfg.Services.Taxi)
	cfg.Travel.PolicyExpression = getEnv("BOOKING_POLICY_EXPRESSION", cfg.Travel.PolicyExpression)
	if v := os.Getenv("HIGH_DEMAND_COMMODITIES"); v != "" {
		cfg.Travel.HighDemandCommodities = parseInt64List(v)
	}
	if v := os.Getenv("BOOKING_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Travel.BookingTimeout = Duration(d)
		}
	}
}

func parseInt64List(s string) []int64 {
	var out []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			out = append(out, id)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
