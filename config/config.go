package config

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"qrmenu/pkg/logger"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	Service       string        `mapstructure:"service"`
	PublicBaseURL string        `mapstructure:"public_base_url"`
	HTTP          HTTPConfig    `mapstructure:"http"`
	DB            DBConfig      `mapstructure:"db"`
	Redis         RedisConfig   `mapstructure:"redis"`
	Kafka         KafkaConfig   `mapstructure:"kafka"`
	Storage       StorageConfig `mapstructure:"storage"`
	Auth          AuthConfig    `mapstructure:"auth"`
	Gateway       GatewayConfig `mapstructure:"gateway"`
	Log           logger.Config `mapstructure:"log"`
	Metrics       MetricsConfig `mapstructure:"metrics"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DBConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

func (c DBConfig) DSN() string {
	return "host=" + c.Host + " port=" + c.Port + " user=" + c.User +
		" password=" + c.Password + " dbname=" + c.Name + " sslmode=" + c.SSLMode
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type KafkaConfig struct {
	Broker      string `mapstructure:"broker"`
	OrdersTopic string `mapstructure:"orders_topic"`
	GroupID     string `mapstructure:"group_id"`
}

type StorageConfig struct {
	Provider  string `mapstructure:"provider"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseTLS    bool   `mapstructure:"use_tls"`
	PublicURL string `mapstructure:"public_url"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type GatewayConfig struct {
	MenuSvcURL      string `mapstructure:"menu_svc_url"`
	OrderSvcURL     string `mapstructure:"order_svc_url"`
	FeedSvcURL      string `mapstructure:"feed_svc_url"`
	AnalyticsSvcURL string `mapstructure:"analytics_svc_url"`
	FrontendDir     string `mapstructure:"frontend_dir"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

var defaults = map[string]any{
	"public_base_url":           "http://localhost:8080",
	"http.addr":                 ":8080",
	"http.shutdown_timeout":     10 * time.Second,
	"db.host":                   "localhost",
	"db.port":                   "5432",
	"db.name":                   "qrmenu",
	"db.user":                   "postgres",
	"db.password":               "",
	"db.sslmode":                "disable",
	"db.max_open_conns":         25,
	"db.max_idle_conns":         5,
	"db.conn_max_lifetime":      time.Hour,
	"redis.host":                "localhost",
	"redis.port":                "6379",
	"redis.password":            "",
	"redis.db":                  0,
	"kafka.broker":              "localhost:9092",
	"kafka.orders_topic":        "orders",
	"kafka.group_id":            "",
	"storage.provider":          "minio",
	"storage.endpoint":          "localhost:9000",
	"storage.region":            "us-east-1",
	"storage.access_key":        "",
	"storage.secret_key":        "",
	"storage.bucket":            "menu-images",
	"storage.use_tls":           false,
	"storage.public_url":        "",
	"auth.jwt_secret":           "",
	"auth.token_ttl":            24 * time.Hour,
	"gateway.menu_svc_url":      "http://localhost:8081",
	"gateway.order_svc_url":     "http://localhost:8082",
	"gateway.feed_svc_url":      "http://localhost:8083",
	"gateway.analytics_svc_url": "http://localhost:8084",
	"gateway.frontend_dir":      "./frontend",
	"log.level":                 "INFO",
	"log.output":                "stdout",
	"log.path":                  "./logs",
	"log.filename":              "",
	"log.max_size_mb":           100,
	"log.max_backups":           10,
	"log.max_age_days":          7,
	"metrics.enabled":           true,
}

// Load reads defaults, an optional YAML file and the environment, in that
// order of precedence. DB_HOST overrides db.host, KAFKA_BROKER kafka.broker.
func Load(service, file string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetDefault("service", service)
	v.SetDefault("log.filename", service+".log")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file == "" {
		file = os.Getenv("QRMENU_CONFIG")
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Service = service
	return &cfg, nil
}

func MustLoad(service string) *Config {
	cfg, err := Load(service, "")
	if err != nil {
		zap.Must(zap.NewProduction()).Sugar().Fatalw("Failed to load configuration", "service", service, "error", err)
	}
	return cfg
}

// InitPostgres opens the pool and pings it once.
func InitPostgres(ctx context.Context, cfg DBConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database %s:%s: %w", cfg.Host, cfg.Port, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

func MustInitPostgres(cfg DBConfig, log *zap.SugaredLogger) *sql.DB {
	db, err := InitPostgres(context.Background(), cfg)
	if err != nil {
		log.Fatalw("Failed to connect to database", "error", err)
	}
	return db
}

func InitRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

func MustInitRedis(cfg RedisConfig, log *zap.SugaredLogger) *redis.Client {
	client, err := InitRedis(context.Background(), cfg)
	if err != nil {
		log.Fatalw("Failed to connect to Redis", "error", err)
	}
	return client
}

func NewKafkaReader(cfg KafkaConfig, groupID string) *kafka.Reader {
	if cfg.GroupID != "" {
		groupID = cfg.GroupID
	}
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{cfg.Broker},
		Topic:   cfg.OrdersTopic,
		GroupID: groupID,
	})
}

func NewKafkaWriter(cfg KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Broker),
		Topic:                  cfg.OrdersTopic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}
