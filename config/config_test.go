package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("menu-svc", "")
	require.NoError(t, err)

	assert.Equal(t, "menu-svc", cfg.Service)
	assert.Equal(t, "5432", cfg.DB.Port)
	assert.Equal(t, "orders", cfg.Kafka.OrdersTopic)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "menu-svc.log", cfg.Log.Filename)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "pg.internal")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("KAFKA_BROKER", "kafka:29092")
	t.Setenv("HTTP_ADDR", ":9090")

	cfg, err := Load("order-svc", "")
	require.NoError(t, err)

	assert.Equal(t, "pg.internal", cfg.DB.Host)
	assert.Equal(t, "localhost:6380", cfg.Redis.Addr())
	assert.Equal(t, "kafka:29092", cfg.Kafka.Broker)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("public_base_url: https://menu.example.com\nstorage:\n  provider: s3\n  bucket: dishes\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load("menu-svc", path)
	require.NoError(t, err)

	assert.Equal(t, "https://menu.example.com", cfg.PublicBaseURL)
	assert.Equal(t, "s3", cfg.Storage.Provider)
	assert.Equal(t, "dishes", cfg.Storage.Bucket)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("menu-svc", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	dsn := DBConfig{Host: "h", Port: "1", User: "u", Password: "p", Name: "n", SSLMode: "disable"}.DSN()
	assert.Equal(t, "host=h port=1 user=u password=p dbname=n sslmode=disable", dsn)
}

func TestNewKafkaReaderPrefersConfiguredGroup(t *testing.T) {
	reader := NewKafkaReader(KafkaConfig{Broker: "localhost:9092", OrdersTopic: "orders", GroupID: "custom"}, "feed-svc")
	defer reader.Close()
	assert.Equal(t, "custom", reader.Config().GroupID)
	assert.Equal(t, "orders", reader.Config().Topic)
}

func TestInitRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	host, port, _ := strings.Cut(addr, ":")

	client, err := InitRedis(context.Background(), RedisConfig{Host: host, Port: port})
	require.NoError(t, err)
	defer client.Close()
	assert.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())

	mr.Close()
	_, err = InitRedis(context.Background(), RedisConfig{Host: host, Port: port})
	assert.ErrorContains(t, err, "ping redis "+addr)
}

func TestInitPostgresUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := InitPostgres(ctx, DBConfig{Host: "127.0.0.1", Port: "1", User: "u", Password: "p", Name: "db", SSLMode: "disable"})
	assert.ErrorContains(t, err, "ping database 127.0.0.1:1")
}
