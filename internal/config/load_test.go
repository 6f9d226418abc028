package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_HappyPath(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	tempConfigsSubDir := filepath.Join(tempDir, "configs")
	err = os.Mkdir(tempConfigsSubDir, 0755)
	require.NoError(t, err)

	testAppName := "TestPostingLedger"
	testPort := 9090
	testLogLevel := "debug"
	testKafkaBrokers := "kafka1:9092,kafka2:9092"

	envContent := fmt.Sprintf(
		"APP_NAME=%s\nSERVER_PORT=%d\nLOG_LEVEL=%s\nKAFKA_BROKERS=%s\n",
		testAppName, testPort, testLogLevel, testKafkaBrokers,
	)
	envFilePath := filepath.Join(tempConfigsSubDir, "test_happy.env")
	err = os.WriteFile(envFilePath, []byte(envContent), 0644)
	require.NoError(t, err)

	originalWD, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		_ = os.Chdir(originalWD)
	}()

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	cfg, err := LoadConfig("test_happy")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, testAppName, cfg.Application.Name)
	assert.Equal(t, testPort, cfg.Server.Port)
	assert.Equal(t, testLogLevel, cfg.Logging.Level)
	assert.Equal(t, testKafkaBrokers, cfg.Kafka.Brokers)

	// Defaults fill everything not present in the file
	assert.Equal(t, "development", cfg.Application.Env)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "ledger_postings", cfg.Kafka.PostingsTopic)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, "migrations/postgres", cfg.Postgres.MigrationsPath)
	assert.Equal(t, 10, cfg.Publisher.PoolSize)
	assert.Equal(t, 5, cfg.Outbox.MaxRetryAttempts)
}

func TestConfig_Validate_FailurePaths(t *testing.T) {
	base := func() *Config {
		return &Config{
			Application: ApplicationConfig{Env: "development", Name: "posting-ledger"},
			Logging:     LoggingConfig{Level: "info"},
			Server: ServerConfig{
				Port:            8080,
				ShutdownTimeout: 30 * time.Second,
				ReadTimeout:     30 * time.Second,
				WriteTimeout:    30 * time.Second,
				IdleTimeout:     120 * time.Second,
			},
			Kafka: KafkaConfig{
				Brokers:       "localhost:9092",
				PostingsTopic: "ledger_postings",
				WriteTimeout:  time.Second,
			},
			Postgres: PostgresConfig{
				URL:             "postgres://localhost:5432/posting_ledger",
				MaxConns:        20,
				MinConns:        5,
				ConnMaxLifetime: time.Hour,
				ConnMaxIdleTime: 30 * time.Minute,
			},
			MongoDB: MongoDBConfig{
				URI:             "mongodb://localhost:27017",
				Database:        "posting_ledger",
				Timeout:         10 * time.Second,
				MaxPoolSize:     100,
				MinPoolSize:     10,
				MaxConnIdleTime: 30 * time.Minute,
			},
			Outbox: OutboxConfig{
				PollingInterval:  5 * time.Second,
				BatchSize:        100,
				MaxRetryAttempts: 5,
			},
			Publisher: PublisherConfig{PoolSize: 10},
		}
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, base().validate())
	})

	t.Run("missing server port", func(t *testing.T) {
		cfg := base()
		cfg.Server.Port = 0
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SERVER_PORT")
	})

	t.Run("missing postings topic", func(t *testing.T) {
		cfg := base()
		cfg.Kafka.PostingsTopic = ""
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "KAFKA_POSTINGS_TOPIC")
	})

	t.Run("missing postgres url", func(t *testing.T) {
		cfg := base()
		cfg.Postgres.URL = ""
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "POSTGRES_URL")
	})

	t.Run("zero publisher pool", func(t *testing.T) {
		cfg := base()
		cfg.Publisher.PoolSize = 0
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PUBLISHER_POOL_SIZE")
	})

	t.Run("multiple failures joined", func(t *testing.T) {
		cfg := base()
		cfg.Server.Port = 0
		cfg.MongoDB.URI = ""
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SERVER_PORT")
		assert.Contains(t, err.Error(), "MONGO_URI")
	})
}
