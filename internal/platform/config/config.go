package config

import (
	"os"
	"strconv"
	"time"

	pstrings "idscan/pkg/platform/strings"
)

// Server captures process level configuration. Scan tunables live in the
// tuning file referenced by TuningFile.
type Server struct {
	Addr       string
	LogLevel   string
	LogFormat  string
	TuningFile string

	// OperatorToken guards mutating scanner controls when non-empty.
	OperatorToken string

	DeviceHandle string
	StagingDir   string
	OutputDir    string
	AutoStart    bool

	// StagingExtensions overrides the image extensions the scanner writes.
	StagingExtensions []string

	// SimulateDir, when set, replaces the native library with the
	// directory-driven simulator.
	SimulateDir string

	Redis       RedisConfig
	PostgresDSN string
}

// RedisConfig configures the optional notification publisher.
type RedisConfig struct {
	URL          string
	Channel      string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:         getenv("IDSCAN_ADDR", ":8080"),
		LogLevel:     getenv("IDSCAN_LOG_LEVEL", "info"),
		LogFormat:    getenv("IDSCAN_LOG_FORMAT", "json"),
		TuningFile:   os.Getenv("IDSCAN_TUNING_FILE"),
		DeviceHandle: os.Getenv("IDSCAN_DEVICE_HANDLE"),
		StagingDir:   getenv("IDSCAN_STAGING_DIR", os.TempDir()),
		OutputDir:    getenv("IDSCAN_OUTPUT_DIR", "scans"),
		AutoStart:    os.Getenv("IDSCAN_AUTO_START") != "false",
		SimulateDir:  os.Getenv("IDSCAN_SIMULATE_DIR"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			Channel:      getenv("IDSCAN_REDIS_CHANNEL", "idscan.events"),
			PoolSize:     getint("REDIS_POOL_SIZE", 4),
			MinIdleConns: getint("REDIS_MIN_IDLE_CONNS", 1),
			DialTimeout:  getduration("REDIS_DIAL_TIMEOUT", 2*time.Second),
			ReadTimeout:  getduration("REDIS_READ_TIMEOUT", time.Second),
			WriteTimeout: getduration("REDIS_WRITE_TIMEOUT", time.Second),
		},
		PostgresDSN:       os.Getenv("DATABASE_URL"),
		OperatorToken:     os.Getenv("IDSCAN_OPERATOR_TOKEN"),
		StagingExtensions: pstrings.SplitList(os.Getenv("IDSCAN_STAGING_EXTENSIONS")),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}
