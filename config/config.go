package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	globalConfig Config
	once         sync.Once
)

// Config holds the flattened application configuration.
type Config struct {
	// Server
	ServerHost         string        `mapstructure:"server_host"`
	ServerPort         int           `mapstructure:"server_port"`
	ServerDomain       string        `mapstructure:"server_domain"`
	ServerReadTimeout  time.Duration `mapstructure:"server_read_timeout"`
	ServerWriteTimeout time.Duration `mapstructure:"server_write_timeout"`
	ServerIdleTimeout  time.Duration `mapstructure:"server_idle_timeout"`

	// Database
	DBType            string `mapstructure:"db_type"`
	DBHost            string `mapstructure:"db_host"`
	DBPort            int    `mapstructure:"db_port"`
	DBUsername        string `mapstructure:"db_username"`
	DBPassword        string `mapstructure:"db_password"`
	DBName            string `mapstructure:"db_name"`
	DBFilePath        string `mapstructure:"db_file_path"`
	DBMaxOpenConns    int    `mapstructure:"db_max_open_conns"`
	DBMaxIdleConns    int    `mapstructure:"db_max_idle_conns"`
	DBConnMaxLifetime int    `mapstructure:"db_conn_max_lifetime"`

	// Storage
	StorageType          string `mapstructure:"storage_type"`
	StorageBucket        string `mapstructure:"storage_bucket"`
	StorageLocalPath     string `mapstructure:"storage_local_path"`
	StorageEndpoint      string `mapstructure:"storage_endpoint"`
	StorageAccessKey     string `mapstructure:"storage_access_key"`
	StorageSecretKey     string `mapstructure:"storage_secret_key"`
	StorageUseSSL        bool   `mapstructure:"storage_use_ssl"`
	StoragePublicBaseURL string `mapstructure:"storage_public_base_url"`
	WebdavURL            string `mapstructure:"webdav_url"`
	WebdavUsername       string `mapstructure:"webdav_username"`
	WebdavPassword       string `mapstructure:"webdav_password"`

	// Auth
	JwtSecret           string        `mapstructure:"jwt_secret"`
	JwtExpiresIn        time.Duration `mapstructure:"jwt_expires_in"`
	JwtRefreshExpiresIn time.Duration `mapstructure:"jwt_refresh_expires_in"`
	AuthAllowAllAdmins  bool          `mapstructure:"auth_allow_all_admins"`

	// Rate limiting
	RateLimitAuthRPS    float64       `mapstructure:"rate_limit_auth_rps"`
	RateLimitAuthBurst  int           `mapstructure:"rate_limit_auth_burst"`
	RateLimitAPIRPS     float64       `mapstructure:"rate_limit_api_rps"`
	RateLimitAPIBurst   int           `mapstructure:"rate_limit_api_burst"`
	RateLimitExpireTime time.Duration `mapstructure:"rate_limit_expire_time"`

	// Uploads
	UploadMaxSizeMB int `mapstructure:"upload_max_size_mb"`

	// Site content
	BrochurePath string `mapstructure:"brochure_path"`

	// Reconciliation sweep
	ReconcileEnabled  bool          `mapstructure:"reconcile_enabled"`
	ReconcileInterval time.Duration `mapstructure:"reconcile_interval"`
}

// InitConfig Initialize configuration
func InitConfig() {
	once.Do(func() {
		loadConfig()
	})
}

func Get() *Config {
	return &globalConfig
}

// loadConfig Core configuration loading
func loadConfig() {
	setDefaults()

	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "Info: .env file not found, using defaults and environment variables")
	} else {
		fmt.Fprintln(os.Stderr, "Info: Loaded configuration from .env file")
	}

	viper.AutomaticEnv()
	for _, key := range viper.AllKeys() {
		viper.BindEnv(key)
	}

	if err := viper.Unmarshal(&globalConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: Unable to unmarshal config, %v\n", err)
		os.Exit(1)
	}
}

// setDefaults registers a default for every configuration key.
func setDefaults() {
	viper.SetDefault("server_host", "127.0.0.1")
	viper.SetDefault("server_port", 8080)
	viper.SetDefault("server_domain", "")
	viper.SetDefault("server_read_timeout", "15s")
	viper.SetDefault("server_write_timeout", "30s")
	viper.SetDefault("server_idle_timeout", "120s")

	viper.SetDefault("db_type", "sqlite")
	viper.SetDefault("db_host", "localhost")
	viper.SetDefault("db_port", 5432)
	viper.SetDefault("db_username", "postgres")
	viper.SetDefault("db_password", "")
	viper.SetDefault("db_name", "abofield")
	viper.SetDefault("db_file_path", "")
	viper.SetDefault("db_max_open_conns", 100)
	viper.SetDefault("db_max_idle_conns", 25)
	viper.SetDefault("db_conn_max_lifetime", 3600)

	viper.SetDefault("storage_type", "local")
	viper.SetDefault("storage_bucket", "images")
	viper.SetDefault("storage_local_path", "./data/uploads")
	viper.SetDefault("storage_endpoint", "")
	viper.SetDefault("storage_access_key", "")
	viper.SetDefault("storage_secret_key", "")
	viper.SetDefault("storage_use_ssl", false)
	viper.SetDefault("storage_public_base_url", "")
	viper.SetDefault("webdav_url", "")
	viper.SetDefault("webdav_username", "")
	viper.SetDefault("webdav_password", "")

	viper.SetDefault("jwt_secret", "")
	viper.SetDefault("jwt_expires_in", "15m")
	viper.SetDefault("jwt_refresh_expires_in", "168h")
	viper.SetDefault("auth_allow_all_admins", false)

	viper.SetDefault("rate_limit_auth_rps", 0.5)
	viper.SetDefault("rate_limit_auth_burst", 5)
	viper.SetDefault("rate_limit_api_rps", 30.0)
	viper.SetDefault("rate_limit_api_burst", 60)
	viper.SetDefault("rate_limit_expire_time", "10m")

	viper.SetDefault("upload_max_size_mb", 10)

	viper.SetDefault("brochure_path", "/brochure_abofield.pdf")

	viper.SetDefault("reconcile_enabled", false)
	viper.SetDefault("reconcile_interval", "30m")
}

// Addr returns the listen address in "host:port" form.
func (c *Config) Addr() string {
	host := c.ServerHost
	if host == "" {
		host = "0.0.0.0"
	}
	port := c.ServerPort
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// BaseURL returns the public base URL used when building image links.
func (c *Config) BaseURL() string {
	if c.ServerDomain != "" {
		return c.ServerDomain
	}
	host := c.ServerHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, c.ServerPort)
}
