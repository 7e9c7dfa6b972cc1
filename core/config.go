package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	DatabaseConfig struct {
		Engine     string // postgres | sqlite3
		Host       string
		Port       int
		Name       string
		User       string
		Password   string
		DisableTLS bool
		Path       string // sqlite3 only
	}

	RedisConfig struct {
		Addr     string
		Password string
		DB       int
	}

	ServerConfig struct {
		Address            string
		Host               string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	UploadConfig struct {
		Driver  string // local | gcs
		Dir     string
		BaseURL string
		Bucket  string
	}

	Config struct {
		Env               string
		Build             string
		Debug             bool
		TestMode          bool
		AppName           string
		SecretKey         string
		AdminPasscodeHash string
		RollbarToken      string
		SettingsDriver    string // memory | postgres | sqlite | redis
		CachePath         string
		SyncInterval      time.Duration
		WorkDir           string

		Server   ServerConfig
		Database DatabaseConfig
		Redis    RedisConfig
		Upload   UploadConfig
	}
)

func (dc DatabaseConfig) Address() string {
	if dc.Port == 0 {
		return dc.Host
	}
	return dc.Host + ":" + itoa(dc.Port)
}

// NewConfig reads the configuration from the environment (prefixed with ENV) and
// from config/.env.<env> when that file exists.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Madrasa Hub")
	v.SetDefault("secretKey", "l7q$x2k+0f!ce9)8w=m4u_r(3z#h*vb5&jd1ny6-gsa@po")
	v.SetDefault("adminPasscodeHash", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("settingsDriver", "memory")
	v.SetDefault("cachePath", filepath.Join(os.TempDir(), "madrasahub", "class_config.json"))
	v.SetDefault("syncInterval", 15*time.Minute)
	v.SetDefault("serverAddress", ":8000")
	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 12*time.Hour)
	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", 5432)
	v.SetDefault("dbName", "madrasahub")
	v.SetDefault("dbUser", "")
	v.SetDefault("dbPassword", "")
	v.SetDefault("dbDisableTLS", true)
	v.SetDefault("dbPath", "data/madrasahub.db")
	v.SetDefault("redisAddr", "localhost:6379")
	v.SetDefault("redisPassword", "")
	v.SetDefault("redisDB", 0)
	v.SetDefault("uploadDriver", "local")
	v.SetDefault("uploadDir", "media")
	v.SetDefault("uploadBaseURL", "http://localhost:8000/media")
	v.SetDefault("uploadBucket", "resources")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:               env,
		Build:             v.GetString("build"),
		Debug:             v.GetBool("debug"),
		TestMode:          v.GetBool("testMode"),
		AppName:           v.GetString("appName"),
		SecretKey:         v.GetString("secretKey"),
		AdminPasscodeHash: v.GetString("adminPasscodeHash"),
		RollbarToken:      v.GetString("rollbarToken"),
		SettingsDriver:    strings.ToLower(v.GetString("settingsDriver")),
		CachePath:         v.GetString("cachePath"),
		SyncInterval:      v.GetDuration("syncInterval"),
		WorkDir:           wd,
		Server: ServerConfig{
			Address:            v.GetString("serverAddress"),
			Host:               v.GetString("serverHost"),
			ShutdownTimeout:    v.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta: v.GetDuration("jwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:     v.GetString("dbEngine"),
			Host:       v.GetString("dbHost"),
			Port:       v.GetInt("dbPort"),
			Name:       v.GetString("dbName"),
			User:       v.GetString("dbUser"),
			Password:   v.GetString("dbPassword"),
			DisableTLS: v.GetBool("dbDisableTLS"),
			Path:       v.GetString("dbPath"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redisAddr"),
			Password: v.GetString("redisPassword"),
			DB:       v.GetInt("redisDB"),
		},
		Upload: UploadConfig{
			Driver:  strings.ToLower(v.GetString("uploadDriver")),
			Dir:     v.GetString("uploadDir"),
			BaseURL: v.GetString("uploadBaseURL"),
			Bucket:  v.GetString("uploadBucket"),
		},
	}
}
