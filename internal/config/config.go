package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Port string `mapstructure:"port"`
		Env  string `mapstructure:"env"`
	} `mapstructure:"app"`
	HTTP struct {
		AllowOrigins   []string `mapstructure:"allow_origins"`
		RateLimit      float64  `mapstructure:"rate_limit"`
		RateBurst      int      `mapstructure:"rate_burst"`
		MaxUploadBytes int64    `mapstructure:"max_upload_bytes"`
	} `mapstructure:"http"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Cache struct {
		PageTTL   time.Duration `mapstructure:"page_ttl"`
		KeyPrefix string        `mapstructure:"key_prefix"`
	} `mapstructure:"cache"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		GroupID string   `mapstructure:"group_id"`
	} `mapstructure:"kafka"`
	Cloudinary struct {
		CloudName string `mapstructure:"cloud_name"`
		ApiKey    string `mapstructure:"api_key"`
		ApiSecret string `mapstructure:"api_secret"`
	} `mapstructure:"cloudinary"`
	Media struct {
		Driver      string `mapstructure:"driver"`
		Folder      string `mapstructure:"folder"`
		AspectRatio string `mapstructure:"aspect_ratio"`
		Width       int    `mapstructure:"width"`
		Crop        string `mapstructure:"crop"`
		Gravity     string `mapstructure:"gravity"`
		MaxResults  int    `mapstructure:"max_results"`
	} `mapstructure:"media"`
	Jaeger struct {
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	} `mapstructure:"jaeger"`
}

func setDefaults() {
	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("http.allow_origins", []string{"*"})
	viper.SetDefault("http.rate_limit", 5.0)
	viper.SetDefault("http.rate_burst", 10)
	viper.SetDefault("http.max_upload_bytes", 10<<20)
	viper.SetDefault("cache.page_ttl", 10*time.Minute)
	viper.SetDefault("cache.key_prefix", "page:")
	viper.SetDefault("kafka.group_id", "gallery-warmer-group")
	viper.SetDefault("media.driver", "cloudinary")
	viper.SetDefault("media.folder", "tienda")
	viper.SetDefault("media.aspect_ratio", "1.62")
	viper.SetDefault("media.width", 600)
	viper.SetDefault("media.crop", "fill")
	viper.SetDefault("media.gravity", "center")
	viper.SetDefault("media.max_results", 500)
}

// LoadConfig reads config.yaml from the given directories (or "."), then .env and the
// process environment. Environment always wins.
func LoadConfig(paths ...string) (cfg Config, err error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	err = godotenv.Load()
	if err != nil {
		log.Println("warning: .env file not found, use default.")
	}

	viper.Reset()
	setDefaults()

	for _, p := range paths {
		viper.AddConfigPath(p)
	}
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if err = viper.ReadInConfig(); err != nil {
		log.Printf("note: config.yaml not found, read .env only. Error: %v", err)
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.BindEnv("app.port", "APP_PORT")
	viper.BindEnv("app.env", "APP_ENV")
	viper.BindEnv("http.allow_origins", "HTTP_ALLOW_ORIGINS")
	viper.BindEnv("http.rate_limit", "HTTP_RATE_LIMIT")
	viper.BindEnv("http.rate_burst", "HTTP_RATE_BURST")
	viper.BindEnv("http.max_upload_bytes", "HTTP_MAX_UPLOAD_BYTES")
	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")
	viper.BindEnv("cache.page_ttl", "CACHE_PAGE_TTL")
	viper.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	viper.BindEnv("kafka.group_id", "KAFKA_GROUP_ID")
	viper.BindEnv("jaeger.otlp_endpoint", "OTLP_ENDPOINT")

	viper.BindEnv("cloudinary.cloud_name", "CLOUDINARY_CLOUD_NAME")
	viper.BindEnv("cloudinary.api_key", "CLOUDINARY_API_KEY")
	viper.BindEnv("cloudinary.api_secret", "CLOUDINARY_API_SECRET")

	viper.BindEnv("media.driver", "MEDIA_DRIVER")
	viper.BindEnv("media.folder", "MEDIA_FOLDER")

	err = viper.Unmarshal(&cfg)
	return
}
