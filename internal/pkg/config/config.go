package config

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	App       AppConfig       `mapstructure:"app"`
	OSS       OSSConfig       `mapstructure:"oss"`
	Content   ContentConfig   `mapstructure:"content"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Worker    WorkerConfig    `mapstructure:"worker"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowOrigins    []string      `mapstructure:"allow_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Port     string `mapstructure:"port"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`
}

// DSN gorm/pgx 使用的 key=value 格式连接串
func (d DatabaseConfig) DSN() string {
	return "host=" + d.Host + " user=" + d.User + " password=" + d.Password + " dbname=" + d.DBName +
		" port=" + d.Port + " sslmode=" + d.SSLMode + " TimeZone=" + d.TimeZone
}

// URL golang-migrate 使用的 URL 格式连接串
func (d DatabaseConfig) URL() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Expire int64  `mapstructure:"expire"` // 小时
}

type AppConfig struct {
	Env   string `mapstructure:"env"`
	Debug bool   `mapstructure:"debug"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
}

// ContentConfig 帖子/评论相关规则
type ContentConfig struct {
	PostEditWindow    time.Duration `mapstructure:"post_edit_window"`    // 帖子发布后可编辑时长
	CommentEditWindow time.Duration `mapstructure:"comment_edit_window"` // 评论发布后可编辑时长
	MaxTags           int           `mapstructure:"max_tags"`
	FreePostLimit     int           `mapstructure:"free_post_limit"` // 免费用户累计发帖上限，0 不限
}

// RateLimitConfig 写操作限流（按用户，基于 Redis）
type RateLimitConfig struct {
	IPQPS            float64       `mapstructure:"ip_qps"`
	IPBurst          int           `mapstructure:"ip_burst"`
	VotePerWindow    int           `mapstructure:"vote_per_window"`
	ReportPerWindow  int           `mapstructure:"report_per_window"`
	CommentPerWindow int           `mapstructure:"comment_per_window"`
	Window           time.Duration `mapstructure:"window"`
}

// WorkerConfig 异步通知投递
type WorkerConfig struct {
	Workers   int `mapstructure:"workers"`
	QueueSize int `mapstructure:"queue_size"`
	MaxRetry  int `mapstructure:"max_retry"`
}

var GlobalConfig Config

// Validate 验证配置
func (c *Config) Validate() error {
	// JWT 配置验证
	if c.JWT.Secret == "" || c.JWT.Secret == "your_super_secret_key" {
		return errors.New("please set a secure JWT secret in production")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT secret should be at least 32 characters")
	}

	// 数据库配置验证
	if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
		return errors.New("database configuration is incomplete")
	}

	// Redis 配置验证
	if c.Redis.Addr == "" {
		return errors.New("redis address is required")
	}

	if c.Content.PostEditWindow <= 0 || c.Content.CommentEditWindow <= 0 {
		return errors.New("edit windows must be positive")
	}
	if c.Content.MaxTags <= 0 {
		return errors.New("content.max_tags must be positive")
	}
	if c.Content.FreePostLimit < 0 {
		return errors.New("content.free_post_limit must not be negative")
	}

	// 用户限流窗口作为分桶除数
	if c.RateLimit.Window <= 0 {
		return errors.New("ratelimit.window must be positive")
	}

	return nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.allow_origins", []string{"http://localhost:3000"})
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("jwt.expire", 24*30)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.debug", true)
	v.SetDefault("content.post_edit_window", 10*time.Minute)
	v.SetDefault("content.comment_edit_window", 10*time.Minute)
	v.SetDefault("content.max_tags", 5)
	v.SetDefault("content.free_post_limit", 5)
	v.SetDefault("ratelimit.ip_qps", 50)
	v.SetDefault("ratelimit.ip_burst", 100)
	v.SetDefault("ratelimit.vote_per_window", 60)
	v.SetDefault("ratelimit.report_per_window", 10)
	v.SetDefault("ratelimit.comment_per_window", 20)
	v.SetDefault("ratelimit.window", time.Minute)
	v.SetDefault("worker.workers", 4)
	v.SetDefault("worker.queue_size", 1000)
	v.SetDefault("worker.max_retry", 3)
}

// Load 读取配置文件与环境变量，不做校验
func Load() (Config, error) {
	// .env 只在本地开发时存在
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading env vars from system")
	}

	// 获取环境变量，默认为dev
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	// 根据环境选择配置文件
	configName := "config"
	if env != "dev" {
		configName = "config." + env
	}

	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Printf("Warning: Config file not found, using defaults or env vars: %v", err)
	}

	// 绑定环境变量
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}

	// 手动覆盖，以防 viper 无法正确解析复杂结构或环境变量
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		cfg.Redis.Addr = redisAddr
	}
	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		cfg.JWT.Secret = jwtSecret
	}
	cfg.App.Env = env

	return cfg, nil
}

// LoadConfig 加载并验证配置，失败直接退出
func LoadConfig() {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Unable to decode into struct: %v", err)
	}

	// 验证配置
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	GlobalConfig = cfg
	log.Printf("Configuration loaded and validated successfully. Environment: %s", GlobalConfig.App.Env)
}
