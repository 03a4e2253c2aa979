// Package config 统一配置管理
//
// 配置加载优先级（高→低）：
//  1. 环境变量（通过 .env 文件或 shell/systemd 注入）
//  2. YAML 配置文件（{env}.yaml，如 dev.yaml、test.yaml、prod.yaml）
//  3. 代码硬编码默认值
//
// 凭据单一数据源：
//
//	密码/密钥只存在 .env 文件或进程环境中（YAML 中不存储任何密码）。
//
// 配置路径确定策略：
//  1. --config 命令行参数（SetConfigDir）
//  2. CONFIG_DIR 环境变量
//  3. 按 APP_ENV 选择默认路径：
//     - prod → /etc/hiring-portal/
//     - dev/test → ./configs/
package config

import "time"

// Environment 环境类型
type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "dev"
)

// YAMLConfig YAML 配置文件结构
type YAMLConfig struct {
	APIServer    APIServerConfig    `yaml:"api_server"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	MinIO        MinIOConfig        `yaml:"minio"`
	Auth         AuthConfig         `yaml:"auth"`
	Upload       UploadConfig       `yaml:"upload"`
	Verification VerificationConfig `yaml:"verification"`
	Notify       NotifyConfig       `yaml:"notify"`
	Upstream     UpstreamConfig     `yaml:"upstream"`
	Reconcile    ReconcileConfig    `yaml:"reconcile"`
	Log          LogConfig          `yaml:"log"`
}

// AuthConfig 认证配置
// 注意：JWTSecret 只从环境变量读取，不存储在 YAML 中
type AuthConfig struct {
	JWTSecret       string `yaml:"-"`                 // 只从 JWT_SECRET 环境变量读取
	AccessTokenTTL  string `yaml:"access_token_ttl"`  // 例如 "15m"
	RefreshTokenTTL string `yaml:"refresh_token_ttl"` // 例如 "168h"
}

// APIServerConfig API Server 配置
type APIServerConfig struct {
	Port        string   `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // "postgres", "sqlite", or "mongodb"（默认 mongodb）
	Path     string `yaml:"path"`   // SQLite 文件路径
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"-"` // 只从环境变量读取（DB_PASSWORD / MONGO_ROOT_PASSWORD）
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
	URI      string `yaml:"uri"` // MongoDB 连接 URI（优先于 host/port）
}

// RedisConfig Redis 配置；Host 与 URL 均为空时使用进程内缓存
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DB       int    `yaml:"db"`
	Password string `yaml:"-"` // 只从 REDIS_PASSWORD 环境变量读取
	URL      string `yaml:"url"`
}

// MinIOConfig MinIO 对象存储配置
type MinIOConfig struct {
	Endpoint      string        `yaml:"endpoint"` // 例如 localhost:9000
	AccessKey     string        `yaml:"-"`        // 只从 MINIO_ROOT_USER 环境变量读取
	SecretKey     string        `yaml:"-"`        // 只从 MINIO_ROOT_PASSWORD 环境变量读取
	UseSSL        bool          `yaml:"use_ssl"`
	Bucket        string        `yaml:"bucket"`
	PublicBaseURL string        `yaml:"public_base_url"` // 为空时返回预签名 URL
	PresignExpiry time.Duration `yaml:"presign_expiry"`
}

// UploadConfig 简历上传限制
type UploadConfig struct {
	MaxResumeBytes    int64    `yaml:"max_resume_bytes"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
}

// VerificationConfig 手机与邮箱验证
type VerificationConfig struct {
	CountryCode     string        `yaml:"country_code"`     // 本地号码补全的国家码，默认 62
	CodeTTL         time.Duration `yaml:"code_ttl"`         // 验证码有效期
	MaxAttempts     int           `yaml:"max_attempts"`     // 单个验证码允许的错误次数
	RequestInterval time.Duration `yaml:"request_interval"` // 同一用户两次申请验证码的最小间隔
	RequestBurst    int           `yaml:"request_burst"`    // 允许的突发次数
	EmailTokenTTL   time.Duration `yaml:"email_token_ttl"`  // 邮箱验证令牌有效期
	EmailVerifyURL  string        `yaml:"email_verify_url"` // 邮件中的验证链接前缀
}

// NotifyConfig 短信/邮件中继
type NotifyConfig struct {
	RelayURL   string `yaml:"relay_url"` // 为空时仅记录日志
	RelayToken string `yaml:"-"`         // 只从 RELAY_TOKEN 环境变量读取
}

// UpstreamConfig 外部协作方调用超时
type UpstreamConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// ReconcileConfig 申请计数对账
type ReconcileConfig struct {
	Interval time.Duration `yaml:"interval"` // 0 表示关闭
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config 应用配置（最终使用的配置）
type Config struct {
	Env            Environment
	DatabaseDriver string // "postgres", "sqlite", or "mongodb"
	DatabaseURL    string
	DatabaseDBName string // MongoDB 数据库名称
	RedisURL       string // 为空时使用进程内缓存
	APIPort        string
	CORSOrigins    []string
	Auth           AuthConfig
	MinIO          MinIOConfig
	Upload         UploadConfig
	Verification   VerificationConfig
	Notify         NotifyConfig
	Upstream       UpstreamConfig
	Reconcile      ReconcileConfig
	Log            LogConfig
	ConfigFilePath string // 实际加载的配置文件路径
}

// yamlConfigInternal 内部包装，记录配置文件来源（不参与 YAML 序列化）
type yamlConfigInternal struct {
	YAMLConfig `yaml:",inline"`
	loadedFrom string
}
