package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Load 加载配置
//  1. 加载 .env.{env}（敏感信息）
//  2. 加载 {env}.yaml
//  3. 环境变量覆盖并填充默认值
func Load() *Config {
	env := parseEnv(getEnv("APP_ENV", "dev"))
	loadEnvFiles(env)

	yamlCfg := loadYAMLConfig(env)

	yamlCfg.Database.Password = firstEnv("DB_PASSWORD", "MONGO_ROOT_PASSWORD")
	yamlCfg.Redis.Password = os.Getenv("REDIS_PASSWORD")

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		databaseURL = buildDatabaseURL(yamlCfg.Database, yamlCfg.Database.Password)
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = buildRedisURL(yamlCfg.Redis)
	}

	cfg := &Config{
		Env:            env,
		DatabaseDriver: detectDatabaseDriver(yamlCfg.Database.Driver, databaseURL),
		DatabaseURL:    databaseURL,
		DatabaseDBName: getEnv("MONGO_DB_NAME", yamlCfg.Database.Name),
		RedisURL:       redisURL,
		APIPort:        getEnv("API_PORT", yamlCfg.APIServer.Port),
		CORSOrigins:    yamlCfg.APIServer.CORSOrigins,
		Auth:           yamlCfg.Auth,
		MinIO:          yamlCfg.MinIO,
		Upload:         yamlCfg.Upload,
		Verification:   yamlCfg.Verification,
		Notify:         yamlCfg.Notify,
		Upstream:       yamlCfg.Upstream,
		Reconcile:      yamlCfg.Reconcile,
		Log:            yamlCfg.Log,
		ConfigFilePath: yamlCfg.loadedFrom,
	}

	cfg.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.MinIO.AccessKey = os.Getenv("MINIO_ROOT_USER")
	cfg.MinIO.SecretKey = os.Getenv("MINIO_ROOT_PASSWORD")
	cfg.Notify.RelayToken = os.Getenv("RELAY_TOKEN")
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.MinIO.Endpoint = v
	}
	if v := os.Getenv("RELAY_URL"); v != "" {
		cfg.Notify.RelayURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	cfg.applyDefaults()
	return cfg
}

// Defaults 仅由内置默认值构成的配置，不读取文件与环境变量
func Defaults() *Config {
	def := defaultYAMLConfig()
	cfg := &Config{
		Env:            EnvDevelopment,
		DatabaseDriver: "sqlite",
		DatabaseURL:    ":memory:",
		APIPort:        def.APIServer.Port,
		Auth:           def.Auth,
		MinIO:          def.MinIO,
		Upload:         def.Upload,
		Verification:   def.Verification,
		Upstream:       def.Upstream,
		Reconcile:      def.Reconcile,
		Log:            def.Log,
	}
	cfg.applyDefaults()
	return cfg
}

// defaultYAMLConfig 代码内置默认值
func defaultYAMLConfig() YAMLConfig {
	return YAMLConfig{
		APIServer: APIServerConfig{Port: "8080"},
		Database:  DatabaseConfig{Host: "localhost", Port: 27017, Name: "hiring_portal", SSLMode: "disable"},
		MinIO:     MinIOConfig{Endpoint: "localhost:9000", Bucket: "hiring-portal", PresignExpiry: 24 * time.Hour},
		Auth:      AuthConfig{AccessTokenTTL: "15m", RefreshTokenTTL: "168h"},
		Upload: UploadConfig{
			MaxResumeBytes:    5 << 20,
			AllowedExtensions: []string{".pdf", ".doc", ".docx"},
		},
		Verification: VerificationConfig{
			CountryCode:     "62",
			CodeTTL:         5 * time.Minute,
			MaxAttempts:     5,
			RequestInterval: time.Minute,
			RequestBurst:    1,
			EmailTokenTTL:   24 * time.Hour,
		},
		Upstream:  UpstreamConfig{Timeout: 10 * time.Second},
		Reconcile: ReconcileConfig{Interval: 10 * time.Minute},
		Log:       LogConfig{Level: "info", Format: "text"},
	}
}

// loadYAMLConfig 加载 YAML 配置文件
// 加载顺序：默认值 → {env}.yaml
func loadYAMLConfig(env Environment) *yamlConfigInternal {
	cfg := &yamlConfigInternal{YAMLConfig: defaultYAMLConfig()}

	filename := fmt.Sprintf("%s.yaml", env)
	for _, base := range effectiveConfigPaths() {
		path := filepath.Join(base, filename)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, &cfg.YAMLConfig); err != nil {
			log.Printf("[config] Failed to parse %s: %v", path, err)
			break
		}
		cfg.loadedFrom = path
		break
	}

	return cfg
}

// applyDefaults YAML 中显式置零的关键字段回退到默认值
func (c *Config) applyDefaults() {
	def := defaultYAMLConfig()
	if c.APIPort == "" {
		c.APIPort = def.APIServer.Port
	}
	if c.DatabaseDBName == "" {
		c.DatabaseDBName = def.Database.Name
	}
	if c.Upload.MaxResumeBytes <= 0 {
		c.Upload.MaxResumeBytes = def.Upload.MaxResumeBytes
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		c.Upload.AllowedExtensions = def.Upload.AllowedExtensions
	}
	if c.Verification.CountryCode == "" {
		c.Verification.CountryCode = def.Verification.CountryCode
	}
	if c.Verification.CodeTTL <= 0 {
		c.Verification.CodeTTL = def.Verification.CodeTTL
	}
	if c.Verification.MaxAttempts <= 0 {
		c.Verification.MaxAttempts = def.Verification.MaxAttempts
	}
	if c.Verification.RequestBurst <= 0 {
		c.Verification.RequestBurst = def.Verification.RequestBurst
	}
	if c.Verification.EmailTokenTTL <= 0 {
		c.Verification.EmailTokenTTL = def.Verification.EmailTokenTTL
	}
	if c.Upstream.Timeout <= 0 {
		c.Upstream.Timeout = def.Upstream.Timeout
	}
	if c.MinIO.PresignExpiry <= 0 {
		c.MinIO.PresignExpiry = def.MinIO.PresignExpiry
	}
}

// Validate 检查启动必需项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		if c.Env == EnvProduction {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		log.Printf("[config] WARNING: JWT_SECRET not set, using insecure development secret")
		c.Auth.JWTSecret = "dev-insecure-secret"
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("database url is empty")
	}
	return nil
}
