package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/agrorec/core"
	"github.com/rushteam/agrorec/pkg/logging"
)

// DefaultConfigPaths 按优先级列出配置文件的查找路径，使用第一个存在的文件。
var DefaultConfigPaths = []string{
	"agrorec.yaml",
	"agrorec.yml",
	"/etc/agrorec/agrorec.yaml",
}

const (
	// ConfigPathEnvVar 可覆盖配置文件路径。
	ConfigPathEnvVar = "AGROREC_CONFIG"

	// EnvPrefix 是环境变量覆盖的前缀，如 AGROREC_SERVER_ADDR → server.addr。
	EnvPrefix = "AGROREC_"
)

// 数据来源
const (
	SourceEmbedded = "embedded"
	SourceDir      = "dir"
	SourceStore    = "store"
)

// AppConfig 是进程级配置。
type AppConfig struct {
	Log      logging.Config   `koanf:"log"`
	Server   ServerConfig     `koanf:"server"`
	Data     DataConfig       `koanf:"data"`
	Store    StoreConfig      `koanf:"store"`
	Defaults core.Preferences `koanf:"defaults"`
}

type ServerConfig struct {
	Addr              string        `koanf:"addr" validate:"required"`
	RequestTimeout    time.Duration `koanf:"request_timeout" validate:"gt=0"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout" validate:"gt=0"`
}

// DataConfig 决定快照从哪里加载。
//   - embedded: 使用二进制内嵌的表
//   - dir: 从 Dir 读取 YAML 表，RatingsCSV 非空时覆盖评分文件
//   - store: 从 KV 存储读取（需先执行 seed）
type DataConfig struct {
	Source     string `koanf:"source" validate:"oneof=embedded dir store"`
	Dir        string `koanf:"dir" validate:"required_if=Source dir"`
	RatingsCSV string `koanf:"ratings_csv"`

	// Pipeline 为空时使用内置的默认 Pipeline。
	Pipeline string `koanf:"pipeline"`
}

type StoreConfig struct {
	Driver    string `koanf:"driver" validate:"oneof=memory redis"`
	RedisAddr string `koanf:"redis_addr" validate:"required_if=Driver redis"`
	RedisDB   int    `koanf:"redis_db" validate:"gte=0"`
	KeyPrefix string `koanf:"key_prefix" validate:"required"`
}

// DefaultAppConfig 返回默认配置，先于配置文件与环境变量加载。
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Log: logging.Config{Level: "info", Format: "json"},
		Server: ServerConfig{
			Addr:              ":8080",
			RequestTimeout:    5 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
		},
		Data: DataConfig{Source: SourceEmbedded},
		Store: StoreConfig{
			Driver:    "memory",
			RedisAddr: "localhost:6379",
			KeyPrefix: "agrorec",
		},
		Defaults: core.DefaultPreferences(),
	}
}

// LoadAppConfig 分层加载配置：
//  1. 默认值
//  2. YAML 配置文件（path 为空时依次查找 AGROREC_CONFIG 与 DefaultConfigPaths，都不存在则跳过）
//  3. AGROREC_* 环境变量
func LoadAppConfig(path string) (*AppConfig, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultAppConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &AppConfig{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate 校验配置；默认偏好的营养目标会被规范化为内部取值。
func (c *AppConfig) Validate() error {
	obj, err := core.ParseNutritionObjective(string(c.Defaults.NutritionObjective))
	if err != nil {
		return err
	}
	c.Defaults.NutritionObjective = obj
	return validator.New().Struct(c)
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings 列出字段名本身带下划线的配置项；其余变量按第一个下划线拆成 section.key。
var envMappings = map[string]string{
	"server_request_timeout":       "server.request_timeout",
	"server_read_header_timeout":   "server.read_header_timeout",
	"data_ratings_csv":             "data.ratings_csv",
	"store_redis_addr":             "store.redis_addr",
	"store_redis_db":               "store.redis_db",
	"store_key_prefix":             "store.key_prefix",
	"defaults_max_distance_km":     "defaults.max_distance_km",
	"defaults_organic_only":        "defaults.organic_only",
	"defaults_nutrition_objective": "defaults.nutrition_objective",
	"defaults_desired_products":    "defaults.desired_products",
	"defaults_top_n":               "defaults.top_n",
	"defaults_consider_regional":   "defaults.consider_regional_relevance",
	"weight_distance":              "defaults.weights.distance",
	"weight_rating":                "defaults.weights.rating",
	"weight_nutrition":             "defaults.weights.nutrition",
	"weight_regional":              "defaults.weights.regional",
	"weight_collaborative":         "defaults.weights.collaborative",
}

// envTransformFunc 将 AGROREC_SERVER_ADDR 转换为 server.addr；AGROREC_CONFIG 本身被忽略。
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if key == "config" {
		return ""
	}
	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	section, rest, ok := strings.Cut(key, "_")
	if !ok {
		return ""
	}
	return section + "." + rest
}

// processSliceFields 将环境变量中逗号分隔的字符串转换为切片。
func processSliceFields(k *koanf.Koanf) error {
	for _, field := range []string{"defaults.desired_products"} {
		raw, ok := k.Get(field).(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(field, parts); err != nil {
			return err
		}
	}
	return nil
}
