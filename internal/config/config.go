package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config 是 maomitts 的顶层配置结构。
type Config struct {
	Speech SpeechConfig `yaml:"speech"`
	Engine EngineConfig `yaml:"engine"`
	Cache  CacheConfig  `yaml:"cache"`
	Log    LogConfig    `yaml:"log"`
}

// SpeechConfig 朗读默认参数。
type SpeechConfig struct {
	// Voice 默认朗读语音名称，为空则使用引擎默认语音。
	Voice string `yaml:"voice"`
	// Language 默认语言文化标签，如 zh-CN。
	Language string `yaml:"language"`
	// Rate 默认语速，-10 到 10，0 为正常语速。
	Rate int `yaml:"rate"`
	// Volume 默认音量，0 到 100，超过 100 会被截断为 100。
	Volume int `yaml:"volume"`
	// WaitTimeoutSec 等待异步朗读完成的超时时间（秒），0 表示不限时。
	WaitTimeoutSec int `yaml:"wait_timeout_sec"`
}

// EngineConfig 语音合成引擎配置。
type EngineConfig struct {
	// Backend 引擎后端: system, edge, tencent。
	Backend string        `yaml:"backend"`
	Edge    EdgeConfig    `yaml:"edge"`
	Tencent TencentConfig `yaml:"tencent"`
}

// EdgeConfig Edge TTS 引擎配置。
type EdgeConfig struct {
	Voice string `yaml:"voice"`
}

// TencentConfig 腾讯云 TTS 引擎配置。
type TencentConfig struct {
	SecretID  string  `yaml:"secret_id"`
	SecretKey string  `yaml:"secret_key"`
	VoiceType int64   `yaml:"voice_type"`
	Region    string  `yaml:"region"`
	Speed     float64 `yaml:"speed"`
}

// CacheConfig 合成结果缓存配置。
type CacheConfig struct {
	// Enabled 是否启用缓存。
	Enabled bool `yaml:"enabled"`
	// Dir 缓存目录，为空则使用 ~/.maomitts/cache。
	Dir string `yaml:"dir"`
}

// LogConfig 日志配置。
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load 读取 YAML 配置文件并返回 Config。
// 支持 ${VAR_NAME} 形式的环境变量展开。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}

	// 展开环境变量，如 ${MAOMITTS_TENCENT_SECRET_KEY}
	expanded := os.Expand(string(data), func(key string) string {
		return os.Getenv(key)
	})

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}

	setDefaults(cfg)
	return cfg, nil
}

// Default 返回不依赖配置文件的默认配置。
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// setDefaults 为未设置的字段填充默认值。
func setDefaults(cfg *Config) {
	if cfg.Speech.Language == "" {
		cfg.Speech.Language = "zh-CN"
	}
	if cfg.Speech.Volume == 0 {
		cfg.Speech.Volume = 100
	}
	if cfg.Engine.Backend == "" {
		cfg.Engine.Backend = "system"
	}
	if cfg.Engine.Edge.Voice == "" {
		cfg.Engine.Edge.Voice = "zh-CN-XiaoxiaoNeural"
	}
	if cfg.Engine.Tencent.Region == "" {
		cfg.Engine.Tencent.Region = "ap-guangzhou"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
