package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig 应用配置
type AppConfig struct {
	Server  ServerConfig  `toml:"server"`
	Data    DataConfig    `toml:"data"`
	Extract ExtractConfig `toml:"extract"`
	LLM     LLMConfig     `toml:"llm"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// ExtractConfig 提取引擎配置
type ExtractConfig struct {
	HeaderScanRows int      `toml:"header_scan_rows"`
	MinHeaderHits  int      `toml:"min_header_hits"`
	FuzzyThreshold float64  `toml:"fuzzy_threshold"`
	StageOrder     []string `toml:"stage_order"`
}

// LLMConfig 外部分类器配置
// API Key 只从环境变量读取，不落盘
type LLMConfig struct {
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20312,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Extract: ExtractConfig{
			HeaderScanRows: 5,
			MinHeaderHits:  2,
			FuzzyThreshold: 0.75,
		},
		LLM: LLMConfig{
			TimeoutSeconds: 30,
		},
	}
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfig 从可执行文件同目录的 config.toml 加载配置
// 文件不存在时使用默认配置；环境变量最后覆盖
func LoadConfig() (*AppConfig, error) {
	config := DefaultConfig()

	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	configPath := filepath.Join(exeDir, "config.toml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(config)
			return config, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	applyEnv(config)
	return config, nil
}

// applyEnv 环境变量覆盖（用于 E2E / 容器运行）
func applyEnv(config *AppConfig) {
	if v := os.Getenv("PRODLINE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("PRODLINE_DATA_DIR"); v != "" {
		config.Data.DataDir = v
	}
	if v := os.Getenv("PRODLINE_LLM_BASE_URL"); v != "" {
		config.LLM.BaseURL = v
	}
	if v := os.Getenv("PRODLINE_LLM_MODEL"); v != "" {
		config.LLM.Model = v
	}
}

// OpenAIAPIKey LLM 分类器的 API Key
// 为空表示禁用外部分类器
func OpenAIAPIKey() string {
	if v := os.Getenv("PRODLINE_OPENAI_API_KEY"); v != "" {
		return v
	}
	return os.Getenv("OPENAI_API_KEY")
}

// SaveConfig 保存配置到 config.toml
func SaveConfig(config *AppConfig) error {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	configPath := filepath.Join(exeDir, "config.toml")

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0644)
}

// EnsureDataDir 确保数据目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	dataDir := config.Data.DataDir
	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(exeDir, dataDir)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}
