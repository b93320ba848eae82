package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// AppInfo 对应 'app' 部分，包含应用程序的基本信息。
type AppInfo struct {
	Name        string `yaml:"name"`        // 应用程序名称
	Version     string `yaml:"version"`     // 应用程序版本
	Environment string `yaml:"environment"` // 运行环境 (例如: "development", "production")
}

// LoggerConfig 定义了日志记录器的配置。
type LoggerConfig struct {
	Level string `yaml:"level"` // 日志级别 (例如: "info", "debug", "warn", "error")
}

// TelegramConfig 定义了 Telegram Bot API 的连接配置。
type TelegramConfig struct {
	Token       string `yaml:"token"`       // Bot 令牌
	BaseURL     string `yaml:"baseURL"`     // API 地址，默认为 https://api.telegram.org
	PollTimeout int    `yaml:"pollTimeout"` // getUpdates 长轮询超时 (秒)
	PollBackoff string `yaml:"pollBackoff"` // 轮询失败后的等待时间 (例如: "5s")
}

// WikipediaConfig 定义了维基百科访问配置。
type WikipediaConfig struct {
	Language  string `yaml:"language"`  // 语言子域名 (例如: "en")
	BaseURL   string `yaml:"baseURL"`   // 覆盖默认的 https://<language>.wikipedia.org
	UserAgent string `yaml:"userAgent"` // 维基百科要求的 User-Agent
}

// OpenAIConfig 包含了 OpenAI 模型的配置。
type OpenAIConfig struct {
	APIKey  string `yaml:"apiKey"`  // OpenAI API 密钥
	Model   string `yaml:"model"`   // 模型名称
	BaseURL string `yaml:"baseURL"` // 可选的兼容接口地址
}

// OllamaConfig 包含了 Ollama 模型的配置。
type OllamaConfig struct {
	BaseURL string `yaml:"baseURL"` // Ollama 服务地址
	Model   string `yaml:"model"`   // 模型名称
}

// GeminiConfig 包含了 Gemini 模型的配置。
type GeminiConfig struct {
	APIKey string `yaml:"apiKey"` // Gemini API 密钥
	Model  string `yaml:"model"`  // Gemini 模型名称
}

// LLMConfig 包含了不同LLM提供商的配置。
type LLMConfig struct {
	Provider    string       `yaml:"provider"`    // LLM提供商 ("openai", "ollama", "gemini")
	Temperature float32      `yaml:"temperature"` // 采样温度
	RateLimit   float64      `yaml:"rateLimit"`   // 每秒允许的调用次数，0 表示不限制
	Burst       int          `yaml:"burst"`       // 令牌桶容量
	OpenAI      OpenAIConfig `yaml:"openai"`
	Ollama      OllamaConfig `yaml:"ollama"`
	Gemini      GeminiConfig `yaml:"gemini"`
}

// TriviaConfig 定义了趣闻提取流水线的可调参数。
type TriviaConfig struct {
	WindowSize          int      `yaml:"windowSize"`          // 句子窗口大小
	MinSentences        int      `yaml:"minSentences"`        // 随机请求允许的最少句子数
	MinChars            int      `yaml:"minChars"`            // 指定话题请求允许的最少字符数
	MaxAttempts         int      `yaml:"maxAttempts"`         // 随机选文的最大尝试次数
	SimilarityThreshold int      `yaml:"similarityThreshold"` // 模糊匹配阈值 (0-100)
	RotateChance        *float64 `yaml:"rotateChance"`        // 随机调整优先章节顺序的概率，未设置时为 0.5，0 表示关闭
	AdviceChance        *float64 `yaml:"adviceChance"`        // 附带使用提示的概率，未设置时为 0.1，0 表示关闭
	MaxMessageLength    int      `yaml:"maxMessageLength"`    // 单条消息的最大长度 (字符)
	DetailSource        string   `yaml:"detailSource"`        // "full" 或 "summary"
	PreferredSections   []string `yaml:"preferredSections"`   // 优先章节
	ExcludedSections    []string `yaml:"excludedSections"`    // 排除章节
}

// SessionConfig 定义了会话存储配置。
type SessionConfig struct {
	Backend  string `yaml:"backend"`  // "memory" 或 "redis"
	TTL      string `yaml:"ttl"`      // 会话空闲过期时间 (例如: "24h")
	Capacity int    `yaml:"capacity"` // 内存存储的最大会话数
}

// ServerConfig 定义了管理接口的 HTTP 服务配置。
type ServerConfig struct {
	Enabled     bool              `yaml:"enabled"`
	Address     string            `yaml:"address"`
	RateLimiter RateLimiterConfig `yaml:"rateLimiter"`
}

// RateLimiterConfig 定义了令牌桶限流配置。
type RateLimiterConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Rate     float64 `yaml:"rate"` // 每秒速率
	Capacity int     `yaml:"capacity"`
}

// CircuitBreakerConfig 定义了熔断器的配置。
type CircuitBreakerConfig struct {
	Enabled          bool   `yaml:"enabled"`
	FailureThreshold uint32 `yaml:"failureThreshold"`
	SuccessThreshold uint32 `yaml:"successThreshold"`
	Timeout          string `yaml:"timeout"` // 例如: "30s"
}

// HTTPClientConfig 定义了出站 HTTP 客户端配置。
type HTTPClientConfig struct {
	Timeout        string               `yaml:"timeout"` // 例如: "60s"，需大于 Telegram 长轮询超时
	CircuitBreaker CircuitBreakerConfig `yaml:"circuitBreaker"`
}

// MongoConfig 定义了 MongoDB 数据库的连接配置。
type MongoConfig struct {
	Address    string `yaml:"address"`    // MongoDB 连接 URI
	Username   string `yaml:"username"`   // 用户名
	Password   string `yaml:"password"`   // 密码
	Database   string `yaml:"database"`   // 数据库名称
	Collection string `yaml:"collection"` // 趣闻集合名称
}

// MySQLConfig 定义了 MySQL 数据库的连接配置。
type MySQLConfig struct {
	Address         string `yaml:"address"`         // MySQL 服务器地址
	Username        string `yaml:"username"`        // 用户名
	Password        string `yaml:"password"`        // 密码
	Database        string `yaml:"database"`        // 数据库名称
	MaxOpenConns    int    `yaml:"maxOpenConns"`    // 最大打开连接数
	MaxIdleConns    int    `yaml:"maxIdleConns"`    // 最大空闲连接数
	ConnMaxLifetime int    `yaml:"connMaxLifetime"` // 连接最大生命周期 (秒)
}

// RedisConfig 定义了 Redis 数据库的连接配置。
type RedisConfig struct {
	Address  string `yaml:"address"`  // Redis 服务器地址 (例如: "localhost:6379")
	Password string `yaml:"password"` // Redis 密码
	DB       int    `yaml:"db"`       // Redis 数据库编号
}

// KafkaConfig 定义了 Kafka 消息队列的连接配置。
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"` // Kafka Broker 地址列表，为空则不发布事件
	Topic   string   `yaml:"topic"`   // 点赞事件主题
}

// DatabaseConfigs 包含所有数据库的配置。
type DatabaseConfigs struct {
	FactStore string      `yaml:"factStore"` // "mongodb"、"mysql" 或 "memory"
	MongoDB   MongoConfig `yaml:"mongodb"`
	MySQL     MySQLConfig `yaml:"mysql"`
	Redis     RedisConfig `yaml:"redis"`
	Kafka     KafkaConfig `yaml:"kafka"`
}

// AppConfig 是整个 YAML 文件的根结构，包含了应用程序的所有配置。
type AppConfig struct {
	App        AppInfo          `yaml:"app"`
	Logger     LoggerConfig     `yaml:"logger"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Wikipedia  WikipediaConfig  `yaml:"wikipedia"`
	LLM        LLMConfig        `yaml:"llm"`
	Trivia     TriviaConfig     `yaml:"trivia"`
	Session    SessionConfig    `yaml:"session"`
	Server     ServerConfig     `yaml:"server"`
	HTTPClient HTTPClientConfig `yaml:"httpClient"`
	Databases  DatabaseConfigs  `yaml:"databases"`
}

// LoadConfig 从指定路径加载 YAML 配置文件；文件不存在时使用内置默认配置。
// 配置中的 ${VAR} 占位符会用环境变量替换。
func LoadConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		data = defaultYAML
	} else if err != nil {
		return nil, fmt.Errorf("无法读取 YAML 文件 '%s': %w", path, err)
	}
	return Parse(data)
}

// Parse 解析 YAML 内容，展开环境变量，补齐默认值并校验。
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("解析 YAML 文件失败: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults 为未设置的字段填充默认值。
func (c *AppConfig) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "trivai"
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Telegram.BaseURL == "" {
		c.Telegram.BaseURL = "https://api.telegram.org"
	}
	if c.Telegram.PollTimeout <= 0 {
		c.Telegram.PollTimeout = 30
	}
	if c.Telegram.PollBackoff == "" {
		c.Telegram.PollBackoff = "5s"
	}
	if c.Wikipedia.Language == "" {
		c.Wikipedia.Language = "en"
	}
	if c.Wikipedia.BaseURL == "" {
		c.Wikipedia.BaseURL = "https://" + c.Wikipedia.Language + ".wikipedia.org"
	}
	if c.Wikipedia.UserAgent == "" {
		c.Wikipedia.UserAgent = "trivai-bot/1.0"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.1
	}
	if c.LLM.OpenAI.Model == "" {
		c.LLM.OpenAI.Model = "gpt-3.5-turbo"
	}
	t := &c.Trivia
	if t.WindowSize <= 0 {
		t.WindowSize = 10
	}
	if t.MinSentences <= 0 {
		t.MinSentences = 3
	}
	if t.MinChars <= 0 {
		t.MinChars = 300
	}
	if t.MaxAttempts <= 0 {
		t.MaxAttempts = 5
	}
	if t.SimilarityThreshold <= 0 {
		t.SimilarityThreshold = 70
	}
	if t.RotateChance == nil {
		t.RotateChance = float64Ptr(0.5)
	}
	if t.AdviceChance == nil {
		t.AdviceChance = float64Ptr(0.1)
	}
	if t.MaxMessageLength <= 0 {
		t.MaxMessageLength = 4000
	}
	if t.DetailSource == "" {
		t.DetailSource = "full"
	}
	if len(t.PreferredSections) == 0 {
		t.PreferredSections = []string{"Trivia", "History", "Etymology", "Demographics", "Geography", "Culture",
			"Economy", "Biography", "Early life", "Career", "Legacy", "Description", "Background", "Reception"}
	}
	if len(t.ExcludedSections) == 0 {
		t.ExcludedSections = []string{"References", "See also", "Notes", "External links", "Further reading",
			"Bibliography", "Sources", "Citations", "Gallery"}
	}
	if c.Session.Backend == "" {
		c.Session.Backend = "memory"
	}
	if c.Session.TTL == "" {
		c.Session.TTL = "24h"
	}
	if c.Session.Capacity <= 0 {
		c.Session.Capacity = 10000
	}
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.HTTPClient.Timeout == "" {
		c.HTTPClient.Timeout = "60s"
	}
	if c.HTTPClient.CircuitBreaker.Timeout == "" {
		c.HTTPClient.CircuitBreaker.Timeout = "30s"
	}
	if c.Databases.FactStore == "" {
		c.Databases.FactStore = "mongodb"
	}
	if c.Databases.MongoDB.Database == "" {
		c.Databases.MongoDB.Database = "chatbot"
	}
	if c.Databases.MongoDB.Collection == "" {
		c.Databases.MongoDB.Collection = "trivia"
	}
	if c.Databases.Kafka.Topic == "" {
		c.Databases.Kafka.Topic = "trivia_facts"
	}
}

// Validate 检查必填字段及取值范围。
func (c *AppConfig) Validate() error {
	if c.Telegram.Token == "" {
		return errors.New("telegram.token 不能为空")
	}
	switch c.LLM.Provider {
	case "openai", "ollama", "gemini":
	default:
		return fmt.Errorf("不支持的 LLM 提供商: %s", c.LLM.Provider)
	}
	switch c.Databases.FactStore {
	case "mongodb", "mysql", "memory":
	default:
		return fmt.Errorf("不支持的事实存储: %s", c.Databases.FactStore)
	}
	switch c.Session.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("不支持的会话存储: %s", c.Session.Backend)
	}
	if c.Trivia.DetailSource != "full" && c.Trivia.DetailSource != "summary" {
		return fmt.Errorf("trivia.detailSource 只能是 full 或 summary: %s", c.Trivia.DetailSource)
	}
	if c.Trivia.WindowSize < c.Trivia.MinSentences {
		return fmt.Errorf("trivia.windowSize (%d) 不能小于 trivia.minSentences (%d)", c.Trivia.WindowSize, c.Trivia.MinSentences)
	}
	for name, p := range map[string]float64{
		"trivia.rotateChance": Float64(c.Trivia.RotateChance),
		"trivia.adviceChance": Float64(c.Trivia.AdviceChance),
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("%s 必须在 0 到 1 之间: %v", name, p)
		}
	}
	if c.Trivia.SimilarityThreshold > 100 {
		return fmt.Errorf("trivia.similarityThreshold 超出范围: %d", c.Trivia.SimilarityThreshold)
	}
	for name, d := range map[string]string{
		"telegram.pollBackoff":              c.Telegram.PollBackoff,
		"session.ttl":                       c.Session.TTL,
		"httpClient.timeout":                c.HTTPClient.Timeout,
		"httpClient.circuitBreaker.timeout": c.HTTPClient.CircuitBreaker.Timeout,
	} {
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("%s 不是合法的时长: %w", name, err)
		}
	}
	return nil
}

// Float64 返回概率字段的值，未设置时为 0。
func Float64(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func float64Ptr(v float64) *float64 { return &v }

// Duration 解析已校验过的时长字段。
func Duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
