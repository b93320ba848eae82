package llm

import (
	"context"
	"fmt"

	"trivai/internal/config"
	"trivai/internal/models"
)

// LLM 定义了所有大型语言模型客户端必须实现的通用接口。
type LLM interface {
	GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error)
}

// NewLLM 是一个工厂函数，根据提供的配置创建并返回一个实现了 LLM 接口的客户端。
// 采样温度在创建时固定，所有请求共用。
func NewLLM(ctx context.Context, cfg config.LLMConfig) (LLM, error) {
	switch cfg.Provider {
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("openai 提供商缺少 apiKey")
		}
		return NewOpenAI(cfg.OpenAI.Model, cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.Temperature), nil
	case "ollama":
		return NewOllama(cfg.Ollama.Model, cfg.Ollama.BaseURL, cfg.Temperature)
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, fmt.Errorf("gemini 提供商缺少 apiKey")
		}
		return NewGemini(ctx, cfg.Gemini.Model, cfg.Gemini.APIKey, cfg.Temperature)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// promptText 将请求中的所有文本部分拼接成一个提示字符串。
func promptText(req *models.GenerateContentRequest) string {
	var text string
	for _, content := range req.Content {
		for _, part := range content.Parts {
			if part != nil {
				text += part.Text
			}
		}
	}
	return text
}
