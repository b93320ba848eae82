package llm

import (
	"context"
	"fmt"

	"trivai/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini 是一个实现了 LLM 接口的结构体，用于与 Gemini API 交互。
// 每次请求都是独立的单轮生成，不保留聊天历史。
type Gemini struct {
	model *genai.GenerativeModel
}

// NewGemini 创建一个新的 Gemini 客户端。
func NewGemini(ctx context.Context, model, apiKey string, temperature float32) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("无法创建 GenAI 客户端: %w", err)
	}
	generativeModel := client.GenerativeModel(model)
	generativeModel.SetTemperature(temperature)
	return &Gemini{model: generativeModel}, nil
}

// GenerateContent 向 Gemini API 发送请求并返回响应。
func (g *Gemini) GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(promptText(req)))
	if err != nil {
		return nil, err
	}
	return fromGenaiResponse(resp), nil
}

// fromGenaiResponse 将 GenAI 响应转换为内部响应格式，只保留文本部分。
func fromGenaiResponse(resp *genai.GenerateContentResponse) *models.GenerateContentResponse {
	var content []models.Content
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		var parts []*models.Part
		for _, p := range cand.Content.Parts {
			if text, ok := p.(genai.Text); ok {
				parts = append(parts, &models.Part{Text: string(text)})
			}
		}
		content = append(content, models.Content{Parts: parts, Role: models.SpeakerModel})
		break
	}
	return &models.GenerateContentResponse{Content: content}
}
