package models

import "time"

// DetailExhausted 表示“告诉我更多”已经给出过原文链接。
const DetailExhausted = 2

// SessionState 是由会话数据推导出的对话状态。
type SessionState string

const (
	StateIdle            SessionState = "idle"
	StateFactDelivered   SessionState = "fact_delivered"
	StateDetailExpanded  SessionState = "detail_expanded"
	StateDetailExhausted SessionState = "detail_exhausted"
)

// Session 保存单个聊天最近一次推送的趣闻以及“告诉我更多”的次数。
type Session struct {
	ChatID      int64       `json:"chat_id"`
	Fact        *TriviaFact `json:"fact,omitempty"`
	DetailCount int         `json:"detail_count"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewSession 创建一个空闲状态的会话。
func NewSession(chatID int64) *Session {
	return &Session{ChatID: chatID, UpdatedAt: time.Now()}
}

// State 根据当前数据推导会话状态。
func (s *Session) State() SessionState {
	switch {
	case s.Fact == nil:
		return StateIdle
	case s.DetailCount <= 0:
		return StateFactDelivered
	case s.DetailCount == 1:
		return StateDetailExpanded
	default:
		return StateDetailExhausted
	}
}

// Deliver 记录新推送的趣闻，并重置详情计数。
func (s *Session) Deliver(fact *TriviaFact) {
	s.Fact = fact
	s.DetailCount = 0
	s.UpdatedAt = time.Now()
}

// AdvanceDetail 将详情计数推进一步，最多到 DetailExhausted。
func (s *Session) AdvanceDetail() {
	if s.DetailCount < DetailExhausted {
		s.DetailCount++
	}
	s.UpdatedAt = time.Now()
}
