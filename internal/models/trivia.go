package models

import (
	"strings"
	"time"
)

// FactOrigin 标识一条趣闻的来源。
type FactOrigin string

const (
	OriginLive     FactOrigin = "live"     // 由模型实时提取。
	OriginFallback FactOrigin = "fallback" // 来自已点赞的事实库。
)

// Section 表示维基百科条目中的一个章节，可嵌套子章节。
type Section struct {
	Title    string     `json:"title"`
	Level    int        `json:"level"` // 2 表示顶级章节 (== Title ==)。
	Text     string     `json:"text"`  // 仅本章节自身的正文，不含子章节。
	Sections []*Section `json:"sections,omitempty"`
}

// FullText 返回本章节正文以及所有子章节的正文。
func (s *Section) FullText() string {
	var parts []string
	if t := strings.TrimSpace(s.Text); t != "" {
		parts = append(parts, t)
	}
	for _, sub := range s.Sections {
		if t := sub.FullText(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

// Article 是一次查询得到的维基百科条目，获取后不可变。
type Article struct {
	Title    string     `json:"title"`
	Text     string     `json:"text"`
	Summary  string     `json:"summary"`
	URL      string     `json:"url"`
	Sections []*Section `json:"sections,omitempty"`
}

// Segment 是从条目中截取的、用于提取趣闻的句子窗口。
type Segment struct {
	ArticleTitle  string `json:"article_title"`
	SourceURL     string `json:"source_url"`
	SectionTitle  string `json:"section_title,omitempty"` // 为空表示取自全文。
	Text          string `json:"text"`
	SentenceCount int    `json:"sentence_count"`
}

// TriviaFact 是一条经过校验的趣闻。
// bson 字段名沿用线上 trivia 集合的既有文档结构。
type TriviaFact struct {
	ArticleTitle string     `json:"article_name" bson:"article_name" gorm:"column:article_name"`
	Text         string     `json:"result" bson:"result" gorm:"column:result"`
	SourceURL    string     `json:"wiki_url" bson:"wiki_url" gorm:"column:wiki_url"`
	Origin       FactOrigin `json:"origin,omitempty" bson:"-" gorm:"-"`
	Score        int        `json:"score,omitempty" bson:"-" gorm:"-"`
	CreatedAt    time.Time  `json:"created_at,omitempty" bson:"created_at,omitempty" gorm:"column:created_at"`
}

// Render 返回发送给用户的文本形式。
func (f *TriviaFact) Render() string {
	return f.ArticleTitle + ": " + f.Text
}
