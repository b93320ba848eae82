package models

import "errors"

// 趣闻流水线的错误分类。
var (
	// ErrNotFound 表示条目或话题无法解析为已存在的页面。
	ErrNotFound = errors.New("article not found")
	// ErrInsufficient 表示条目没有可用的正文。
	ErrInsufficient = errors.New("article has no usable text")
	// ErrExtractionFailed 表示模型调用失败或输出与原文不符。
	ErrExtractionFailed = errors.New("trivia extraction failed")
	// ErrStoreUnavailable 表示持久化层出错。
	ErrStoreUnavailable = errors.New("fact store unavailable")
)
