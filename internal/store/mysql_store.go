package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trivai/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// factRecord is the relational row of a liked fact.
type factRecord struct {
	ID          uint      `gorm:"primaryKey"`
	ArticleName string    `gorm:"column:article_name;size:255;uniqueIndex"`
	Result      string    `gorm:"column:result;type:text"`
	WikiURL     string    `gorm:"column:wiki_url;size:512"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (factRecord) TableName() string { return "trivia" }

func (r factRecord) fact() *models.TriviaFact {
	return stored(models.TriviaFact{
		ArticleTitle: r.ArticleName,
		Text:         r.Result,
		SourceURL:    r.WikiURL,
		CreatedAt:    r.CreatedAt,
	})
}

// SQLFactStore is a FactStore on top of GORM, used with the MySQL driver.
type SQLFactStore struct {
	db *gorm.DB
}

// NewSQLFactStore migrates the trivia table and returns the store.
func NewSQLFactStore(db *gorm.DB) (*SQLFactStore, error) {
	if err := db.AutoMigrate(&factRecord{}); err != nil {
		return nil, fmt.Errorf("migrate trivia table: %w: %w", err, models.ErrStoreUnavailable)
	}
	return &SQLFactStore{db: db}, nil
}

// SampleRandom returns one uniformly sampled fact.
func (s *SQLFactStore) SampleRandom(ctx context.Context) (*models.TriviaFact, error) {
	var rec factRecord
	err := s.db.WithContext(ctx).Order(clause.Expr{SQL: "RAND()"}).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("sample fact: %w: %w", err, models.ErrStoreUnavailable)
	}
	return rec.fact(), nil
}

// FindByTitle retrieves the fact stored for an article title.
func (s *SQLFactStore) FindByTitle(ctx context.Context, title string) (*models.TriviaFact, error) {
	var rec factRecord
	err := s.db.WithContext(ctx).Where("article_name = ?", title).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%q: %w", title, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find fact: %w: %w", err, models.ErrStoreUnavailable)
	}
	return rec.fact(), nil
}

// InsertIfAbsent inserts the fact unless a row with the same article name exists.
func (s *SQLFactStore) InsertIfAbsent(ctx context.Context, fact *models.TriviaFact) (InsertResult, error) {
	rec := factRecord{
		ArticleName: fact.ArticleTitle,
		Result:      fact.Text,
		WikiURL:     fact.SourceURL,
		CreatedAt:   fact.CreatedAt,
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
	if res.Error != nil {
		return AlreadyPresent, fmt.Errorf("insert fact: %w: %w", res.Error, models.ErrStoreUnavailable)
	}
	if res.RowsAffected == 1 {
		return Inserted, nil
	}
	return AlreadyPresent, nil
}

// Count returns the number of stored facts.
func (s *SQLFactStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&factRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count facts: %w: %w", err, models.ErrStoreUnavailable)
	}
	return n, nil
}
