package storage

import (
	"context"

	"postscrape/internal/scraper"
)

// PostRecord представляет обработанный пост для сохранения в БД
type PostRecord struct {
	Title       string
	Author      string
	UpvotesRaw  string // как на странице
	Upvotes     *int64 // nil, если UpvotesRaw не число
	SequenceNum int    // позиция в листинге
	CheckSum    string // SHA256 title|author
}

// Sink принимает результат одного прогона
type Sink interface {
	Name() string
	Save(ctx context.Context, posts []scraper.Post) error
}

// Repository интерфейс для работы с хранилищем постов
type Repository interface {
	// UpsertPost сохраняет или обновляет пост, возвращает (isNew, error)
	UpsertPost(ctx context.Context, post *PostRecord) (isNew bool, err error)

	// GetPostCount получает количество сохранённых постов
	GetPostCount(ctx context.Context) (int, error)

	Close() error
}
