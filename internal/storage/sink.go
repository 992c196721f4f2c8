package storage

import (
	"context"
	"fmt"

	"postscrape/internal/checksum"
	"postscrape/internal/observability"
	"postscrape/internal/scraper"
)

// RepositorySink сохраняет посты через Repository, по одному upsert на пост
type RepositorySink struct {
	repo     Repository
	checksum *checksum.Generator
	logger   *observability.Logger
}

func NewRepositorySink(repo Repository, logger *observability.Logger) *RepositorySink {
	return &RepositorySink{
		repo:     repo,
		checksum: checksum.NewGenerator(),
		logger:   logger,
	}
}

func (s *RepositorySink) Name() string {
	return "repository"
}

func (s *RepositorySink) Save(ctx context.Context, posts []scraper.Post) error {
	inserted := 0
	for i, post := range posts {
		record := ToRecord(s.checksum, post, i)
		isNew, err := s.repo.UpsertPost(ctx, record)
		if err != nil {
			return fmt.Errorf("post %d: %w", i, err)
		}
		if isNew {
			inserted++
		}
	}

	s.logger.Info("Posts stored",
		"total", len(posts),
		"inserted", inserted,
		"updated", len(posts)-inserted,
	)
	return nil
}

func (s *RepositorySink) Close() error {
	return s.repo.Close()
}

// ToRecord переводит Post в строку таблицы
func ToRecord(gen *checksum.Generator, post scraper.Post, seq int) *PostRecord {
	record := &PostRecord{
		Title:       post.Title,
		Author:      post.Author,
		UpvotesRaw:  post.Upvotes,
		SequenceNum: seq,
		CheckSum:    gen.GeneratePostHash(post.Title, post.Author),
	}
	if n, ok := scraper.ParseUpvotes(post.Upvotes); ok {
		record.Upvotes = &n
	}
	return record
}
