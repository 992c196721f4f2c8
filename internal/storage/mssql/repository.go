package mssql

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"postscrape/internal/observability"
	"postscrape/internal/storage"
)

const upsertPostQuery = `
	MERGE INTO TblPosts AS target
	USING (SELECT @CheckSum AS CheckSum) AS source
	ON target.[CheckSum] = source.CheckSum
	WHEN MATCHED THEN
		UPDATE SET
			[UpvotesRaw] = @UpvotesRaw,
			[Upvotes] = @Upvotes,
			[SequenceNum] = @SequenceNum,
			[UpdatedAt] = SYSUTCDATETIME()
	WHEN NOT MATCHED THEN
		INSERT ([CheckSum], [Title], [Author], [UpvotesRaw], [Upvotes], [SequenceNum], [UpdatedAt])
		VALUES (@CheckSum, @Title, @Author, @UpvotesRaw, @Upvotes, @SequenceNum, SYSUTCDATETIME())
	OUTPUT $action;
`

//go:embed schema.sql
var schemaSQL string

type Repository struct {
	db             *sql.DB
	commandTimeout time.Duration
	logger         *observability.Logger
}

var _ storage.Repository = (*Repository)(nil)

func NewRepository(ctx context.Context, dsn string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Тестируем соединение
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := &Repository{
		db:             db,
		commandTimeout: commandTimeout,
		logger:         logger,
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return repo, nil
}

// EnsureSchema создаёт TblPosts, если таблицы ещё нет
func (r *Repository) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// UpsertPost сохраняет или обновляет пост по CheckSum
func (r *Repository) UpsertPost(ctx context.Context, post *storage.PostRecord) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	stmt, err := r.db.PrepareContext(ctx, upsertPostQuery)
	if err != nil {
		return false, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			r.logger.Error("Failed to close statement", "error", err.Error())
		}
	}()

	upvotes := sql.NullInt64{}
	if post.Upvotes != nil {
		upvotes = sql.NullInt64{Int64: *post.Upvotes, Valid: true}
	}

	var action string
	err = stmt.QueryRowContext(ctx,
		sql.Named("CheckSum", post.CheckSum),
		sql.Named("Title", post.Title),
		sql.Named("Author", post.Author),
		sql.Named("UpvotesRaw", post.UpvotesRaw),
		sql.Named("Upvotes", upvotes),
		sql.Named("SequenceNum", post.SequenceNum),
	).Scan(&action)
	if err != nil {
		return false, fmt.Errorf("failed to execute upsert: %w", err)
	}

	return action == "INSERT", nil
}

// GetPostCount получает количество сохранённых постов
func (r *Repository) GetPostCount(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM TblPosts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to query database: %w", err)
	}

	return count, nil
}

// Close закрывает соединение с БД
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
