package checksum

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// GeneratePostHash генерирует SHA256 хеш поста.
// Формула: SHA256(title|author). Upvotes не входят: счётчик меняется между прогонами.
func (g *Generator) GeneratePostHash(title, author string) string {
	content := strings.TrimSpace(title) + "|" + strings.TrimSpace(author)

	hash := sha256.Sum256([]byte(content))

	return fmt.Sprintf("%x", hash)
}

// VerifyPostHash проверяет соответствие хеша
func (g *Generator) VerifyPostHash(expectedHash, title, author string) bool {
	return g.GeneratePostHash(title, author) == expectedHash
}
