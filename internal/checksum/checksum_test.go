package checksum

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeneratePostHash(t *testing.T) {
	gen := NewGenerator()

	hash1 := gen.GeneratePostHash("How do I start learning Go?", "gopher42")
	hash2 := gen.GeneratePostHash("How do I start learning Go?", "gopher42")

	// Хеш должен быть детерминированным
	require.Equal(t, hash1, hash2)

	// Хеш должен быть 64 символа (SHA256 hex)
	require.Len(t, hash1, 64)

	require.NotEqual(t, hash1, gen.GeneratePostHash("Another title", "gopher42"))
	require.NotEqual(t, hash1, gen.GeneratePostHash("How do I start learning Go?", "someone"))

	// Пробелы по краям не влияют
	require.Equal(t, hash1, gen.GeneratePostHash("  How do I start learning Go? ", "gopher42\n"))
}

func TestVerifyPostHash(t *testing.T) {
	gen := NewGenerator()

	hash := gen.GeneratePostHash("title", "author")

	require.True(t, gen.VerifyPostHash(hash, "title", "author"))
	require.False(t, gen.VerifyPostHash(hash, "title", "other"))
}
