package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTags(t *testing.T) {
	t.Run("lowercase dedupe and cap", func(t *testing.T) {
		got := NormalizeTags([]string{" Go ", "go", "", "Rust", "db", "RUST", "cache", "queue", "extra"}, 5)
		assert.Equal(t, []string{"go", "rust", "db", "cache", "queue"}, got)
	})

	t.Run("nil input", func(t *testing.T) {
		assert.Empty(t, NormalizeTags(nil, 5))
	})
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "hello world", SanitizeText("  <b>hello</b> <script>alert(1)</script>world "))
	assert.Equal(t, "a &lt; b &amp; c", SanitizeText("a < b & c"))

	t.Run("entity encoded markup is stripped", func(t *testing.T) {
		assert.Equal(t, "", SanitizeText("&lt;img src=x onerror=alert(1)&gt;"))
		assert.Equal(t, "hi", SanitizeText("&lt;script&gt;alert(1)&lt;/script&gt;hi"))
	})

	t.Run("output never carries live tags", func(t *testing.T) {
		out := SanitizeText("<<b>img src=x onerror=alert(1)>")
		assert.NotContains(t, out, "<")
		assert.NotContains(t, out, ">")
	})

	t.Run("escaped once, not twice", func(t *testing.T) {
		assert.Equal(t, "fish &amp; chips", SanitizeText("fish &amp; chips"))
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 30))
	assert.Equal(t, "你好...", Truncate("你好世界", 2))
}

func TestGetPageOffset(t *testing.T) {
	p := Pagination{Page: 0, Limit: 500}
	offset, limit := p.GetPageOffset()
	assert.Equal(t, 0, offset)
	assert.Equal(t, 100, limit)
	assert.Equal(t, 1, p.Page)

	p = Pagination{Page: 3, Limit: 20}
	offset, limit = p.GetPageOffset()
	assert.Equal(t, 40, offset)
	assert.Equal(t, 20, limit)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%go%", LikePattern("  go "))
	assert.Equal(t, `%100\%\_done%`, LikePattern("100%_done"))
}
