package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMarkdown(t *testing.T) {
	out := string(RenderMarkdown("**hi** there"))
	assert.Contains(t, out, "<strong>hi</strong>")

	out = string(RenderMarkdown("<script>alert(1)</script>\n\nok"))
	assert.NotContains(t, out, "<script")
	assert.Contains(t, out, "ok")

	assert.Empty(t, RenderMarkdown(""))
}

func TestRenderMarkdown_ImagesAndLinks(t *testing.T) {
	out := string(RenderMarkdown("![cat](https://example.com/cat.png)\n\n[site](https://example.com)"))

	assert.Contains(t, out, `loading="lazy"`)
	assert.Contains(t, out, `referrerpolicy="no-referrer"`)
	assert.Contains(t, out, `target="_blank"`)
}

func TestEnhanceHTMLContent_YouTube(t *testing.T) {
	out := string(EnhanceHTMLContent(`<p>https://www.youtube.com/watch?v=abc123&t=10</p><p>see https://youtu.be/x please</p>`))

	assert.Contains(t, out, "https://www.youtube.com/embed/abc123")
	assert.Contains(t, out, "see https://youtu.be/x please")
}

func TestYoutubeID(t *testing.T) {
	assert.Equal(t, "abc", youtubeID("https://youtu.be/abc?si=1"))
	assert.Equal(t, "xyz", youtubeID("https://www.youtube.com/watch?v=xyz&list=2"))
	assert.Empty(t, youtubeID("https://example.com"))
}

func TestScore(t *testing.T) {
	assert.Zero(t, DefaultConfig.score(1, 0, 0, 0))
	assert.Zero(t, DefaultConfig.score(1, 1, 5, 0), "negative interaction clamps to zero")

	fresh := DefaultConfig.score(0, 10, 0, 2)
	old := DefaultConfig.score(48, 10, 0, 2)
	assert.Greater(t, fresh, old)

	assert.Greater(t, DefaultConfig.score(1, 0, 0, 3), DefaultConfig.score(1, 3, 0, 0), "comments weigh more than likes")
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)

	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, CheckPasswordHash("hunter22", hash))
	assert.False(t, CheckPasswordHash("hunter23", hash))
}

func TestParsePage(t *testing.T) {
	assert.Equal(t, 1, ParsePage(""))
	assert.Equal(t, 1, ParsePage("-2"))
	assert.Equal(t, 1, ParsePage("abc"))
	assert.Equal(t, 4, ParsePage("4"))
}

func TestGetRandomEmoji(t *testing.T) {
	assert.Contains(t, avatarEmojis, GetRandomEmoji())
}
