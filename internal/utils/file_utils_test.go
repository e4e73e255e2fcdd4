package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMediaTypeFromFilename(t *testing.T) {
	assert.Equal(t, "video/mp4", MediaTypeFromFilename("clip.MP4"))
	assert.Equal(t, "image/jpeg", MediaTypeFromFilename("thumb.jpeg"))
	assert.Equal(t, "application/octet-stream", MediaTypeFromFilename("notes.pde"))
	assert.Equal(t, "application/octet-stream", MediaTypeFromFilename("noext"))

	assert.True(t, IsVideoFile("a/b/movie.webm"))
	assert.False(t, IsVideoFile("thumb.png"))
	assert.True(t, IsImageFile("thumb.png"))
	assert.False(t, IsImageFile("movie.mov"))
}
