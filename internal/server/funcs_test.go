package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	tests := map[string]string{
		"jonathan@example.com": "jo***@example.com",
		"ab@example.com":       "ab***@example.com",
		"broken":               "***",
		"@example.com":         "***",
	}
	for in, want := range tests {
		assert.Equal(t, want, maskEmail(in), in)
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)

	assert.Equal(t, "Mar 9, 2024", formatDate(d))
	assert.Equal(t, "Mar 9, 2024 14:05", formatDate(&d))
	assert.Equal(t, "Never", formatDate((*time.Time)(nil)))
	assert.Equal(t, "", formatDate(time.Time{}))
	assert.Equal(t, "", formatDate("2024-03-09"))
}

func TestContainsID(t *testing.T) {
	assert.True(t, containsID([]uint{4, 8}, 8))
	assert.False(t, containsID(nil, 1))
}

func TestMediaURL(t *testing.T) {
	assert.Equal(t, "/static/img/avatar.svg", mediaURL("profile_images/default.png"))
	assert.Equal(t, "/static/img/asset.svg", mediaURL("tasks_asset/default_img.jpg"))
	assert.Equal(t, "/media/tasks_asset/abc.png", mediaURL("tasks_asset/abc.png"))
}
