package textutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/newsfuse/internal/textutil"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "strips html tags",
			input: "<p>Senate passes the bill</p>",
			want:  "Senate passes the bill",
		},
		{
			name:  "strips urls",
			input: "Read more at https://example.com/story and www.example.org",
			want:  "Read more at and",
		},
		{
			name:  "strips outlet attribution",
			input: "Storm hits the coast - CNN Politics",
			want:  "Storm hits the coast",
		},
		{
			name:  "strips breaking prefix",
			input: "BREAKING: Markets fall sharply",
			want:  "Markets fall sharply",
		},
		{
			name:  "strips no title placeholder",
			input: "No Title No Title Real headline",
			want:  "Real headline",
		},
		{
			name:  "collapses whitespace",
			input: "  too   many\t spaces \n here ",
			want:  "too many spaces here",
		},
		{
			name:  "strips quotes",
			input: `He said "never" again`,
			want:  "He said never again",
		},
		{
			name:  "empty in empty out",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, textutil.Clean(tt.input))
		})
	}
}

func TestCleanAllDropsEmpty(t *testing.T) {
	got := textutil.CleanAll([]string{"First story", "   ", "https://example.com", "Second story"})
	assert.Equal(t, []string{"First story", "Second story"}, got)
}

func TestHasAlphanumeric(t *testing.T) {
	assert.True(t, textutil.HasAlphanumeric("abc"))
	assert.True(t, textutil.HasAlphanumeric("...7..."))
	assert.False(t, textutil.HasAlphanumeric("?!... --"))
	assert.False(t, textutil.HasAlphanumeric(""))
}
