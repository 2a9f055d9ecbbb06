package builder

import (
	"context"
	"strings"

	"github.com/jonesrussell/newsfuse/internal/provider"
	"github.com/jonesrussell/newsfuse/internal/textutil"
)

const (
	titleMaxTokens = 32
	maxTitleChars  = 120
)

// CondenseTitle merges the pool's source titles into one headline. The
// generator gets every cleaned title; on failure the first source title
// stands in, so a provider outage never blocks an article.
func (b *Builder) CondenseTitle(ctx context.Context, titles []string) string {
	cleaned := textutil.CleanAll(titles)
	if len(cleaned) == 0 {
		return ""
	}
	if len(cleaned) == 1 {
		return truncateTitle(cleaned[0])
	}

	prompt := "Write one concise, neutral news headline that covers all of these headlines. Respond with the headline only.\n\n- " +
		strings.Join(cleaned, "\n- ")
	answer, err := b.generator.Generate(ctx, prompt, provider.GenerateOptions{MaxTokens: titleMaxTokens})
	if err != nil {
		b.logger.Warn("title condensing failed, using first source title", "error", err)
		return truncateTitle(cleaned[0])
	}

	condensed := textutil.Clean(strings.Trim(answer, `"' `))
	if condensed == "" {
		return truncateTitle(cleaned[0])
	}
	return truncateTitle(condensed)
}

// truncateTitle caps a headline at maxTitleChars on a word boundary.
func truncateTitle(title string) string {
	if len(title) <= maxTitleChars {
		return title
	}
	cut := title[:maxTitleChars]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut
}
