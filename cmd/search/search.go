// Package search implements the search command for querying stored articles.
package search

import (
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/newsfuse/cmd/common"
	"github.com/jonesrussell/newsfuse/internal/domain"
)

const (
	// defaultResultSize is how many articles to return when no size flag is
	// given.
	defaultResultSize = 10

	// descriptionPreviewLength caps the description column.
	descriptionPreviewLength = 100
)

// Command returns the search command.
func Command() *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search stored articles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.Bootstrap(cmd)
			if err != nil {
				return err
			}

			articles, err := deps.Store.Search(cmd.Context(), strings.Join(args, " "), size)
			if err != nil {
				return err
			}
			render(articles)
			return nil
		},
	}

	cmd.Flags().IntVarP(&size, "size", "s", defaultResultSize, "number of results to return")
	return cmd
}

func render(articles []*domain.Article) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Title", "Description", "Sources", "Tags", "Updated"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Description", WidthMax: descriptionPreviewLength, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, article := range articles {
		t.AppendRow(table.Row{
			article.Title,
			preview(article.Description),
			len(article.Sources),
			article.TagsString(),
			article.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}
	t.Render()
}

func preview(description string) string {
	if len(description) <= descriptionPreviewLength {
		return description
	}
	return description[:descriptionPreviewLength] + "..."
}
