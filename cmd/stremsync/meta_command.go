package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"stremsync/internal/meta"
)

func newMetaCommand(ctx *commandContext) *cobra.Command {
	var mediaType string
	var refresh bool

	cmd := &cobra.Command{
		Use:   "meta <id>",
		Short: "Show merged metadata for an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(cmdCtx context.Context, s *session) error {
				id := args[0]
				if err := s.load(cmdCtx); err != nil {
					return err
				}

				item, _ := s.cache.Get(id)
				m, err := s.fetcher.Fetch(cmdCtx, id, mediaTypeFor(item, "", mediaType), refresh)
				if err != nil {
					return s.authHint(err)
				}

				out := cmd.OutOrStdout()
				printMetaSummary(out, m)

				if len(m.Videos) == 0 {
					return nil
				}
				watched := func(string) bool { return false }
				if item != nil {
					if err := attachVideos(item, m, s.logger); err == nil {
						watched = item.State.VideoWatched
					}
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Episode", "Video", "Title", "Released", "Watched"},
					buildEpisodeRows(m.Videos, watched),
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&mediaType, "type", "t", "", "Media type when the item is not cached")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass the metadata cache and the addon collection cache")
	return cmd
}

func printMetaSummary(out io.Writer, m *meta.Meta) {
	fmt.Fprintf(out, "%s (%s)\n", m.Name, titleCase(m.Type))
	if m.ReleaseInfo != "" {
		fmt.Fprintf(out, "Released: %s\n", m.ReleaseInfo)
	}
	if m.Runtime != "" {
		fmt.Fprintf(out, "Runtime:  %s\n", m.Runtime)
	}
	if m.IMDBRating != "" {
		fmt.Fprintf(out, "IMDB:     %s\n", m.IMDBRating)
	}
	if len(m.Genres) > 0 {
		fmt.Fprintf(out, "Genres:   %s\n", strings.Join(m.Genres, ", "))
	}
	if m.Description != "" {
		fmt.Fprintf(out, "\n%s\n", m.Description)
	}
}

func buildEpisodeRows(videos []meta.Video, watched func(string) bool) [][]string {
	rows := make([][]string, 0, len(videos))
	for i := range videos {
		v := &videos[i]
		label := ""
		if v.Season > 0 || v.Episode > 0 {
			label = fmt.Sprintf("S%02dE%02d", v.Season, v.Episode)
		}
		rows = append(rows, []string{
			label,
			v.ID,
			v.Title,
			formatDate(v.Released),
			yesNo(watched(v.ID)),
		})
	}
	return rows
}
