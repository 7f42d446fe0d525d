package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"stremsync/internal/meta"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var mediaType string

	cmd := &cobra.Command{
		Use:   "watch <id> [video]",
		Short: "Mark an item or one of its videos watched",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(cmdCtx context.Context, s *session) error {
				return runMarkWatched(cmdCtx, s, cmd, args, mediaType, true)
			})
		},
	}

	cmd.Flags().StringVarP(&mediaType, "type", "t", "", "Media type when the item is not cached")
	return cmd
}

func newUnwatchCommand(ctx *commandContext) *cobra.Command {
	var mediaType string

	cmd := &cobra.Command{
		Use:   "unwatch <id> [video]",
		Short: "Mark an item or one of its videos unwatched",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(cmdCtx context.Context, s *session) error {
				return runMarkWatched(cmdCtx, s, cmd, args, mediaType, false)
			})
		},
	}

	cmd.Flags().StringVarP(&mediaType, "type", "t", "", "Media type when the item is not cached")
	return cmd
}

// runMarkWatched flips watched state by hand. Item-level edits work
// offline once the item is cached; video-level edits always fetch
// metadata, since the bitfield is meaningless without the episode
// list.
func runMarkWatched(ctx context.Context, s *session, cmd *cobra.Command, args []string, typeFlag string, watched bool) error {
	id := args[0]
	videoID := ""
	if len(args) == 2 {
		videoID = args[1]
	}

	if err := s.load(ctx); err != nil {
		return err
	}

	item, known := s.cache.Get(id)
	var m *meta.Meta
	if videoID != "" || !known {
		fetched, err := s.fetcher.Fetch(ctx, id, mediaTypeFor(item, videoID, typeFlag), false)
		if err != nil {
			if videoID != "" {
				return s.authHint(fmt.Errorf("mark video watched: %w", err))
			}
			return s.authHint(fmt.Errorf("%s is not cached and metadata lookup failed: %w", id, err))
		}
		m = fetched
	}
	if !known {
		item = s.cache.GetOrCreate(id, m.Name, m.Type, m.Poster, m.PosterShape)
	}

	if videoID != "" {
		if err := attachVideos(item, m, s.logger); err != nil {
			return err
		}
	}
	if err := item.MarkWatched(watched, videoID); err != nil {
		return err
	}
	if err := s.push(ctx, item); err != nil {
		return err
	}

	verb := "watched"
	if !watched {
		verb = "unwatched"
	}
	subject := displayName(item)
	if videoID != "" {
		subject = videoID
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Marked %s %s\n", subject, verb)
	return nil
}
