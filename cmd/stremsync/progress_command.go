package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"stremsync/internal/logging"
)

func newProgressCommand(ctx *commandContext) *cobra.Command {
	var mediaType string

	cmd := &cobra.Command{
		Use:   "progress <id> <video> <offset> <duration>",
		Short: "Record a playback position",
		Long: `Record a playback position, in seconds, for a video of a library item.

The offset drives the watch state machine: forward play accrues watch
time, crossing the watched threshold counts a full watch, and a
position past the credits mark finishes playback, advancing series to
the next episode. For movies, pass the item id as the video.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(cmdCtx context.Context, s *session) error {
				return runProgress(cmdCtx, s, cmd, args, mediaType)
			})
		},
	}

	cmd.Flags().StringVarP(&mediaType, "type", "t", "", "Media type when the item is not cached")
	return cmd
}

func runProgress(ctx context.Context, s *session, cmd *cobra.Command, args []string, typeFlag string) error {
	id, videoID := args[0], args[1]
	offset, err := parseSeconds(args[2])
	if err != nil {
		return fmt.Errorf("offset: %w", err)
	}
	duration, err := parseSeconds(args[3])
	if err != nil {
		return fmt.Errorf("duration: %w", err)
	}

	if err := s.load(ctx); err != nil {
		return err
	}

	item, known := s.cache.Get(id)
	m, metaErr := s.fetcher.Fetch(ctx, id, mediaTypeFor(item, videoID, typeFlag), false)
	if metaErr != nil {
		if !known {
			return s.authHint(fmt.Errorf("%s is not cached and metadata lookup failed: %w", id, metaErr))
		}
		s.logger.Warn("metadata lookup failed, skipping per-video history",
			logging.String("item", id), logging.Error(metaErr))
	}
	if !known {
		item = s.cache.GetOrCreate(id, m.Name, m.Type, m.Poster, m.PosterShape)
	}
	if m != nil {
		if err := attachVideos(item, m, s.logger); err != nil {
			return err
		}
	}

	if err := item.UpdateProgress(offset, duration, videoID, s.thresholds()); err != nil {
		return err
	}

	// Advancing rolls the pass counters, so note the flag first.
	flagged := item.State.FlaggedWatched == 1
	timesWatched := item.State.TimesWatched

	nextID := ""
	if m != nil {
		if next := m.NextEpisode(videoID); next != nil {
			nextID = next.ID
		}
	}
	finished := item.FinishPlayback(nextID, s.thresholds())

	if err := s.push(ctx, item); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case finished && nextID != "":
		fmt.Fprintf(out, "Finished %s; advancing to %s\n", videoID, nextID)
	case finished:
		fmt.Fprintf(out, "Finished %s\n", videoID)
	default:
		fmt.Fprintf(out, "Progress on %s: %s of %s\n",
			videoID, formatSeconds(item.State.TimeOffset), formatSeconds(item.State.Duration))
	}
	if flagged {
		fmt.Fprintf(out, "Counts as a full watch (%d total)\n", timesWatched)
	}
	return nil
}
