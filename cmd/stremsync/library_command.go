package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"stremsync/internal/library"
)

func newLibraryCommand(ctx *commandContext) *cobra.Command {
	var typeFilter string
	var showRemoved bool

	cmd := &cobra.Command{
		Use:   "library",
		Short: "List library items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(cmdCtx context.Context, s *session) error {
				if err := s.load(cmdCtx); err != nil {
					return err
				}

				var items []*library.Item
				caption := "Library"
				switch {
				case showRemoved:
					items = s.cache.Removed()
					caption = "Removed from library"
				case typeFilter != "" && typeFilter != "all":
					items = s.cache.List(typeFilter)
					caption = titleCase(typeFilter)
				default:
					items = s.cache.List("all")
				}

				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "No items")
					return nil
				}

				fmt.Fprintln(out, renderCaption(fmt.Sprintf("%s (%d)", caption, len(items)), shouldColorize(out)))
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Name", "Type", "Watched", "Resume", "Last watched"},
					buildLibraryRows(items),
					3,
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&typeFilter, "type", "t", "", "Filter by media type (see the types command)")
	cmd.Flags().BoolVar(&showRemoved, "removed", false, "List removed items instead")
	return cmd
}

func buildLibraryRows(items []*library.Item) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ID,
			displayName(item),
			titleCase(item.Type),
			strconv.Itoa(item.State.TimesWatched),
			resumeLabel(item),
			formatTimestamp(item.State.LastWatched),
		})
	}
	return rows
}

func resumeLabel(item *library.Item) string {
	s := item.State
	if s.TimeOffset <= 0 || s.Duration <= 0 {
		return "-"
	}
	return fmt.Sprintf("%s / %s", formatSeconds(s.TimeOffset), formatSeconds(s.Duration))
}

func newTypesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List media types present in the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(cmdCtx context.Context, s *session) error {
				if err := s.load(cmdCtx); err != nil {
					return err
				}
				for _, mediaType := range s.cache.Types() {
					fmt.Fprintln(cmd.OutOrStdout(), mediaType)
				}
				return nil
			})
		},
	}
}
