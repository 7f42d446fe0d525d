package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var mediaType string

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Add an item to the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(cmdCtx context.Context, s *session) error {
				id := args[0]
				if err := s.load(cmdCtx); err != nil {
					return err
				}

				item, known := s.cache.Get(id)
				if !known {
					m, err := s.fetcher.Fetch(cmdCtx, id, mediaTypeFor(nil, "", mediaType), false)
					if err != nil {
						return s.authHint(fmt.Errorf("add %s: %w", id, err))
					}
					item = s.cache.GetOrCreate(id, m.Name, m.Type, m.Poster, m.PosterShape)
				}

				item.SetInLibrary(true)
				if err := s.push(cmdCtx, item); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s to the library\n", displayName(item))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&mediaType, "type", "t", "", "Media type for the metadata lookup")
	return cmd
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an item from the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(cmdCtx context.Context, s *session) error {
				id := args[0]
				if err := s.load(cmdCtx); err != nil {
					return err
				}

				item, ok := s.cache.Get(id)
				if !ok {
					return fmt.Errorf("%s is not in the library", id)
				}
				if item.Removed {
					fmt.Fprintf(cmd.OutOrStdout(), "%s is already removed\n", displayName(item))
					return nil
				}

				item.SetInLibrary(false)
				if err := s.push(cmdCtx, item); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from the library (watch history kept)\n", displayName(item))
				return nil
			})
		},
	}
}

func newDismissCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss <id>",
		Short: "Dismiss new-episode notifications for an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(cmdCtx context.Context, s *session) error {
				id := args[0]
				if err := s.load(cmdCtx); err != nil {
					return err
				}

				item, ok := s.cache.Get(id)
				if !ok {
					return fmt.Errorf("%s is not in the library", id)
				}

				item.DismissNotification()
				if err := s.push(cmdCtx, item); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Dismissed notifications for %s\n", displayName(item))
				return nil
			})
		},
	}
}
