package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Synchronize the local cache with the Stremio datastore",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(cmdCtx context.Context, s *session) error {
				if err := s.load(cmdCtx); err != nil {
					return err
				}
				inLibrary := len(s.cache.List("all"))
				removed := len(s.cache.Removed())
				fmt.Fprintf(cmd.OutOrStdout(), "Library synchronized: %d items (%d removed)\n",
					inLibrary+removed, removed)
				return nil
			})
		},
	}
}
