package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var serverFlag string

	ctx := newCommandContext(&serverFlag)

	rootCmd := &cobra.Command{
		Use:           "vlogctl",
		Short:         "vlogdeck command line client",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "Server URL (overrides config)")

	rootCmd.AddCommand(newFeedCommand(ctx))
	rootCmd.AddCommand(newTrendingCommand(ctx))
	rootCmd.AddCommand(newUserCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newSearchCommand(ctx))
	rootCmd.AddCommand(newLikeCommand(ctx))
	rootCmd.AddCommand(newDislikeCommand(ctx))
	rootCmd.AddCommand(newBookmarkCommand(ctx))
	rootCmd.AddCommand(newCommentCommand(ctx))
	rootCmd.AddCommand(newFollowCommand(ctx))
	rootCmd.AddCommand(newUnfollowCommand(ctx))
	rootCmd.AddCommand(newLoginCommand(ctx))
	rootCmd.AddCommand(newLogoutCommand(ctx))
	rootCmd.AddCommand(newWhoamiCommand(ctx))

	return rootCmd
}
