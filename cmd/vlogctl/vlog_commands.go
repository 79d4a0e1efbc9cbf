package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newShowCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <vlog-id>",
		Short: "Show a single vlog with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(func(ctx context.Context) error {
				v, err := c.feedSvc.Vlog(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Printf("%s\n@%s · %d followers\n\n", v.Title, v.Author.Username, v.Author.Followers)
				if v.Description != "" {
					fmt.Println(v.Description)
					fmt.Println()
				}
				if len(v.Tags) > 0 {
					fmt.Println("#" + strings.Join(v.Tags, " #"))
				}
				fmt.Printf("▲%d ▽%d 💬%d 👁%d ↗%d\n\n", len(v.Likes), len(v.Dislikes), v.CommentCount(), v.Views, v.Shares)
				for _, comment := range v.Comments {
					fmt.Printf("@%s: %s\n", comment.Author.Username, comment.Text)
				}
				return nil
			})
		},
	}
}

func newLikeCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "like <vlog-id>",
		Short: "Toggle a like on a vlog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(func(ctx context.Context) error {
				return c.engine.ToggleLike(ctx, args[0])
			})
		},
	}
}

func newDislikeCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dislike <vlog-id>",
		Short: "Toggle a dislike on a vlog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(func(ctx context.Context) error {
				return c.engine.ToggleDislike(ctx, args[0])
			})
		},
	}
}

func newBookmarkCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "bookmark <vlog-id>",
		Short: "Toggle a bookmark on a vlog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(func(ctx context.Context) error {
				return c.engine.ToggleBookmark(ctx, args[0])
			})
		},
	}
}

func newCommentCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <vlog-id> <text>",
		Short: "Comment on a vlog",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(func(ctx context.Context) error {
				return c.engine.AddComment(ctx, args[0], strings.Join(args[1:], " "))
			})
		},
	}
}

func newFollowCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "follow <user-id>",
		Short: "Follow a creator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(func(ctx context.Context) error {
				return c.engine.Follow(ctx, args[0])
			})
		},
	}
}

func newUnfollowCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "unfollow <user-id>",
		Short: "Unfollow a creator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(func(ctx context.Context) error {
				return c.engine.Unfollow(ctx, args[0])
			})
		},
	}
}
