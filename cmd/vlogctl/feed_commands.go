package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newFeedCommand(c *commandContext) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show the home feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(func(ctx context.Context) error {
				p, err := c.feedSvc.HomeFeed(ctx, page)
				if err != nil {
					return err
				}
				fmt.Println(renderVlogTable(p.Vlogs))
				if footer := renderPageFooter(p); footer != "" {
					fmt.Println(footer)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Feed page")
	return cmd
}

func newTrendingCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "trending",
		Short: "Show trending vlogs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(func(ctx context.Context) error {
				p, err := c.feedSvc.Trending(ctx)
				if err != nil {
					return err
				}
				fmt.Println(renderVlogTable(p.Vlogs))
				return nil
			})
		},
	}
}

func newUserCommand(c *commandContext) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "user <user-id>",
		Short: "Show a user's profile and vlogs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(func(ctx context.Context) error {
				u, err := c.feedSvc.Profile(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Printf("@%s · %d followers\n", u.Username, u.Followers)
				if u.Bio != "" {
					fmt.Println(u.Bio)
				}
				p, err := c.feedSvc.UserVlogs(ctx, args[0], page)
				if err != nil {
					return err
				}
				fmt.Println(renderVlogTable(p.Vlogs))
				if footer := renderPageFooter(p); footer != "" {
					fmt.Println(footer)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page of the user's vlogs")
	return cmd
}

func newSearchCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy search cached vlogs by title and tags",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(func(ctx context.Context) error {
				// warm the cache so search has something to match against
				if _, err := c.feedSvc.HomeFeed(ctx, 1); err != nil {
					return err
				}
				query := args[0]
				for _, extra := range args[1:] {
					query += " " + extra
				}
				results := c.feedSvc.Search(query)
				if len(results) == 0 {
					fmt.Println("no matches")
					return nil
				}
				fmt.Println(renderVlogTable(results))
				return nil
			})
		},
	}
}
