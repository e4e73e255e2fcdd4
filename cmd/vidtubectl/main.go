package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/SketchShifter/vidtube_backend/internal/client"
	"github.com/SketchShifter/vidtube_backend/internal/logger"

	"github.com/spf13/cobra"
)

var (
	apiURL          string
	credentialsPath string
	password        string
	verbose         bool
	page            int
	limit           int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("VIDTUBE_API_URL", "http://localhost:8000"), "vidtube API base URL")
	rootCmd.PersistentFlags().StringVar(&credentialsPath, "credentials", "", "credentials file (default ~/.vidtube/credentials.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show debug logs")

	loginCmd.Flags().StringVarP(&password, "password", "p", "", "password (read from stdin when omitted)")

	for _, cmd := range []*cobra.Command{listCmd, tweetListCmd} {
		cmd.Flags().IntVar(&page, "page", 1, "page number")
		cmd.Flags().IntVar(&limit, "limit", 10, "comments per page")
	}

	commentsCmd.AddCommand(listCmd, addCmd, editCmd, deleteCmd, repliesCmd, replyCmd, tweetListCmd, tweetAddCmd)
	rootCmd.AddCommand(loginCmd, commentsCmd)
}

var rootCmd = &cobra.Command{
	Use:           "vidtubectl",
	Short:         "Command line client for the vidtube API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := "warn"
		if verbose {
			level = "debug"
		}
		logger.Configure(level, "text")
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <username|email>",
	Short: "Log in and store tokens",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		if password == "" {
			if password, err = readPassword(cmd); err != nil {
				return err
			}
		}
		if err := c.Login(cmd.Context(), args[0], password); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged in as", args[0])
		return nil
	},
}

var commentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "Manage comments on videos and tweets",
}

var listCmd = &cobra.Command{
	Use:   "list <videoId>",
	Short: "List top-level comments of a video",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, c *client.Client, args []string) (interface{}, error) {
		return c.ListVideoComments(ctx, args[0], page, limit)
	}),
}

var addCmd = &cobra.Command{
	Use:   "add <videoId> <content>",
	Short: "Comment on a video",
	Args:  cobra.MinimumNArgs(2),
	RunE: withClient(func(ctx context.Context, c *client.Client, args []string) (interface{}, error) {
		return c.AddVideoComment(ctx, args[0], strings.Join(args[1:], " "))
	}),
}

var editCmd = &cobra.Command{
	Use:   "edit <commentId> <content>",
	Short: "Edit one of your comments",
	Args:  cobra.MinimumNArgs(2),
	RunE: withClient(func(ctx context.Context, c *client.Client, args []string) (interface{}, error) {
		return c.UpdateComment(ctx, args[0], strings.Join(args[1:], " "))
	}),
}

var deleteCmd = &cobra.Command{
	Use:   "delete <commentId>",
	Short: "Delete one of your comments and its replies",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, c *client.Client, args []string) (interface{}, error) {
		return map[string]string{"deleted": args[0]}, c.DeleteComment(ctx, args[0])
	}),
}

var repliesCmd = &cobra.Command{
	Use:   "replies <commentId>",
	Short: "List replies to a comment",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, c *client.Client, args []string) (interface{}, error) {
		return c.ListReplies(ctx, args[0])
	}),
}

var replyCmd = &cobra.Command{
	Use:   "reply <commentId> <content>",
	Short: "Reply to a comment",
	Args:  cobra.MinimumNArgs(2),
	RunE: withClient(func(ctx context.Context, c *client.Client, args []string) (interface{}, error) {
		return c.Reply(ctx, args[0], strings.Join(args[1:], " "))
	}),
}

var tweetListCmd = &cobra.Command{
	Use:   "tweet-list <tweetId>",
	Short: "List top-level comments of a tweet",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, c *client.Client, args []string) (interface{}, error) {
		return c.ListTweetComments(ctx, args[0], page, limit)
	}),
}

var tweetAddCmd = &cobra.Command{
	Use:   "tweet-add <tweetId> <content>",
	Short: "Comment on a tweet",
	Args:  cobra.MinimumNArgs(2),
	RunE: withClient(func(ctx context.Context, c *client.Client, args []string) (interface{}, error) {
		return c.AddTweetComment(ctx, args[0], strings.Join(args[1:], " "))
	}),
}

// withClient クライアントを作成して結果をJSONで出力
func withClient(run func(ctx context.Context, c *client.Client, args []string) (interface{}, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		result, err := run(cmd.Context(), c, args)
		if err != nil {
			if errors.Is(err, client.ErrNotLoggedIn) {
				return errors.New("not logged in: run `vidtubectl login` first")
			}
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
}

func newClient() (*client.Client, error) {
	path := credentialsPath
	if path == "" {
		var err error
		if path, err = client.DefaultCredentialsPath(); err != nil {
			return nil, err
		}
	}
	return client.New(apiURL, client.NewFileTokenStore(path)), nil
}

func readPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
