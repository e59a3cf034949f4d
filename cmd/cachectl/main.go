// Command cachectl drives the reading cache admin endpoints of a running
// horoscope API.
package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	"horoscope/internal/models"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	cl := &client{
		BaseURL:   envOr("HOROSCOPE_API_URL", "http://localhost:8080"),
		Token:     envOr("HOROSCOPE_TOKEN", ""),
		OutFormat: envOr("HOROSCOPE_OUT", "json"),
		HTTP:      &http.Client{Timeout: 30 * time.Second},
		Out:       out,
	}

	root := &cobra.Command{
		Use:           "cachectl",
		Short:         "Reading cache administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cl.Token == "" {
				return fmt.Errorf("missing token (flag --token or env HOROSCOPE_TOKEN)")
			}
			return nil
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&cl.BaseURL, "api-url", cl.BaseURL, "API base URL (env HOROSCOPE_API_URL)")
	root.PersistentFlags().StringVar(&cl.Token, "token", cl.Token, "admin bearer token (env HOROSCOPE_TOKEN)")
	root.PersistentFlags().StringVar(&cl.OutFormat, "out", cl.OutFormat, "output format: json|text")

	root.AddCommand(statsCmd(cl), actionCmd(cl), resetCmd(cl), flushCmd(cl))
	return root
}

func statsCmd(cl *client) *cobra.Command {
	var userID string
	var debug bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics and health",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if userID != "" {
				q.Set("user_id", userID)
			}
			if debug {
				q.Set("debug", "true")
			}
			path := statsPath
			if len(q) > 0 {
				path += "?" + q.Encode()
			}
			return cl.call(cmd.Context(), http.MethodGet, path, nil)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user to include debug data for")
	cmd.Flags().BoolVar(&debug, "debug", false, "include per-user debug data")
	return cmd
}

func actionCmd(cl *client) *cobra.Command {
	var (
		req          models.CacheActionRequest
		maxAge, days int
	)
	cmd := &cobra.Command{
		Use:       "action <name>",
		Short:     "Run an admin action (invalidate_user, cleanup_old, warm_cache, refresh_reading, get_user_debug)",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"invalidate_user", "cleanup_old", "warm_cache", "refresh_reading", "get_user_debug"},
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Action = args[0]
			// Unset flags stay out of the body so the server defaults apply.
			if cmd.Flags().Changed("max-age") {
				req.MaxAge = &maxAge
			}
			if cmd.Flags().Changed("days") {
				req.Days = &days
			}
			return cl.call(cmd.Context(), http.MethodPost, statsPath, req)
		},
	}
	cmd.Flags().StringVar(&req.UserID, "user", "", "target user id")
	cmd.Flags().StringVar(&req.Date, "date", "", "reading date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&req.DryRun, "dry-run", false, "report what would change without changing it")
	cmd.Flags().BoolVar(&req.Force, "force", false, "regenerate even when cached")
	cmd.Flags().IntVar(&maxAge, "max-age", 0, "cleanup_old: age in days")
	cmd.Flags().IntVar(&days, "days", 0, "warm_cache: number of days")
	return cmd
}

func resetCmd(cl *client) *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := statsPath
			if confirm {
				path += "?confirm=true"
			}
			return cl.call(cmd.Context(), http.MethodDelete, path, nil)
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "required to reset")
	return cmd
}

func flushCmd(cl *client) *cobra.Command {
	req := models.EmergencyFlushRequest{Operation: "emergency_flush"}
	cmd := &cobra.Command{
		Use:   "flush",
		Short: "Emergency flush of cache keys matching a pattern",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cl.call(cmd.Context(), http.MethodPatch, statsPath, req)
		},
	}
	cmd.Flags().StringVar(&req.Pattern, "pattern", "", "key pattern (default reading:*)")
	cmd.Flags().BoolVar(&req.Confirm, "confirm", false, "required to flush")
	return cmd
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
