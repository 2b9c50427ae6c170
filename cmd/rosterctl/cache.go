package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/onnwee/student-roster/internal/cache"
	"github.com/onnwee/student-roster/internal/server"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the cached roster",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the cached roster so the next read goes to the durable store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServer(cmd.Context(), func(s *server.Server) error {
			res := s.Roster().ClearCache(cmd.Context())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "key=%s cleared=%t (%.2f ms)\n", res.Key, res.Cleared,
				float64(res.Latency)/float64(time.Millisecond))
			if res.Err != nil {
				fmt.Fprintf(out, "cache unavailable: %v\n", res.Err)
			}
			return nil
		})
	},
}

var cacheTTLCmd = &cobra.Command{
	Use:   "ttl",
	Short: "Show the remaining life of the cached roster",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServer(cmd.Context(), func(s *server.Server) error {
			c := s.Roster()
			out := cmd.OutOrStdout()
			ttl, ok := c.CacheTTL(cmd.Context())
			switch {
			case !ok:
				fmt.Fprintf(out, "%s: cache unavailable\n", c.Key())
			case ttl == cache.TTLMissing:
				fmt.Fprintf(out, "%s: not cached\n", c.Key())
			case ttl < 0:
				fmt.Fprintf(out, "%s: no expiry\n", c.Key())
			default:
				fmt.Fprintf(out, "%s: %ds of %ds remaining\n", c.Key(),
					int64(ttl/time.Second), int64(c.Window()/time.Second))
			}
			return nil
		})
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd, cacheTTLCmd)
	rootCmd.AddCommand(cacheCmd)
}
