package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/onnwee/student-roster/internal/roster"
	"github.com/onnwee/student-roster/internal/server"
)

var (
	listDiagnostics bool
	listJSON        bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List enrolled students",
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listDiagnostics, "diagnostics", false, "report whether the cache served the read")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON instead of a table")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	return withServer(cmd.Context(), func(s *server.Server) error {
		recs, diag, err := s.Roster().ReadAllWithDiagnostics(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if listJSON {
			if listDiagnostics {
				return json.NewEncoder(out).Encode(map[string]any{"data": recs, "cache_info": diag.Info()})
			}
			return json.NewEncoder(out).Encode(recs)
		}

		printRecords(cmd, recs)
		if listDiagnostics {
			fmt.Fprintln(out)
			printDiagnostics(cmd, diag.Info())
		}
		return nil
	})
}

func printRecords(cmd *cobra.Command, recs []roster.Record) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STUDENT ID\tFIRST NAME\tLAST NAME\tMODULE")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.StudentID, r.FirstName, r.LastName, r.ModuleCode)
	}
	_ = tw.Flush()
}

func printDiagnostics(cmd *cobra.Command, info roster.CacheInfo) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Cache status:  %s\n", info.Status)
	fmt.Fprintf(out, "Source:        %s\n", info.Source)
	fmt.Fprintf(out, "TTL remaining: %s\n", seconds(info.TTLSeconds))
	fmt.Fprintf(out, "Cache age:     %s\n", seconds(info.CacheAgeSeconds))
	fmt.Fprintf(out, "Response time: %.2f ms\n", info.ResponseTimeMS)
}

func seconds(v *int64) string {
	if v == nil {
		return "unknown"
	}
	return fmt.Sprintf("%ds", *v)
}
