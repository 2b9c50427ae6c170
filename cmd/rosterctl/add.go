package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/onnwee/student-roster/internal/roster"
	"github.com/onnwee/student-roster/internal/server"
)

var addCmd = &cobra.Command{
	Use:   "add STUDENT_ID FIRST_NAME LAST_NAME MODULE_CODE",
	Short: "Enrol a student and invalidate the cached roster",
	Args:  cobra.ExactArgs(4),
	RunE:  runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	rec := roster.Record{StudentID: args[0], FirstName: args[1], LastName: args[2], ModuleCode: args[3]}
	return withServer(cmd.Context(), func(s *server.Server) error {
		stored, err := s.Roster().AddRecord(cmd.Context(), rec)
		if err != nil {
			return err
		}
		return json.NewEncoder(cmd.OutOrStdout()).Encode(stored)
	})
}
