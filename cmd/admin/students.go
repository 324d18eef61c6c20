package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newStudentsCmd(env func() *adminEnv) *cobra.Command {
	studentsCmd := &cobra.Command{
		Use:   "students",
		Short: "Bulk operations on student records",
	}

	var file string
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Create student records from a CSV export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			n, err := env().students.ImportCSV(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d students\n", n)
			return nil
		},
	}
	importCmd.Flags().StringVar(&file, "file", "", "path to the CSV file")
	_ = importCmd.MarkFlagRequired("file")

	studentsCmd.AddCommand(importCmd)
	return studentsCmd
}
