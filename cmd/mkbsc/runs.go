package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gpihl/mkbsc/internal/store"
)

var runsDB string

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List archived solve runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		if runsDB == "" {
			return fmt.Errorf("no database given: set --db or MKBSC_DB")
		}
		st, err := store.Open(runsDB)
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.Runs(cmd.Context())
		if err != nil {
			return err
		}
		for _, r := range runs {
			levels, err := st.Levels(cmd.Context(), r.ID)
			if err != nil {
				return err
			}
			fmt.Printf("%s  %-24s  %s  levels=%d\n",
				r.ID, r.Name, r.CreatedAt.Format("2006-01-02 15:04:05"), len(levels))
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().StringVar(&runsDB, "db", os.Getenv("MKBSC_DB"), "SQLite database to list")
}
