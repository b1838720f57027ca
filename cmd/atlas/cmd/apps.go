package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"appatlas/internal/artifact"
	"appatlas/internal/kb"
)

var appsFlags struct {
	dataDir string
	useSQL  bool
}

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "List applications in a knowledge base",
	RunE: func(cmd *cobra.Command, args []string) error {
		var src kb.Source
		switch {
		case appsFlags.useSQL:
			store, err := artifact.OpenSQL(cfg.SQLDSN)
			if err != nil {
				return err
			}
			defer store.Close()
			src = kb.NewSQLSource(store)
		case appsFlags.dataDir != "":
			local, err := kb.NewLocalSource(appsFlags.dataDir)
			if err != nil {
				return err
			}
			src = local
		default:
			return fmt.Errorf("one of --data-dir or --sql is required")
		}

		summaries, err := kb.New(src).ListApplications(cmd.Context())
		if err != nil {
			return err
		}
		for _, s := range summaries {
			fmt.Printf("%s\t%v objects\n", s.Name, s.TotalObjects)
		}
		return nil
	},
}

func init() {
	appsCmd.Flags().StringVar(&appsFlags.dataDir, "data-dir", "", "local directory of application artifact folders")
	appsCmd.Flags().BoolVar(&appsFlags.useSQL, "sql", false, "read from the SQL store (ATLAS_SQL_DSN)")
	rootCmd.AddCommand(appsCmd)
}
