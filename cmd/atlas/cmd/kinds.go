package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"appatlas/internal/object"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List supported object kinds",
	Run: func(cmd *cobra.Command, args []string) {
		for _, kind := range object.Kinds {
			fmt.Println(kind)
		}
	},
}

func init() {
	rootCmd.AddCommand(kindsCmd)
}
