package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/specsurvey/zcatalog/pkg/fits"
	"github.com/specsurvey/zcatalog/pkg/logging"
)

// inspectCmd summarizes result or catalog files without building anything.
var inspectCmd = &cobra.Command{
	Use:   "inspect FILE...",
	Short: "Summarize the headers and tables of result files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := logging.WithLogger(cmd.Context(), logging.Default())
	title := cases.Title(language.English)

	for _, path := range args {
		f, err := fits.Open(ctx, path)
		if err != nil {
			return err
		}

		fmt.Printf("%s\n", path)
		if group, ok := f.PrimaryHeader().GetString("SPGRP"); ok {
			fmt.Printf("  Grouping: %s\n", title.String(group))
		}
		for _, card := range f.PrimaryHeader().Cards() {
			fmt.Printf("  %-8s = %v\n", card.Name, card.Value)
		}
		for _, name := range f.TableNames() {
			t, _ := f.Table(name)
			fmt.Printf("  %s: %d rows, %d columns (%s)\n",
				name, t.NumRows(), t.NumCols(), strings.Join(t.ColumnNames(), ", "))
		}
	}
	return nil
}
