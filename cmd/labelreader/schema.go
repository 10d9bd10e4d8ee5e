package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/laxmi8801/data-extractor/internal/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the label_reader JSON schema sent with every extraction request",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := schema.ValidateStrict(schema.LabelReader); err != nil {
			return err
		}

		out, err := json.MarshalIndent(schema.LabelReader, "", "  ")
		if err != nil {
			return eris.Wrap(err, "schema: encode")
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return err
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
