package client

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mwantia/codingrules/pkg/query"
	"github.com/spf13/cobra"
)

func NewQueryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Inspect rules queries",
		Long:  "Parse, normalize and compare the raw query strings used by rule searches and saved filters.",
	}

	cmd.AddCommand(NewQueryNormalizeCommand())
	cmd.AddCommand(NewQueryEqualCommand())

	return cmd
}

func parseRawQuery(value string) (url.Values, error) {
	raw, err := url.ParseQuery(strings.TrimPrefix(value, "?"))
	if err != nil {
		return nil, fmt.Errorf("invalid query '%s': %w", value, err)
	}
	return raw, nil
}

func NewQueryNormalizeCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "normalize <query>",
		Short: "Print the canonical form of a query",
		Long:  "Parse a raw query and serialize it again. Unknown keys, empty values and invalid tokens are dropped.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := parseRawQuery(args[0])
			if err != nil {
				return err
			}

			q := query.Parse(raw)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), q)
			}

			fmt.Fprintln(cmd.OutOrStdout(), query.Serialize(q).Encode())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the parsed query as JSON")

	return cmd
}

func NewQueryEqualCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "equal <query> <query>",
		Short: "Compare two queries",
		Long:  "Print true when both raw queries select the same rules, false otherwise.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parseRawQuery(args[0])
			if err != nil {
				return err
			}
			b, err := parseRawQuery(args[1])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), query.Equal(query.Serialize(query.Parse(a)), query.Serialize(query.Parse(b))))
			return nil
		},
	}

	return cmd
}
