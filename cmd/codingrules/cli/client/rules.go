package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/mwantia/codingrules/pkg/catalog"
	"github.com/mwantia/codingrules/pkg/db/store"
	"github.com/mwantia/codingrules/pkg/facet"
	"github.com/mwantia/codingrules/pkg/query"
	"github.com/mwantia/codingrules/pkg/rules"
	"github.com/spf13/cobra"

	config "github.com/mwantia/codingrules/internal/config/server"
)

func NewRulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage the rule store",
		Long:  "Import rule catalogs into the local rule store and search or show its rules.",
	}

	cmd.AddCommand(NewRulesImportCommand())
	cmd.AddCommand(NewRulesSearchCommand())
	cmd.AddCommand(NewRulesShowCommand())

	return cmd
}

// openStore opens the store configured for the agent, applying pending
// migrations when migrate is set.
func openStore(ctx context.Context, migrate bool) (*store.SQLiteStore, *config.BaseServerConfig, error) {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load server configuration: %w", err)
	}

	st, err := store.OpenSQLiteStore(ctx, store.SQLiteConfig{Path: cfg.Metadata.SQLite.Path}, migrate)
	if err != nil {
		return nil, nil, err
	}

	return st, cfg, nil
}

func NewRulesImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <catalog.yaml>",
		Short: "Import a rule catalog",
		Long:  "Import the profiles, rules and activations of a YAML catalog. Existing profiles and rules are kept.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cat, err := catalog.LoadFile(args[0])
			if err != nil {
				return err
			}

			st, _, err := openStore(ctx, true)
			if err != nil {
				return err
			}
			defer st.Close()

			stats, err := catalog.Import(ctx, st, cat)
			if err != nil {
				return err
			}

			cmd.Printf("Imported %s rules, %s profiles and %s activations (%s skipped)\n",
				humanize.Comma(int64(stats.Rules)),
				humanize.Comma(int64(stats.Profiles)),
				humanize.Comma(int64(stats.Activations)),
				humanize.Comma(int64(stats.Skipped)))
			return nil
		},
	}

	return cmd
}

func NewRulesSearchCommand() *cobra.Command {
	var rawQuery string
	var page, pageSize int
	var sortBy string
	var desc bool
	var facets []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search rules",
		Long: `Search rules by a raw rules query, e.g.

  codingrules rules search --query "languages=java&types=BUG" --facets tags,types`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			raw, err := url.ParseQuery(rawQuery)
			if err != nil {
				return fmt.Errorf("invalid query: %w", err)
			}

			st, cfg, err := openStore(ctx, true)
			if err != nil {
				return err
			}
			defer st.Close()

			if pageSize <= 0 {
				pageSize = cfg.Search.DefaultPageSize
			}

			search := store.Search{
				Query:    query.Parse(raw),
				Page:     page,
				PageSize: min(pageSize, cfg.Search.MaxPageSize),
				Sort:     sortBy,
				Asc:      !desc,
			}
			if len(args) > 0 {
				search.Text = args[0]
			}

			keys := make([]query.FacetKey, 0, len(facets))
			for _, name := range facets {
				key := query.AppFacet(strings.TrimSpace(name))
				if !query.ShouldRequestFacet(key) {
					return fmt.Errorf("unsupported facet '%s'", name)
				}
				keys = append(keys, key)
			}

			result, err := st.SearchRules(ctx, search)
			if err != nil {
				return err
			}
			counts, err := st.FacetCounts(ctx, search, keys)
			if err != nil {
				return err
			}

			if asJSON {
				found := make([]rules.Rule, 0, len(result.Rules))
				for _, m := range result.Rules {
					found = append(found, rules.FromModel(m))
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"query":  query.Serialize(search.Query).Encode(),
					"total":  result.Total,
					"rules":  found,
					"facets": counts,
				})
			}

			printSearchResult(cmd.OutOrStdout(), result)
			for _, key := range keys {
				printFacet(cmd.OutOrStdout(), key, counts[key])
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&rawQuery, "query", "q", "", "raw rules query, e.g. \"languages=java&is_template=false\"")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "rules per page (default from search.default_page_size)")
	cmd.Flags().StringVarP(&sortBy, "sort", "s", store.SortByName, "sort field (name, key, createdAt)")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	cmd.Flags().StringSliceVarP(&facets, "facets", "f", nil, "facets to count (languages, repositories, statuses, tags, types, active_severities)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

func printSearchResult(w io.Writer, result *store.SearchResult) {
	first := int64(0)
	if len(result.Rules) > 0 {
		first = int64((result.Page-1)*result.PageSize + 1)
	}
	last := first + int64(len(result.Rules)) - 1
	if last < first {
		last = first
	}
	fmt.Fprintf(w, "Showing %s-%s of %s rules\n\n",
		humanize.Comma(first), humanize.Comma(last), humanize.Comma(result.Total))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tLANGUAGE\tTYPE\tSEVERITY\tNAME")
	for _, r := range result.Rules {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Key, r.LanguageName, r.Type, r.Severity, r.Name)
	}
	tw.Flush()
}

func printFacet(w io.Writer, key query.FacetKey, stats query.Facet) {
	values := facet.Order(stats, nil)
	parts := make([]string, 0, len(values))
	for _, value := range values {
		parts = append(parts, fmt.Sprintf("%s (%s)", value, facet.FormatShortInt(stats[value])))
	}
	fmt.Fprintf(w, "\n%s: %s\n", query.ServerFacet(key), strings.Join(parts, ", "))
}

func NewRulesShowCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <key>",
		Short: "Show a rule",
		Long:  "Show a rule and the filters that find similar rules.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, _, err := openStore(ctx, true)
			if err != nil {
				return err
			}
			defer st.Close()

			m, err := st.GetRule(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get rule '%s': %w", args[0], err)
			}

			rule := rules.FromModel(*m)
			similar := rules.SimilarRules(rule)

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"rule":    rule,
					"similar": similar,
				})
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s\n%s\n\n", rule.Name, rule.Key)
			fmt.Fprintf(w, "Language:  %s\n", rule.LangName)
			fmt.Fprintf(w, "Type:      %s\n", rule.Type)
			fmt.Fprintf(w, "Severity:  %s\n", rule.Severity)
			fmt.Fprintf(w, "Status:    %s\n", rule.Status)
			fmt.Fprintf(w, "Created:   %s (%s)\n", rule.CreatedAt.Format("2006-01-02"), humanize.Time(rule.CreatedAt))
			if tags := rule.AllTags(); len(tags) > 0 {
				fmt.Fprintf(w, "Tags:      %s\n", strings.Join(tags, ", "))
			}
			if m.Description != "" {
				fmt.Fprintf(w, "\n%s\n", m.Description)
			}

			fmt.Fprintln(w, "\nSimilar rules:")
			for _, f := range similar {
				fmt.Fprintf(w, "  %s\n", query.Serialize(f.Apply(query.Parse(nil))).Encode())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
