package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/olgasafonova/wikidot-mcp-server/internal/wikidot"
)

// clientFactory builds a client from the resolved global flags
type clientFactory func(opts *globalOptions) (*wikidot.Client, error)

type globalOptions struct {
	configPath string
	site       string
	logLevel   string
	jsonOutput bool
	stderr     io.Writer
}

func defaultClientFactory(opts *globalOptions) (*wikidot.Client, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	return wikidot.NewClient(cfg, wikidot.WithLogger(newLogger(opts)))
}

// loadConfig resolves the config file or environment, then lets --site
// replace the site URL. Environment overrides apply in every case.
func loadConfig(opts *globalOptions) (*wikidot.Config, error) {
	var (
		cfg *wikidot.Config
		err error
	)
	switch {
	case opts.configPath != "":
		cfg, err = wikidot.LoadConfigFile(opts.configPath)
	case opts.site != "":
		cfg = wikidot.DefaultConfig()
		err = cfg.ApplyEnv()
	default:
		return wikidot.LoadConfig()
	}
	if err != nil {
		return nil, err
	}
	if opts.site != "" {
		if err := applySite(cfg, opts.site); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applySite points cfg at site.wikidot.com
func applySite(cfg *wikidot.Config, site string) error {
	if err := wikidot.ValidateSiteName(site); err != nil {
		return err
	}
	cfg.BaseURL = "https://" + site + ".wikidot.com"
	return nil
}

func newLogger(opts *globalOptions) *slog.Logger {
	level := slog.LevelWarn
	switch strings.ToLower(opts.logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	w := opts.stderr
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newRootCmd(factory clientFactory) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "wdctl",
		Short:         "Wikidot page operations from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.stderr = cmd.ErrOrStderr()
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("WIKIDOT_CONFIG"), "YAML config file")
	root.PersistentFlags().StringVar(&opts.site, "site", "", "site short name, overrides WIKIDOT_URL")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "debug, info, warn, or error")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print results as JSON")

	// withClient opens a client for one command run and closes it afterwards
	withClient := func(run func(cmd *cobra.Command, c *wikidot.Client, args []string) (any, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			client, err := factory(opts)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := run(cmd, client, args)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), result, opts.jsonOutput)
		}
	}

	root.AddCommand(
		newListPagesCmd(withClient),
		newSourceCmd(withClient),
		newPageIDCmd(withClient),
		newTagsCmd(withClient),
		newExistsCmd(withClient),
		newSearchCmd(withClient),
		newEditTagsCmd(withClient),
		newRenameCmd(withClient),
		newDeleteCmd(withClient),
		newModuleCmd(withClient),
		newGraphQLCmd(withClient),
	)
	return root
}

type runner func(run func(cmd *cobra.Command, c *wikidot.Client, args []string) (any, error)) func(*cobra.Command, []string) error

func newListPagesCmd(withClient runner) *cobra.Command {
	var args wikidot.ListPagesArgs
	var raw []string

	cmd := &cobra.Command{
		Use:   "list-pages",
		Short: "Run the ListPages module",
		Args:  cobra.NoArgs,
		RunE: withClient(func(cmd *cobra.Command, c *wikidot.Client, _ []string) (any, error) {
			params, err := parseParams(raw)
			if err != nil {
				return nil, err
			}
			args.Params = params
			return c.ListPagesMCP(cmd.Context(), args)
		}),
	}
	cmd.Flags().StringVar(&args.Category, "category", "", "category to list")
	cmd.Flags().StringVar(&args.Tags, "tags", "", "tag selector, e.g. '+scp -joke'")
	cmd.Flags().StringVar(&args.Order, "order", "", "sort order, e.g. 'created_at desc'")
	cmd.Flags().IntVar(&args.PerPage, "per-page", 0, "results per page")
	cmd.Flags().StringVar(&args.ModuleBody, "module-body", "", "module body template")
	cmd.Flags().StringArrayVar(&raw, "param", nil, "extra key=value parameter (repeatable)")
	return cmd
}

func newSourceCmd(withClient runner) *cobra.Command {
	var norender bool
	cmd := &cobra.Command{
		Use:   "source PAGE",
		Short: "Print the HTML of a page",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(func(cmd *cobra.Command, c *wikidot.Client, args []string) (any, error) {
			return c.GetPageSourceMCP(cmd.Context(), wikidot.GetPageSourceArgs{Page: args[0], Norender: norender})
		}),
	}
	cmd.Flags().BoolVar(&norender, "norender", false, "fetch the page without rendered content")
	return cmd
}

func newPageIDCmd(withClient runner) *cobra.Command {
	var site string
	cmd := &cobra.Command{
		Use:   "page-id PAGE",
		Short: "Resolve the numeric page ID",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(func(cmd *cobra.Command, c *wikidot.Client, args []string) (any, error) {
			return c.GetPageIDMCP(cmd.Context(), wikidot.GetPageIDArgs{Page: args[0], Site: site})
		}),
	}
	cmd.Flags().StringVar(&site, "for-site", "", "look the page up on another site")
	return cmd
}

func newTagsCmd(withClient runner) *cobra.Command {
	var site string
	cmd := &cobra.Command{
		Use:   "tags PAGE",
		Short: "Print the tags of a page",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(func(cmd *cobra.Command, c *wikidot.Client, args []string) (any, error) {
			return c.GetTagsMCP(cmd.Context(), wikidot.GetTagsArgs{Page: args[0], Site: site})
		}),
	}
	cmd.Flags().StringVar(&site, "for-site", "", "look the page up on another site")
	return cmd
}

func newExistsCmd(withClient runner) *cobra.Command {
	var a wikidot.PageExistsArgs
	cmd := &cobra.Command{
		Use:   "exists PAGE",
		Short: "Check whether a page exists",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(func(cmd *cobra.Command, c *wikidot.Client, args []string) (any, error) {
			a.Page = args[0]
			return c.PageExistsMCP(cmd.Context(), a)
		}),
	}
	cmd.Flags().StringVar(&a.Site, "for-site", "", "check another site")
	cmd.Flags().BoolVar(&a.UseListPages, "list-pages", false, "ask the live site through ListPages")
	cmd.Flags().StringVar(&a.Category, "category", "", "category for the ListPages check")
	return cmd
}

func newSearchCmd(withClient runner) *cobra.Command {
	return &cobra.Command{
		Use:        "search SITE_ID QUERY",
		Short:      "Look up pages by title prefix",
		Deprecated: "the quick-module endpoint is deprecated upstream; prefer list-pages",
		Args:       cobra.ExactArgs(2),
		RunE: withClient(func(cmd *cobra.Command, c *wikidot.Client, args []string) (any, error) {
			siteID, err := strconv.Atoi(args[0])
			if err != nil {
				return nil, fmt.Errorf("invalid site ID %q: %w", args[0], err)
			}
			return c.SearchPagesMCP(cmd.Context(), wikidot.SearchPagesArgs{SiteID: siteID, Query: args[1]})
		}),
	}
}

func newEditTagsCmd(withClient runner) *cobra.Command {
	return &cobra.Command{
		Use:   "edit-tags PAGE [TAG...]",
		Short: "Replace the tags of a page",
		Args:  cobra.MinimumNArgs(1),
		RunE: withClient(func(cmd *cobra.Command, c *wikidot.Client, args []string) (any, error) {
			return c.EditTagsMCP(cmd.Context(), wikidot.EditTagsArgs{Page: args[0], Tags: args[1:]})
		}),
	}
}

func newRenameCmd(withClient runner) *cobra.Command {
	return &cobra.Command{
		Use:   "rename PAGE NEW_NAME",
		Short: "Rename a page",
		Args:  cobra.ExactArgs(2),
		RunE: withClient(func(cmd *cobra.Command, c *wikidot.Client, args []string) (any, error) {
			return c.RenamePageMCP(cmd.Context(), wikidot.RenamePageArgs{Page: args[0], NewName: args[1]})
		}),
	}
}

func newDeleteCmd(withClient runner) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete PAGE",
		Short: "Delete a page",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(func(cmd *cobra.Command, c *wikidot.Client, args []string) (any, error) {
			if !yes {
				return nil, fmt.Errorf("refusing to delete %s without --yes", args[0])
			}
			return c.DeletePageMCP(cmd.Context(), wikidot.DeletePageArgs{Page: args[0]})
		}),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

func newModuleCmd(withClient runner) *cobra.Command {
	var raw []string
	cmd := &cobra.Command{
		Use:   "module NAME",
		Short: "Call an arbitrary AJAX module",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(func(cmd *cobra.Command, c *wikidot.Client, args []string) (any, error) {
			params, err := parseParams(raw)
			if err != nil {
				return nil, err
			}
			values := url.Values{}
			for k, v := range params {
				values.Set(k, v)
			}
			return c.ModuleCall(cmd.Context(), args[0], values)
		}),
	}
	cmd.Flags().StringArrayVar(&raw, "param", nil, "key=value parameter (repeatable)")
	return cmd
}

func newGraphQLCmd(withClient runner) *cobra.Command {
	var vars string
	cmd := &cobra.Command{
		Use:   "graphql QUERY",
		Short: "Run a query against the GraphQL mirror",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(func(cmd *cobra.Command, c *wikidot.Client, args []string) (any, error) {
			var variables map[string]any
			if vars != "" {
				if err := json.Unmarshal([]byte(vars), &variables); err != nil {
					return nil, fmt.Errorf("invalid --vars: %w", err)
				}
			}
			return c.GraphQLCall(cmd.Context(), args[0], variables)
		}),
	}
	cmd.Flags().StringVar(&vars, "vars", "", "query variables as a JSON object")
	return cmd
}

// parseParams turns key=value pairs into a map
func parseParams(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(raw))
	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid parameter %q, want key=value", kv)
		}
		out[k] = v
	}
	return out, nil
}

// printResult writes result as indented JSON, or as plain text for the
// results that have an obvious text form.
func printResult(w io.Writer, result any, asJSON bool) error {
	if !asJSON {
		switch r := result.(type) {
		case wikidot.GetPageSourceResult:
			_, err := fmt.Fprintln(w, r.Source)
			return err
		case wikidot.GetPageIDResult:
			_, err := fmt.Fprintln(w, r.PageID)
			return err
		case wikidot.GetTagsResult:
			_, err := fmt.Fprintln(w, strings.Join(r.Tags, " "))
			return err
		case wikidot.PageExistsResult:
			_, err := fmt.Fprintln(w, r.Exists)
			return err
		case wikidot.ListPagesResult:
			_, err := fmt.Fprintln(w, r.Body)
			return err
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
