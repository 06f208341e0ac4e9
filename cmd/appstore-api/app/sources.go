package app

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kosher-appstore/appstore-server/internal/config"
	"github.com/kosher-appstore/appstore-server/internal/domains"
	"github.com/kosher-appstore/appstore-server/internal/httpclient"
	"github.com/kosher-appstore/appstore-server/internal/resolver"
	"github.com/kosher-appstore/appstore-server/internal/sources"
	"github.com/kosher-appstore/appstore-server/internal/store"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Inspect configured app sources",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Usage()
	},
}

var sourcesTestCmd = &cobra.Command{
	Use:   "test <package>",
	Short: "Ask every default source for a package and print the outcomes",
	Long: `Ask every enabled default source for the package's metadata and print one
row per source. Useful to check a mirror's page layout before adding an app.

Example:
  appstore-api sources test org.example.notes --config config.yaml --all`,
	Args: cobra.ExactArgs(1),
	RunE: runSourcesTest,
}

func init() {
	sourcesTestCmd.Flags().String("config", "", "Path to configuration file (optional; defaults apply without it)")
	sourcesTestCmd.Flags().Bool("all", false, "Include sources that are disabled by default")
	sourcesCmd.AddCommand(sourcesTestCmd)
}

func runSourcesTest(cmd *cobra.Command, args []string) error {
	packageName := args[0]
	if !domains.ValidPackageName(packageName) {
		return fmt.Errorf("invalid package name: %q", packageName)
	}

	cfg := &config.Config{}
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.LoadConfig(config.WithConfigPath(path))
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	all, _ := cmd.Flags().GetBool("all")

	client := httpclient.NewClient(domains.NewValidator(cfg.GetAllowedDomains()),
		httpclient.WithUserAgent(cfg.GetUserAgent()))
	res := resolver.New(sources.NewFactory(client,
		sources.WithMetadataTimeout(cfg.GetMetadataTimeout()),
		sources.WithVerifyTimeout(cfg.GetVerifyTimeout()),
		sources.WithPlayStoreURL(cfg.GetPlayStoreURL()),
	))

	descriptors := store.Descriptors(store.DefaultSources())
	if all {
		for i := range descriptors {
			descriptors[i].Enabled = true
		}
	}

	outcomes := res.TestAll(cmd.Context(), packageName, descriptors)
	return renderOutcomes(cmd.OutOrStdout(), outcomes)
}

// renderOutcomes prints one table row per source outcome
func renderOutcomes(w io.Writer, outcomes []resolver.Outcome) error {
	table := tablewriter.NewWriter(w)
	table.Header("Source", "Status", "URL", "Error", "Checked")

	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		rows = append(rows, []string{
			o.SourceName,
			strings.ToUpper(string(o.Status)),
			o.URL,
			o.Error,
			o.CheckedAt.Format(time.RFC3339),
		})
	}
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("failed to build table: %w", err)
	}
	return table.Render()
}
