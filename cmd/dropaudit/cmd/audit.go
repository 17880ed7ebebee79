package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nfdtools/dropaudit/internal/cmd/output"
	"github.com/nfdtools/dropaudit/internal/sources/indexer"
	"github.com/nfdtools/dropaudit/internal/sources/registry"
	"github.com/nfdtools/dropaudit/pkg/audit"
	"github.com/nfdtools/dropaudit/pkg/errors"
	"github.com/nfdtools/dropaudit/pkg/logging"
)

// auditCmd runs the full reconciliation and prints the report.
var auditCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the distribution audit",
	Long: `Run fetches the segment registry and the distributor's transfer
history, reconciles entitlements against received amounts, and prints one
row per address with an outstanding delta.

Upstream failures degrade the run instead of aborting it: a partial
registry or an unavailable indexer produces a report flagged as partial.`,
	Example: `  dropaudit run
  dropaudit run --format csv --out report.csv
  dropaudit run --parent-app-id 1282363795 --rate 45745.65416`,
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)

	flags := auditCmd.Flags()
	flags.String("parent-app-id", "", "registry root application ID")
	flags.String("distributor", "", "address the payouts were sent from")
	flags.Uint64("asset-id", 0, "ledger asset identifier")
	flags.Int32("asset-decimals", 0, "asset decimal precision")
	flags.String("rate", "", "entitlement per segment, in decimal units")
	flags.StringSlice("blacklist", nil, "addresses excluded from the audit")
	flags.Int("page-size", 0, "registry search page size")
	flags.String("zero-tolerance", "", "treat |delta| below this as reconciled")
	flags.String("nonqualifying-basis", "", "qualifying set: owners or outstanding")
	flags.String("registry-url", "", "registry API base URL")
	flags.String("indexer-url", "", "indexer API base URL")
	flags.String("indexer-token", "", "indexer API token")
	flags.StringP("format", "f", "", "output format: table, csv, json, yaml, markdown")
	flags.StringP("out", "o", "", "write the report to a file instead of stdout")

	if err := viper.BindPFlags(flags); err != nil {
		panic(fmt.Sprintf("Failed to bind audit flags: %v", err))
	}
}

func runAudit(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(viper.GetString("format"))
	if err != nil {
		return err
	}
	format = output.DetectFormat(string(format))

	segments := registry.NewClient(viper.GetString("registry-url"))
	transfers := indexer.NewClient(
		viper.GetString("indexer-url"),
		viper.GetString("indexer-token"),
		cfg.Distributor,
		cfg.AssetID,
	)

	pipeline, err := audit.New(segments, transfers, cfg)
	if err != nil {
		return err
	}

	result := pipeline.Run(cmd.Context())
	logging.Info().Msg(result.Summary())

	report := output.NewReport(result, cfg.AssetDecimals)

	var w io.Writer = cmd.OutOrStdout()
	if path := viper.GetString("out"); path != "" {
		file, err := os.Create(path)
		if err != nil {
			return errors.WrapIO("create", path, err)
		}
		defer file.Close()
		w = file
	}

	return output.NewFormatter(format).Format(w, report)
}

// buildConfig layers flag/env/config-file values over the defaults.
func buildConfig() (audit.Config, error) {
	cfg := audit.DefaultConfig()

	if v := viper.GetString("parent-app-id"); v != "" {
		cfg.ParentAppID = v
	}
	if v := viper.GetString("distributor"); v != "" {
		cfg.Distributor = v
	}
	if v := viper.GetUint64("asset-id"); v != 0 {
		cfg.AssetID = v
	}
	if viper.IsSet("asset-decimals") && viper.GetInt32("asset-decimals") != 0 {
		cfg.AssetDecimals = viper.GetInt32("asset-decimals")
	}
	if v := viper.GetString("rate"); v != "" {
		rate, err := decimal.NewFromString(v)
		if err != nil {
			return cfg, errors.NewValidationError("rate", v, "not a decimal number")
		}
		cfg.Rate = rate
	}
	if v := viper.GetStringSlice("blacklist"); len(v) > 0 {
		cfg.Blacklist = v
	}
	if v := viper.GetInt("page-size"); v != 0 {
		cfg.PageSize = v
	}
	if v := viper.GetString("zero-tolerance"); v != "" {
		tolerance, err := decimal.NewFromString(v)
		if err != nil {
			return cfg, errors.NewValidationError("zero-tolerance", v, "not a decimal number")
		}
		cfg.ZeroTolerance = tolerance
	}
	if v := viper.GetString("nonqualifying-basis"); v != "" {
		cfg.NonQualifyingBasis = audit.Basis(v)
	}

	return cfg, cfg.Validate()
}
