package cli

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/andreyvit/kvtree"
)

// RootOptions holds global flags for all commands. Values are resolved from
// flags, KVTREE_* environment variables and .env files, in that order.
type RootOptions struct {
	DBPath   string
	Bucket   string
	LogLevel slog.Level
	Format   string // "text" | "json" | "yaml"

	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for the kvtree CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "kvtree",
		Short: "Inspect and edit kvtree databases",
		Long: `kvtree stores nested lists and maps in a Bolt file, one record per value.

Paths address values inside a root container: "config/servers/0/host".`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().String("db", "kvtree.db", "database file")
	cmd.PersistentFlags().String("bucket", kvtree.DefaultBucket, "Bolt bucket holding the records")
	cmd.PersistentFlags().String("log-level", "warn", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().String("format", "text", "output format (text|json|yaml)")

	cmd.AddCommand(NewDumpCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewKeysCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewPutCommand(opts))
	cmd.AddCommand(NewSetCommand(opts))
	cmd.AddCommand(NewAppendCommand(opts))
	cmd.AddCommand(NewPopCommand(opts))
	cmd.AddCommand(NewClearCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))

	return cmd
}

func (opts *RootOptions) load(cmd *cobra.Command) error {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	v := viper.New()
	v.SetEnvPrefix("kvtree")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	opts.DBPath = v.GetString("db")
	opts.Bucket = v.GetString("bucket")
	opts.Format = v.GetString("format")
	if !slices.Contains(ValidFormats, opts.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
	}
	if err := opts.LogLevel.UnmarshalText([]byte(v.GetString("log-level"))); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	opts.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: opts.LogLevel}))
	return nil
}

// withDB opens the database for the duration of f.
func (opts *RootOptions) withDB(f func(db *kvtree.DB) error) error {
	db, err := kvtree.Open(opts.DBPath, kvtree.Options{
		Logger:  opts.Logger,
		Verbose: opts.LogLevel <= slog.LevelDebug,
		Bucket:  opts.Bucket,
	})
	if err != nil {
		return err
	}
	err = f(db)
	if cerr := db.Close(); err == nil {
		err = cerr
	}
	return err
}

func (opts *RootOptions) output(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
}
