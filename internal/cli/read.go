package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/andreyvit/kvtree"
)

// NewDumpCommand creates the dump command.
func NewDumpCommand(opts *RootOptions) *cobra.Command {
	var stats bool
	cmd := &cobra.Command{
		Use:   "dump [name]",
		Short: "Print the raw records of a root container, or of all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) > 0 {
				name = args[0]
			}
			flags := kvtree.DumpHeaders | kvtree.DumpRecords
			if stats {
				flags |= kvtree.DumpStats
			}
			return opts.withDB(func(db *kvtree.DB) error {
				s, err := db.Dump(name, flags)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write([]byte(s))
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&stats, "stats", false, "include size statistics")
	return cmd
}

// NewGetCommand creates the get command.
func NewGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <path>",
		Short: "Print the value at a path, reading nested containers in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withDB(func(db *kvtree.DB) error {
				v, err := db.Lookup(args[0])
				if err != nil {
					return err
				}
				data, err := nativeOf(v)
				if err != nil {
					return err
				}
				return opts.output(cmd).Print(data)
			})
		},
	}
}

// NewKeysCommand creates the keys command.
func NewKeysCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "keys [prefix]",
		Short: "List the flat record keys, optionally only those with a prefix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var prefix string
			if len(args) > 0 {
				prefix = args[0]
			}
			return opts.withDB(func(db *kvtree.DB) error {
				keys, err := db.RawKeys(prefix)
				if err != nil {
					return err
				}
				out := opts.output(cmd)
				if out.Format != "text" {
					return out.Print(keys)
				}
				for _, k := range keys {
					if err := out.Print(k); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(opts *RootOptions) *cobra.Command {
	var withMetrics bool
	cmd := &cobra.Command{
		Use:   "stats [name]",
		Short: "Print database statistics, or the statistics of one root container",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withDB(func(db *kvtree.DB) error {
				out := opts.output(cmd)
				if len(args) == 0 {
					s, err := db.Stats()
					if err != nil {
						return err
					}
					if err := out.Print(s); err != nil {
						return err
					}
					if withMetrics {
						db.WriteMetrics(cmd.OutOrStdout())
					}
					return nil
				}

				v, err := db.Root(args[0])
				if err != nil {
					return err
				}
				var s kvtree.ContainerStats
				switch v.Kind() {
				case kvtree.KindList:
					s, err = v.List().Stats()
				case kvtree.KindMap:
					s, err = v.Map().Stats()
				}
				if err != nil {
					return err
				}
				return out.Print(s)
			})
		},
	}
	cmd.Flags().BoolVar(&withMetrics, "metrics", false, "also print operation counters in Prometheus format")
	return cmd
}

// NewExportCommand creates the export command.
func NewExportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <name> <file>",
		Short: "Write a msgpack snapshot of a root container to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withDB(func(db *kvtree.DB) error {
				data, err := db.Snapshot(args[0])
				if err != nil {
					return err
				}
				if err := os.WriteFile(args[1], data, 0o644); err != nil {
					return err
				}
				opts.output(cmd).Done("exported %s (%d bytes)", args[0], len(data))
				return nil
			})
		},
	}
}
