package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andreyvit/kvtree"
)

// NewPutCommand creates the put command.
func NewPutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "put <name> <json>",
		Short: "Replace a whole root container with a JSON array or object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.ContainsRune(args[0], kvtree.Separator) {
				return fmt.Errorf("put takes a root name, use set for %q", args[0])
			}
			v, err := parseValue(args[1])
			if err != nil {
				return err
			}
			return opts.withDB(func(db *kvtree.DB) error {
				if err := db.Put(args[0], v); err != nil {
					return err
				}
				opts.output(cmd).Done("stored %s", args[0])
				return nil
			})
		},
	}
}

// NewSetCommand creates the set command.
func NewSetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <path> <json>",
		Short: "Set a list element or a map field to a JSON value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseValue(args[1])
			if err != nil {
				return err
			}
			return opts.withDB(func(db *kvtree.DB) error {
				if err := db.Put(args[0], v); err != nil {
					return err
				}
				opts.output(cmd).Done("stored %s", args[0])
				return nil
			})
		},
	}
}

// NewAppendCommand creates the append command.
func NewAppendCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "append <path> <json>...",
		Short: "Append JSON values to the list at a path",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make([]any, 0, len(args)-1)
			for _, arg := range args[1:] {
				v, err := parseValue(arg)
				if err != nil {
					return err
				}
				values = append(values, v)
			}
			return opts.withDB(func(db *kvtree.DB) error {
				l, err := lookupList(db, args[0])
				if err != nil {
					return err
				}
				if err := l.Extend(values); err != nil {
					return err
				}
				opts.output(cmd).Done("appended %d value(s) to %s", len(values), args[0])
				return nil
			})
		},
	}
}

// NewPopCommand creates the pop command.
func NewPopCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pop <path>",
		Short: "Remove and print the last element of a list, or a map field",
		Long: `Remove and print the last element of a list, or a map field.

When the path names a list, its last element is popped. Otherwise the last
path segment names a field of the map the rest of the path leads to.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			return opts.withDB(func(db *kvtree.DB) error {
				var popped any
				v, err := db.Lookup(path)
				if err != nil {
					return err
				}
				if v.Kind() == kvtree.KindList {
					popped, err = v.List().PopNative()
				} else {
					i := strings.LastIndexByte(path, kvtree.Separator)
					if i < 0 {
						return fmt.Errorf("%s is a %v, not a list", path, v.Kind())
					}
					var parent kvtree.Value
					parent, err = db.Lookup(path[:i])
					if err != nil {
						return err
					}
					if parent.Kind() != kvtree.KindMap {
						return fmt.Errorf("%s: only the last element of a list can be popped", path)
					}
					popped, err = parent.Map().PopNative(path[i+1:])
				}
				if err != nil {
					return err
				}
				return opts.output(cmd).Print(popped)
			})
		},
	}
}

// NewClearCommand creates the clear command.
func NewClearCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <path>",
		Short: "Remove everything inside the container at a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withDB(func(db *kvtree.DB) error {
				v, err := db.Lookup(args[0])
				if err != nil {
					return err
				}
				switch v.Kind() {
				case kvtree.KindList:
					err = v.List().Clear()
				case kvtree.KindMap:
					err = v.Map().Clear()
				default:
					return fmt.Errorf("%s is a %v, not a container", args[0], v.Kind())
				}
				if err != nil {
					return err
				}
				opts.output(cmd).Done("cleared %s", args[0])
				return nil
			})
		},
	}
}

// NewImportCommand creates the import command.
func NewImportCommand(opts *RootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "import <name> <file>",
		Short: "Replace a root container with a msgpack snapshot (or JSON) read from a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			return opts.withDB(func(db *kvtree.DB) error {
				if asJSON {
					v, err := parseValueBytes(data)
					if err != nil {
						return err
					}
					if err := db.Put(args[0], v); err != nil {
						return err
					}
				} else if err := db.Restore(args[0], data); err != nil {
					return err
				}
				opts.output(cmd).Done("imported %s", args[0])
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "the file holds JSON instead of a msgpack snapshot")
	return cmd
}

func lookupList(db *kvtree.DB, path string) (*kvtree.List, error) {
	v, err := db.Lookup(path)
	if err != nil {
		return nil, err
	}
	if v.Kind() != kvtree.KindList {
		return nil, fmt.Errorf("%s is a %v, not a list", path, v.Kind())
	}
	return v.List(), nil
}
