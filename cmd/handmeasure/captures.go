package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/handmeasure/internal/store"
)

var (
	capturesLimit int
	capturesJSON  bool
)

var capturesCmd = &cobra.Command{
	Use:   "captures",
	Short: "Inspect the capture history",
}

var capturesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded captures, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		captures, err := st.Captures().List(capturesLimit)
		if err != nil {
			return err
		}

		if capturesJSON {
			return writeJSON(cmd.OutOrStdout(), captures)
		}
		if len(captures) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No captures recorded.")
			return nil
		}
		printCaptures(cmd.OutOrStdout(), captures)
		return nil
	},
}

var capturesShowCmd = &cobra.Command{
	Use:   "show <id|latest>",
	Short: "Show one capture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		var c *store.Capture
		if args[0] == "latest" {
			c, err = st.Captures().Latest()
		} else {
			c, err = st.Captures().GetByID(args[0])
		}
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("capture %s not found", args[0])
		}
		if err != nil {
			return err
		}

		if capturesJSON {
			return writeJSON(cmd.OutOrStdout(), c)
		}
		printCaptures(cmd.OutOrStdout(), []*store.Capture{c})
		return nil
	},
}

var capturesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a capture from the history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Captures().Delete(args[0]); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("capture %s not found", args[0])
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	capturesListCmd.Flags().IntVarP(&capturesLimit, "limit", "n", 20, "maximum number of captures (0 for all)")
	capturesCmd.PersistentFlags().BoolVar(&capturesJSON, "json", false, "output as JSON")

	capturesCmd.AddCommand(capturesListCmd, capturesShowCmd, capturesDeleteCmd)
	rootCmd.AddCommand(capturesCmd)
}

func openStore() (*store.Store, error) {
	if cfg.Store.Path == "" {
		return nil, errors.New("capture history is disabled (store.path is empty)")
	}
	return store.New(cfg.Store.Path)
}

func printCaptures(out io.Writer, captures []*store.Capture) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWHEN\tWIDTH (in)\tHEIGHT (in)\tSCORE\tTRIGGER\tIMAGE")
	for _, c := range captures {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%d\t%s\t%s\n",
			c.ID, c.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			c.WidthIn, c.HeightIn, c.SizeCategory, c.Trigger, c.ImagePath)
	}
	w.Flush()
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
