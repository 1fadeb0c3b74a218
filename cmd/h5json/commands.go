package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hdpserv/h5json"
	"github.com/hdpserv/h5json/storage"
)

func readDocument(path string) (*h5json.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := h5json.DecodeDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate every object of an HDF5/JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			err = h5json.ValidateDocument(doc)
			if err == nil {
				n := len(doc.Groups) + len(doc.Datasets) + len(doc.Datatypes)
				log.WithField("objects", n).Info("document is valid")
				fmt.Fprintf(c.OutOrStdout(), "%s: %d objects, no issues\n", args[0], n)
				return nil
			}
			iss, _ := h5json.AsIssues(err)
			for _, it := range iss {
				fmt.Fprintf(c.OutOrStdout(), "%s at %s: %s\n", it.Code, it.Path, it.Message)
			}
			return fmt.Errorf("%s: %d issue(s)", args[0], len(iss))
		},
	}
}

func newPathsCmd() *cobra.Command {
	var datasets bool
	c := &cobra.Command{
		Use:   "paths FILE",
		Short: "Reconstruct full paths for the groups or datasets of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			var entries []h5json.PathEntry
			if datasets {
				entries, err = h5json.DatasetPaths(doc)
			} else {
				entries, err = h5json.GroupPaths(doc)
			}
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(c.OutOrStdout(), "%s\t%s\n", e.ID, e.Path)
			}
			return nil
		},
	}
	c.Flags().BoolVar(&datasets, "datasets", false, "List datasets instead of groups")
	return c
}

func newDetachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detach FILE",
		Short: "Rewrite all identities of a document so it detaches from its source",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			detached, err := h5json.DetachDocument(doc)
			if err != nil {
				return err
			}
			out, err := h5json.EncodeDocument(detached)
			if err != nil {
				return err
			}
			log.WithField("root", detached.Root).Info("document detached")
			fmt.Fprintln(c.OutOrStdout(), string(out))
			return nil
		},
	}
}

func newImportCmd() *cobra.Command {
	var dbPath string
	c := &cobra.Command{
		Use:   "import FILE",
		Short: "Import an HDF5/JSON document into a design store",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			// Reject malformed designs before materializing anything.
			if err := h5json.ValidateDocument(doc); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			store, err := storage.Open(pickDB(dbPath), log)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Init(c.Context()); err != nil {
				return err
			}
			return store.Import(c.Context(), doc)
		},
	}
	c.Flags().StringVar(&dbPath, "db", "", "Design store path (defaults to config database.path)")
	return c
}

func newDumpCmd() *cobra.Command {
	var dbPath string
	c := &cobra.Command{
		Use:   "dump",
		Short: "Dump a design store as an HDF5/JSON document",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			store, err := storage.Open(pickDB(dbPath), log)
			if err != nil {
				return err
			}
			defer store.Close()
			doc, err := store.Dump(c.Context())
			if err != nil {
				return err
			}
			out, err := h5json.EncodeDocument(doc)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.OutOrStdout(), string(out))
			return nil
		},
	}
	c.Flags().StringVar(&dbPath, "db", "", "Design store path (defaults to config database.path)")
	return c
}

func pickDB(flag string) string {
	if flag != "" {
		return flag
	}
	return cfg.Database.Path
}
