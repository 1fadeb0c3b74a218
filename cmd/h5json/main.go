// Command h5json validates and transforms HDF5/JSON design documents and
// manages SQLite-backed design stores.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hdpserv/h5json"
)

var (
	log = logrus.New()

	cfgPath string
	cfg     config
)

// config carries the CLI settings. Values from --config are deep-merged over
// the built-in defaults, so a partial file only overrides what it names.
type config struct {
	LogLevel string `yaml:"logLevel"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
}

func defaultConfig() map[string]any {
	return map[string]any{
		"logLevel": "info",
		"database": map[string]any{
			"path": "design.db",
		},
	}
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "h5json",
		Short: "Validate and transform HDF5/JSON design documents",
		Long: `h5json works with HDF5/JSON descriptions of hierarchical data containers:
validate untrusted documents against the container format's consistency rules,
reconstruct object paths, detach subtrees under fresh identities, and move
designs in and out of a SQLite-backed store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return loadConfig()
		},
	}
	c.PersistentFlags().StringVar(&cfgPath, "config", "", "YAML config file merged over defaults")
	c.AddCommand(newValidateCmd(), newPathsCmd(), newDetachCmd(), newImportCmd(), newDumpCmd())
	return c
}

func loadConfig() error {
	merged := defaultConfig()
	if cfgPath != "" {
		raw, err := os.ReadFile(cfgPath)
		if err != nil {
			return fmt.Errorf("read config %s: %w", cfgPath, err)
		}
		var overrides map[string]any
		if err := yaml.Unmarshal(raw, &overrides); err != nil {
			return fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
		merged = h5json.Merge(merged, overrides)
	}
	out, err := yaml.Marshal(merged)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(out, &cfg); err != nil {
		return fmt.Errorf("apply config: %w", err)
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("config logLevel: %w", err)
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	return nil
}
