package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/frankndungu/pdf-to-csv-parser/pkg/config"
	"github.com/frankndungu/pdf-to-csv-parser/pkg/reference"
)

func referenceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reference",
		Short: "Inspect reference sets",
		Long: `Inspect the reference sets used to recognise subsection titles.

The built-in cesmm3 set is always available. Additional sets are loaded
from YAML files in reference_dir.`,
	}

	cmd.AddCommand(referenceListCmd(a))
	cmd.AddCommand(referenceShowCmd(a))
	cmd.AddCommand(referenceWatchCmd(a))
	return cmd
}

func referenceListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available reference sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := a.registry()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			sets := registry.List()
			fmt.Fprintf(out, "%-16s %8s %12s  %s\n", "NAME", "SECTIONS", "SUBSECTIONS", "DESCRIPTION")
			fmt.Fprintln(out, strings.Repeat("-", 70))
			for _, set := range sets {
				fmt.Fprintf(out, "%-16s %8d %12d  %s\n", set.Name, len(set.Sections), set.SubsectionCount(), set.Description)
			}
			fmt.Fprintf(out, "\n%d reference sets\n", len(sets))
			return nil
		},
	}
}

func referenceShowCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Print a reference set",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			set, err := a.referenceSet(name)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := json.MarshalIndent(set, "", "  ")
				if err != nil {
					return fmt.Errorf("encoding reference set: %w", err)
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(set); err != nil {
				return fmt.Errorf("encoding reference set: %w", err)
			}
			return enc.Close()
		},
	}

	cmd.Flags().Bool("json", false, "print as JSON instead of YAML")
	return cmd
}

func referenceWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Validate reference files in reference_dir as they change",
		Long: `Watch reference_dir and reload each YAML file when it is created or
modified, reporting whether it compiles. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.config.Get().ReferenceDir
			if dir == "" {
				return fmt.Errorf("reference_dir is not configured")
			}

			registry := reference.NewRegistry(a.logger)
			if err := registry.LoadDirectory(dir); err != nil {
				a.logger.Warn("initial load failed", "dir", dir, "error", err)
			}
			registry.SetOnChange(func(event string, set *reference.Set) {
				if set == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\n", event)
					return
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d sections, %d subsections\n",
					event, set.Name, len(set.Sections), set.SubsectionCount())
			})

			if err := registry.Watch(); err != nil {
				return err
			}
			defer registry.StopWatch()

			if a.config.ConfigFile() != "" {
				a.config.OnChange(func(cfg *config.Config) {
					if cfg.ReferenceDir != dir {
						a.logger.Warn("reference_dir changed; restart to watch the new directory",
							"watching", dir, "configured", cfg.ReferenceDir)
					}
				})
				a.config.WatchConfig(a.logger)
			}

			a.logger.Info("watching reference sets", "dir", dir, "loaded", registry.Count())
			<-cmd.Context().Done()
			return nil
		},
	}
}
