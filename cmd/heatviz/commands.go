/*
	Copyright 2023 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ilhamster/traceviz/heatviz/config"
	"github.com/ilhamster/traceviz/heatviz/service"
)

// options holds flags shared by every command.  Set flags override the
// configuration file.
type options struct {
	configPath string
	input      string
	output     string
	title      string
	fields     []string
	verbose    bool
}

func (o *options) config() (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}
	if o.input != "" {
		cfg.Input = o.input
	}
	if o.output != "" {
		cfg.Output = o.output
	}
	if o.title != "" {
		cfg.Title = o.title
	}
	if o.verbose {
		cfg.Verbose = true
	}
	// Fields given as flags replace those in the configuration file.
	if len(o.fields) > 0 {
		cfg.Fields = nil
		for _, flag := range o.fields {
			f, err := config.ParseField(flag)
			if err != nil {
				return nil, err
			}
			cfg.Fields = append(cfg.Fields, f)
		}
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	render := newRenderCmd(opts)
	root := &cobra.Command{
		Use:   "heatviz",
		Short: "Render health tracker exports as calendar heatmaps",
		Long: `Render minute-resolution health tracker exports as HTML calendar heatmaps:
one row per day, one colored cell per reading.

Examples:
  # Render every field in heatviz.yaml
  heatviz --config heatviz.yaml

  # Render skin temperature from a directory of exports into one document
  heatviz render --input raw_data --output heatmap.html --field temp:1:numeric:F

  # List the columns of an export
  heatviz fields --input raw_data`,
		Args:          cobra.NoArgs,
		RunE:          render.RunE,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	flags.StringVarP(&opts.input, "input", "i", "", "Input export file, or directory of export files")
	flags.StringVarP(&opts.output, "output", "o", "", "Output .html file, or directory for per-field documents")
	flags.StringVar(&opts.title, "title", "", "Document title")
	flags.StringArrayVarP(&opts.fields, "field", "f", nil, "Field to render, as id:index:kind[:unit]; repeatable")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log every skipped row")
	root.AddCommand(render, newFieldsCmd(opts))
	return root
}

func newRenderCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Render heatmap documents (the default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			svc, err := service.New(cfg)
			if err != nil {
				return err
			}
			written, err := svc.Run(cmd.Context())
			if err != nil {
				return err
			}
			green := color.New(color.FgGreen).SprintFunc()
			cyan := color.New(color.FgCyan).SprintFunc()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Rendered %d field(s) from %d input(s)\n", green("✓"), len(cfg.Fields), len(svc.Inputs()))
			for _, path := range written {
				fmt.Fprintf(out, "  %s\n", cyan(path))
			}
			return nil
		},
	}
}

func newFieldsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List the columns of the first input, with their indices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			if cfg.Input == "" {
				return fmt.Errorf("no input; set --input or a configuration file")
			}
			header, err := service.Header(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			cyan := color.New(color.FgCyan).SprintFunc()
			yellow := color.New(color.FgYellow).SprintFunc()
			out := cmd.OutOrStdout()
			for idx, name := range header {
				note := ""
				switch idx {
				case cfg.TimestampField:
					note = yellow(" (timestamp)")
				case cfg.TimeField:
					note = yellow(" (time)")
				}
				fmt.Fprintf(out, "%s %s%s\n", cyan(fmt.Sprintf("%3d", idx)), name, note)
			}
			return nil
		},
	}
}
