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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilhamster/traceviz/heatviz/config"
)

const export = `timestamp,temperature,stage
2015-04-01 00:01:00,98.6,light
2015-04-01 00:02:00,99.0,rem
`

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(export), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRenderWithFieldFlags(t *testing.T) {
	input := writeInput(t)
	output := filepath.Join(t.TempDir(), "heatmap.html")

	out, err := execute(t, "render", "--input", input, "--output", output,
		"--field", "temp:1:numeric:F", "-f", "stage:2:categorical")
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Rendered 2 field(s) from 1 input(s)")
	assert.Contains(t, out, output)
	doc, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(doc), `<section id="field-temp">`)
	assert.Contains(t, string(doc), `<section id="field-stage">`)
}

func TestRenderIsDefault(t *testing.T) {
	input := writeInput(t)
	outDir := filepath.Join(t.TempDir(), "out")
	cfgPath := filepath.Join(t.TempDir(), "heatviz.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
title: Test
fields:
  - id: temp
    index: 1
    kind: numeric
`), 0o644))

	out, err := execute(t, "--config", cfgPath, "--input", input, "--output", outDir)
	require.NoError(t, err)

	assert.Contains(t, out, filepath.Join(outDir, "temp.html"))
	assert.Contains(t, out, filepath.Join(outDir, "index.html"))
	assert.FileExists(t, filepath.Join(outDir, "index.html"))
}

func TestRenderErrors(t *testing.T) {
	input := writeInput(t)
	output := filepath.Join(t.TempDir(), "heatmap.html")
	for _, test := range []struct {
		description string
		args        []string
		wantErr     string
	}{{
		description: "malformed field flag",
		args:        []string{"--input", input, "--output", output, "--field", "temp"},
		wantErr:     "must be id:index:kind[:unit]",
	}, {
		description: "no fields",
		args:        []string{"--input", input, "--output", output},
		wantErr:     "no fields",
	}, {
		description: "missing configuration file",
		args:        []string{"--config", filepath.Join(t.TempDir(), "nope.yaml")},
		wantErr:     "reading config file",
	}, {
		description: "missing input",
		args:        []string{"--input", input + ".gone", "--output", output, "--field", "temp:1:numeric"},
		wantErr:     "no such file",
	}} {
		t.Run(test.description, func(t *testing.T) {
			_, err := execute(t, test.args...)
			assert.ErrorContains(t, err, test.wantErr)
			assert.NoFileExists(t, output)
		})
	}
}

func TestFields(t *testing.T) {
	input := writeInput(t)
	out, err := execute(t, "fields", "--input", input)
	require.NoError(t, err)
	assert.Equal(t, "  0 timestamp (timestamp)\n  1 temperature\n  2 stage\n", out)

	_, err = execute(t, "fields")
	assert.ErrorContains(t, err, "no input")
}

func TestOptionsOverrideConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "heatviz.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
title: From file
input: file_input
output: file_output
fields:
  - id: temp
    index: 1
    kind: numeric
`), 0o644))
	opts := &options{
		configPath: cfgPath,
		output:     "flag_output.html",
		fields:     []string{"hr:3:numeric:bpm"},
		verbose:    true,
	}
	cfg, err := opts.config()
	require.NoError(t, err)

	assert.Equal(t, "From file", cfg.Title)
	assert.Equal(t, "file_input", cfg.Input)
	assert.Equal(t, "flag_output.html", cfg.Output)
	assert.Equal(t, config.Single, cfg.Mode())
	assert.True(t, cfg.Verbose)
	assert.Equal(t, []config.Field{{ID: "hr", Index: 3, Kind: config.Numeric, Unit: "bpm"}}, cfg.Fields)
}
