package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/reoring/recmap"
	"github.com/reoring/recmap/layout"
	rlog "github.com/reoring/recmap/internal/log"
	"github.com/reoring/recmap/source"
)

// app holds state shared by subcommands.
type app struct {
	logLevel   string
	logConsole bool
	log        zerolog.Logger

	schemaPath string
	recordName string
	input      string
	endianness string
	strict     bool
	padding    uint8
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "recmap",
		Short:         "Map structured documents onto fixed-layout binary records",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			rlog.Configure(rlog.Config{Level: a.logLevel, Output: cmd.ErrOrStderr(), Console: a.logConsole})
			a.log = rlog.WithComponent("cli")
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error); defaults to LOG_LEVEL or info")
	root.PersistentFlags().BoolVar(&a.logConsole, "log-console", false, "human-readable log output")

	root.AddCommand(
		newEncodeCmd(a),
		newValidateCmd(a),
		newDecodeCmd(a),
		newJSONSchemaCmd(a),
	)
	return root
}

// recordFlags registers the flags every subcommand needs to pick a record.
func (a *app) recordFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&a.schemaPath, "schema", "s", "", "layout description (json, yaml or toml)")
	cmd.Flags().StringVarP(&a.recordName, "record", "r", "", "record name (defaults to the only record)")
	_ = cmd.MarkFlagRequired("schema")
}

func (a *app) optionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&a.endianness, "endianness", "", "override byte order (little, big)")
	cmd.Flags().BoolVar(&a.strict, "strict", false, "override strict mode")
	cmd.Flags().Uint8Var(&a.padding, "padding", 0, "override padding byte")
}

// loadRecord reads the layout and resolves the record plus effective options
// (layout settings overridden by flags that were set).
func (a *app) loadRecord(cmd *cobra.Command) (*recmap.Record, recmap.Options, error) {
	f, err := layout.Load(a.schemaPath)
	if err != nil {
		return nil, recmap.Options{}, err
	}
	var rec *recmap.Record
	switch {
	case a.recordName != "":
		rec, err = f.Record(a.recordName)
		if err != nil {
			return nil, recmap.Options{}, err
		}
	case len(f.Records) == 1:
		rec = f.Records[0]
	default:
		return nil, recmap.Options{}, fmt.Errorf("--record required, layout has %v", f.Names())
	}

	opts := f.Settings.Options()
	flags := cmd.Flags()
	if flags.Lookup("endianness") != nil && flags.Changed("endianness") {
		e, err := recmap.ParseEndianness(a.endianness)
		if err != nil {
			return nil, recmap.Options{}, err
		}
		opts.ByteOrder = e
	}
	if flags.Lookup("strict") != nil && flags.Changed("strict") {
		opts.Strict = a.strict
	}
	if flags.Lookup("padding") != nil && flags.Changed("padding") {
		opts.Padding = a.padding
	}
	a.log.Debug().
		Str("schema", a.schemaPath).
		Str("record", rec.Name()).
		Int("size", rec.Size()).
		Str("endianness", opts.ByteOrder.String()).
		Bool("strict", opts.Strict).
		Msg("record selected")
	return rec, opts, nil
}

// loadDocument decodes the input document and logs non-fatal findings.
func (a *app) loadDocument() (*recmap.Node, error) {
	doc, err := source.Load(a.input)
	if err != nil {
		return nil, err
	}
	for _, w := range doc.Warnings {
		a.log.Warn().Str("path", w.Path).Str("code", w.Code).Msg(w.Message)
	}
	a.log.Debug().Str("input", a.input).Str("format", string(doc.Format)).Msg("document loaded")
	return doc.Root, nil
}

// printIssues writes one line per issue and returns an exitError.
func printIssues(w io.Writer, iss recmap.Issues) error {
	for _, is := range iss {
		line := fmt.Sprintf("%s: %s: %s", is.Path, is.Code, is.Message)
		if is.Hint != "" {
			line += " (" + is.Hint + ")"
		}
		fmt.Fprintln(w, line)
	}
	return &exitError{code: 1, err: iss}
}
