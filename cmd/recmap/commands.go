package main

import (
	"encoding/hex"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/reoring/recmap"
)

func newEncodeCmd(a *app) *cobra.Command {
	var out, report string
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Validate a document and write the binary record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, opts, err := a.loadRecord(cmd)
			if err != nil {
				return err
			}
			root, err := a.loadDocument()
			if err != nil {
				return reportErr(cmd, err)
			}
			enc, err := recmap.Transcode(rec, root, opts)
			if err != nil {
				return reportErr(cmd, err)
			}

			if out == "" {
				fmt.Fprint(cmd.OutOrStdout(), hex.Dump(enc.Bytes()))
			} else if err := os.WriteFile(out, enc.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			a.log.Info().Str("record", rec.Name()).Int("bytes", enc.Len()).Str("output", out).Msg("encoded")

			if report != "" {
				// The report lists the values as they were stored.
				used, err := recmap.Decode(rec, enc.Bytes(), opts)
				if err != nil {
					return err
				}
				b, err := json.MarshalIndent(used, "", "  ")
				if err != nil {
					return err
				}
				if err := os.WriteFile(report, append(b, '\n'), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", report, err)
				}
			}
			return nil
		},
	}
	a.recordFlags(cmd)
	a.optionFlags(cmd)
	cmd.Flags().StringVarP(&a.input, "input", "i", "", "input document (json, yaml or toml)")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (hex dump to stdout when empty)")
	cmd.Flags().StringVar(&report, "report", "", "write the encoded values as JSON to this file")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Report every problem in a document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, opts, err := a.loadRecord(cmd)
			if err != nil {
				return err
			}
			root, err := a.loadDocument()
			if err != nil {
				return reportErr(cmd, err)
			}
			if iss := recmap.Validate(rec, root, opts); len(iss) > 0 {
				return printIssues(cmd.ErrOrStderr(), iss)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s (%d bytes)\n", rec.Name(), rec.Size())
			return nil
		},
	}
	a.recordFlags(cmd)
	a.optionFlags(cmd)
	cmd.Flags().StringVarP(&a.input, "input", "i", "", "input document (json, yaml or toml)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newDecodeCmd(a *app) *cobra.Command {
	var expand bool
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Print a binary record as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, opts, err := a.loadRecord(cmd)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(a.input)
			if err != nil {
				return err
			}
			opts.ExpandBitmaps = expand
			root, err := recmap.Decode(rec, data, opts)
			if err != nil {
				return err
			}
			b, err := json.MarshalIndent(root, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
	a.recordFlags(cmd)
	a.optionFlags(cmd)
	cmd.Flags().StringVarP(&a.input, "input", "i", "", "binary record file")
	cmd.Flags().BoolVar(&expand, "expand-bitmaps", false, "render bitmap fields as named bits")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newJSONSchemaCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jsonschema",
		Short: "Print the JSON Schema of documents a record accepts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, _, err := a.loadRecord(cmd)
			if err != nil {
				return err
			}
			b, err := json.MarshalIndent(rec.JSONSchema(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
	a.recordFlags(cmd)
	return cmd
}

// reportErr prints Issues line by line; other errors pass through.
func reportErr(cmd *cobra.Command, err error) error {
	if iss, ok := recmap.AsIssues(err); ok {
		return printIssues(cmd.ErrOrStderr(), iss)
	}
	return err
}
