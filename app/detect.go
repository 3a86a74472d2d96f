package app

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trufnetwork/authorid/authorid"
	"github.com/trufnetwork/authorid/client"
	"github.com/trufnetwork/authorid/config"
)

func newDetectCmd() *cobra.Command {
	var (
		stream   streamFlags
		expected []string
		strict   bool
	)

	cmd := &cobra.Command{
		Use:   "detect [arguments...]",
		Short: "Find and verify every attestation in an argument stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := stream.decode(args)
			if err != nil {
				return err
			}

			result, err := newScanner(strict).DetectAndVerify(data, expectations(expected)...)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}

	stream.register(cmd)
	cmd.Flags().StringSliceVar(&expected, "expect", nil, `expected signer address in order; "*" accepts any signer`)
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on a marker followed by malformed fields")
	return cmd
}

func newDetectTxCmd() *cobra.Command {
	var (
		rawHex   string
		expected []string
		strict   bool
	)

	cmd := &cobra.Command{
		Use:   "detect-tx [txid...]",
		Short: "Find and verify attestations in every output of a transaction",
		Long: `detect-tx decodes a raw transaction given with --raw, or fetches each txid
from the file API configured through AUTHORID_* environment variables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			expect := expectations(expected)

			if rawHex != "" {
				if len(args) > 0 {
					return errors.New("pass either --raw or txids, not both")
				}
				raw, err := (&streamFlags{hex: true}).decode([]string{rawHex})
				if err != nil {
					return err
				}
				results, err := newScanner(strict).DetectAndVerifyTransaction(raw[0], expect...)
				if err != nil {
					return err
				}
				return printJSON(cmd, results)
			}

			if len(args) == 0 {
				return errors.New("pass --raw or at least one txid")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.StrictScan = cfg.StrictScan || strict

			c, err := client.New(cfg, client.WithLogger(zap.L()))
			if err != nil {
				return err
			}
			results, err := c.DetectAndVerifyTxIDs(cmd.Context(), args, expect...)
			if err != nil {
				return err
			}
			return printJSON(cmd, results)
		},
	}

	cmd.Flags().StringVar(&rawHex, "raw", "", "raw transaction hex")
	cmd.Flags().StringSliceVar(&expected, "expect", nil, `expected signer address in order; "*" accepts any signer`)
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on a marker followed by malformed fields")
	return cmd
}

func newScanner(strict bool) *authorid.Scanner {
	opts := []authorid.ScannerOption{authorid.WithLogger(zap.L())}
	if strict {
		opts = append(opts, authorid.WithStrict())
	}
	return authorid.NewScanner(opts...)
}
