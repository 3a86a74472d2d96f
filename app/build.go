package app

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trufnetwork/authorid/authorid"
	"github.com/trufnetwork/authorid/signer"
)

// keyEnv is read when --key is not given, keeping keys out of shell history.
const keyEnv = "AUTHORID_SIGNING_KEY"

type buildOutput struct {
	Block  authorid.Block `json:"block"`
	Fields []string       `json:"fields"`
	Stream []string       `json:"stream"`
}

func newBuildCmd() *cobra.Command {
	var (
		stream  streamFlags
		key     string
		scheme  string
		indexes []int
	)

	cmd := &cobra.Command{
		Use:   "build [arguments...]",
		Short: "Sign argument positions and append an attestation block",
		Example: `  authorid build --key $WIF --index 0 --index 1 hello world
  authorid build --scheme evm --key $HEX_KEY --hex --index 0 68656c6c6f`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				key = os.Getenv(keyEnv)
			}
			s, err := signerFor(scheme, key)
			if err != nil {
				return err
			}

			data, err := stream.decode(args)
			if err != nil {
				return err
			}

			block, err := authorid.Build(data, s, indexes)
			if err != nil {
				return errors.Wrap(err, "build attestation")
			}

			return printJSON(cmd, buildOutput{
				Block:  block,
				Fields: stream.encode(block.Fields()),
				Stream: stream.encode(authorid.AppendBlock(data, block)),
			})
		},
	}

	stream.register(cmd)
	cmd.Flags().StringVar(&key, "key", "", "private key (WIF or hex); defaults to $"+keyEnv)
	cmd.Flags().StringVar(&scheme, "scheme", string(signer.SchemeBitcoin), "signature scheme: bitcoin or evm")
	cmd.Flags().IntSliceVar(&indexes, "index", nil, "argument index to sign, repeatable, in signing order")
	return cmd
}

func signerFor(scheme, key string) (signer.Signer, error) {
	parsed, err := signer.ParseScheme(scheme)
	if err != nil {
		return nil, err
	}
	return signer.New(parsed, key)
}
