package app

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trufnetwork/authorid/authorid"
)

func newVerifyCmd() *cobra.Command {
	var (
		stream     streamFlags
		positions  []int
		expected   []string
		exactCount bool
	)

	cmd := &cobra.Command{
		Use:   "verify [arguments...]",
		Short: "Verify attestations at known positions, in signer order",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := stream.decode(args)
			if err != nil {
				return err
			}
			if len(positions) == 0 {
				return errors.New("at least one --position is required")
			}

			var opts []authorid.OrderOption
			if exactCount {
				opts = append(opts, authorid.WithExactSignerCount())
			}
			return printJSON(cmd, authorid.VerifyOrdered(data, positions, expectations(expected), opts...))
		},
	}

	stream.register(cmd)
	cmd.Flags().IntSliceVar(&positions, "position", nil, "offset of an attestation marker, repeatable, in signer order")
	cmd.Flags().StringSliceVar(&expected, "expect", nil, `expected signer address in order; "*" accepts any signer`)
	cmd.Flags().BoolVar(&exactCount, "exact-count", false, "reject attestations beyond the expected signers")
	return cmd
}
