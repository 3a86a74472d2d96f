package app

import (
	"github.com/spf13/cobra"

	"github.com/trufnetwork/authorid/cmd/version"
)

// RootCmd creates the authorid command tree.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authorid",
		Short: "Build, detect and verify AUTHOR_IDENTITY attestations",
		Long: `authorid signs positions of an OP_RETURN argument stream with AUTHOR_IDENTITY
attestations and verifies attestations found in argument streams or raw
transactions.

Arguments are given as UTF-8 text, or as hex with --hex.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(
		newBuildCmd(),
		newVerifyCmd(),
		newDetectCmd(),
		newDetectTxCmd(),
		version.NewVersionCmd(),
	)
	return cmd
}
