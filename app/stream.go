package app

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/trufnetwork/authorid/authorid"
)

// streamFlags are shared by commands that take an argument stream.
type streamFlags struct {
	hex bool
}

func (f *streamFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.hex, "hex", false, "arguments are hex encoded")
}

func (f *streamFlags) decode(args []string) ([][]byte, error) {
	stream := make([][]byte, len(args))
	for i, arg := range args {
		if !f.hex {
			stream[i] = []byte(arg)
			continue
		}
		raw, err := hex.DecodeString(strings.TrimPrefix(arg, "0x"))
		if err != nil {
			return nil, errors.Wrapf(err, "argument %d is not hex", i)
		}
		stream[i] = raw
	}
	return stream, nil
}

func (f *streamFlags) encode(stream [][]byte) []string {
	return lo.Map(stream, func(arg []byte, _ int) string {
		if f.hex {
			return hex.EncodeToString(arg)
		}
		return string(arg)
	})
}

func expectations(values []string) []authorid.Expectation {
	return lo.Map(values, func(v string, _ int) authorid.Expectation {
		return authorid.ParseExpectation(v)
	})
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
