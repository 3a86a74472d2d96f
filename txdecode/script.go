package txdecode

import (
	"github.com/btcsuite/btcd/txscript"
	"github.com/pkg/errors"
)

// DataScript builds a provably unspendable OP_FALSE OP_RETURN output script
// pushing args in order. Pushes are minimally encoded and not capped at the
// standard element size, since data carrier outputs routinely exceed it.
func DataScript(args [][]byte) ([]byte, error) {
	builder := txscript.NewScriptBuilder().
		AddOp(txscript.OP_FALSE).
		AddOp(txscript.OP_RETURN)
	for _, arg := range args {
		builder.AddFullData(arg)
	}

	script, err := builder.Script()
	if err != nil {
		return nil, errors.Wrap(err, "build data script")
	}
	return script, nil
}
