// Package txdecode turns raw transactions into the argument streams carried by
// their outputs.
package txdecode

import (
	"bytes"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/pkg/errors"
)

// Decode deserializes a raw legacy-format transaction and returns, for every
// output in order, the arguments pushed after OP_RETURN. Outputs without
// OP_RETURN yield an empty stream.
func Decode(raw []byte) ([][][]byte, error) {
	tx, err := Deserialize(raw)
	if err != nil {
		return nil, err
	}

	outputs := make([][][]byte, len(tx.TxOut))
	for i, out := range tx.TxOut {
		outputs[i] = ScriptArguments(out.PkScript)
	}
	return outputs, nil
}

// Deserialize parses raw into a transaction and rejects trailing bytes.
func Deserialize(raw []byte) (*wire.MsgTx, error) {
	if len(raw) == 0 {
		return nil, errors.New("empty transaction")
	}

	var tx wire.MsgTx
	r := bytes.NewReader(raw)
	if err := tx.DeserializeNoWitness(r); err != nil {
		return nil, errors.Wrap(err, "deserialize transaction")
	}
	if r.Len() != 0 {
		return nil, errors.Errorf("transaction has %d trailing bytes", r.Len())
	}
	return &tx, nil
}

// TxID returns the hex transaction id of raw.
func TxID(raw []byte) (string, error) {
	tx, err := Deserialize(raw)
	if err != nil {
		return "", err
	}
	return tx.TxHash().String(), nil
}

// ScriptArguments returns the data pushes that follow the first OP_RETURN in
// script. Small-integer opcodes are returned as their one-byte values, matching
// how minimal pushes encode them. Parsing stops silently at a truncated push.
func ScriptArguments(script []byte) [][]byte {
	args := [][]byte{}
	afterReturn := false

	tokenizer := txscript.MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
		op := tokenizer.Opcode()
		if !afterReturn {
			afterReturn = op == txscript.OP_RETURN
			continue
		}

		switch {
		case op == txscript.OP_0:
			args = append(args, []byte{})
		case op <= txscript.OP_PUSHDATA4:
			args = append(args, bytes.Clone(tokenizer.Data()))
		case op == txscript.OP_1NEGATE:
			args = append(args, []byte{0x81})
		case op >= txscript.OP_1 && op <= txscript.OP_16:
			args = append(args, []byte{op - txscript.OP_1 + 1})
		}
	}
	return args
}
