package pdv

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// DecodeLedger decodes the ledger file format: a JSON array of actions,
// newest first. Each element is decoded into its concrete action type
// according to its "type" field.
func DecodeLedger(r io.Reader) ([]Action, error) {
	var raws []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		return nil, fmt.Errorf("could not read ledger array: %w", err)
	}

	actions := make([]Action, 0, len(raws))
	for i, raw := range raws {
		a, err := decodeAction(raw)
		if err != nil {
			return nil, fmt.Errorf("ledger entry #%d: %w", i, err)
		}
		actions = append(actions, a)
	}
	return actions, nil
}

func decodeAction(raw []byte) (Action, error) {
	var identifier struct {
		Type ActionType `json:"type"`
	}
	if err := json.Unmarshal(raw, &identifier); err != nil {
		return nil, fmt.Errorf("could not identify action %q: %w", string(raw), err)
	}

	switch identifier.Type {
	case ActSale:
		var s Sale
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return s, nil
	case ActStock:
		var a StockAdjustment
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, err
		}
		return a, nil
	case ActCashSnapshot:
		var c CashSnapshot
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown action type: %q", identifier.Type)
	}
}

// EncodeLedger writes actions in the ledger file format, one action per
// line.
func EncodeLedger(w io.Writer, actions []Action) error {
	return encodeArray(w, actions)
}

// encodeArray writes items as a JSON array with one element per line, so
// that store files stay readable and diff friendly.
func encodeArray[T any](w io.Writer, items []T) error {
	var buf bytes.Buffer
	buf.WriteString("[")
	for i, item := range items {
		b, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("could not encode element #%d: %w", i, err)
		}
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
		buf.Write(b)
	}
	buf.WriteString("\n]\n")
	_, err := w.Write(buf.Bytes())
	return err
}
