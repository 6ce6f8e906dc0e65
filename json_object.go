package pdv

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// objectBuilder writes a JSON object whose keys keep the order they were
// added in, so that the data files stay diff friendly. The first marshaling
// error is kept and returned by bytes.
type objectBuilder struct {
	buf bytes.Buffer
	err error
}

// field adds key with the JSON encoding of value.
func (o *objectBuilder) field(key string, value any) *objectBuilder {
	if o.err != nil {
		return o
	}
	raw, err := json.Marshal(value)
	if err != nil {
		o.err = fmt.Errorf("field %q: %w", key, err)
		return o
	}
	if o.buf.Len() == 0 {
		o.buf.WriteByte('{')
	} else {
		o.buf.WriteByte(',')
	}
	k, _ := json.Marshal(key)
	o.buf.Write(k)
	o.buf.WriteByte(':')
	o.buf.Write(raw)
	return o
}

// fieldIf adds the field only when ok.
func (o *objectBuilder) fieldIf(ok bool, key string, value any) *objectBuilder {
	if !ok {
		return o
	}
	return o.field(key, value)
}

func (o *objectBuilder) bytes() ([]byte, error) {
	if o.err != nil {
		return nil, o.err
	}
	if o.buf.Len() == 0 {
		return []byte("{}"), nil
	}
	return append(o.buf.Bytes(), '}'), nil
}
