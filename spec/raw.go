package spec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
)

// Raw carries a spec object whose concrete Go type is not registered in a
// Scheme. The full document is retained in canonical JSON form so it can be
// round-tripped or handed to a later consumer that does know the type.
type Raw struct {
	Type Type   `json:"type"`
	Data []byte `json:"-"`
}

var _ interface {
	json.Marshaler
	json.Unmarshaler
	Typed
} = &Raw{}

func (r *Raw) GetType() Type {
	return r.Type
}

func (r *Raw) SetType(t Type) {
	r.Type = t
}

func (r *Raw) DeepCopyTyped() Typed {
	out := &Raw{Type: r.Type}
	out.Data = bytes.Clone(r.Data)
	return out
}

func (r *Raw) MarshalJSON() ([]byte, error) {
	return r.Data, nil
}

func (r *Raw) UnmarshalJSON(data []byte) error {
	t := &struct {
		Type Type `json:"type"`
	}{}
	if err := json.Unmarshal(data, t); err != nil {
		return fmt.Errorf("could not unmarshal data into raw: %w", err)
	}
	canonical, err := jsoncanonicalizer.Transform(data)
	if err != nil {
		return fmt.Errorf("could not canonicalize raw data: %w", err)
	}
	r.Type = t.Type
	r.Data = canonical
	return nil
}

func (r *Raw) String() string {
	return string(r.Data)
}
