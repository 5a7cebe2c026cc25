package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

var ErrUnknownTag = errors.New("unknown variant tag")

type tagged interface {
	Name() string
}

// marshalTagged writes variants externally tagged: a bare name when the variant has no fields,
// otherwise a single-key object.
func marshalTagged(v tagged) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: nil variant", ErrUnknownTag)
	}

	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Struct && rv.NumField() == 0 {
		return json.Marshal(v.Name())
	}

	return json.Marshal(map[string]tagged{v.Name(): v})
}

func unmarshalTagged[T any](data []byte, decoders map[string]func(json.RawMessage) (T, error)) (T, error) {
	var zero T

	var name string
	var payload json.RawMessage
	if err := json.Unmarshal(data, &name); err != nil {
		var obj map[string]json.RawMessage
		if err = json.Unmarshal(data, &obj); err != nil {
			return zero, fmt.Errorf("failed to decode variant: %w", err)
		}
		if len(obj) != 1 {
			return zero, fmt.Errorf("%w: expected exactly one tag, got %d", ErrUnknownTag, len(obj))
		}
		for k, v := range obj {
			name, payload = k, v
		}
	}

	decode, ok := decoders[name]
	if !ok {
		return zero, fmt.Errorf("%w: %q", ErrUnknownTag, name)
	}

	v, err := decode(payload)
	if err != nil {
		return zero, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return v, nil
}

func decodePayload(raw json.RawMessage, into any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, into)
}

// MarshalJSON encodes the full game, including the tagged phase.
func (that *Game) MarshalJSON() ([]byte, error) {
	type alias Game

	phase, err := MarshalPhase(that.Phase)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal phase: %w", err)
	}

	return json.Marshal(struct {
		*alias
		Phase json.RawMessage `json:"phase"`
	}{
		alias: (*alias)(that),
		Phase: phase,
	})
}

func (that *Game) UnmarshalJSON(data []byte) error {
	type alias Game

	aux := struct {
		*alias
		Phase json.RawMessage `json:"phase"`
	}{
		alias: (*alias)(that),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("failed to unmarshal game: %w", err)
	}

	phase, err := UnmarshalPhase(aux.Phase)
	if err != nil {
		return err
	}
	that.Phase = phase

	return nil
}
