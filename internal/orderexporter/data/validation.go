package data

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const stateSchemaURL = "capture-state.json"

var (
	stateSchemaOnce sync.Once
	stateSchema     *jsonschema.Schema
	stateSchemaErr  error
)

// BuildStateJSONSchema returns the JSON schema of a persisted CaptureState blob.
func BuildStateJSONSchema() map[string]any {
	item := map[string]any{
		"type":     "object",
		"required": []string{"name", "qty"},
		"properties": map[string]any{
			"name":       map[string]any{"type": "string", "minLength": 1},
			"qty":        map[string]any{"type": "integer", "minimum": 1},
			"status":     map[string]any{"type": "string"},
			"statusDate": map[string]any{"type": []string{"string", "null"}, "pattern": `^(\d{2}-\d{2})?$`},
		},
	}
	order := map[string]any{
		"type":     "object",
		"required": []string{"orderId", "orderDate", "totalPrice", "currency", "items"},
		"properties": map[string]any{
			"orderId":    map[string]any{"type": "string", "minLength": 1},
			"itemCount":  map[string]any{"type": "integer", "minimum": 0},
			"totalPrice": map[string]any{"type": "number", "minimum": 0},
			"currency":   map[string]any{"type": "string", "enum": []string{string(USD), string(EUR)}},
			"orderDate":  map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
			"items":      map[string]any{"type": "array", "items": item},
		},
	}
	return map[string]any{
		"type":     "object",
		"required": []string{"orders"},
		"properties": map[string]any{
			"lastUpdate": map[string]any{
				"type":    []string{"string", "null"},
				"pattern": `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`,
			},
			"total":     map[string]any{"type": "integer", "minimum": 0},
			"captures":  map[string]any{"type": "integer", "minimum": 0},
			"lastOrder": map[string]any{"type": []string{"string", "null"}},
			"orders": map[string]any{
				"type":                 "object",
				"additionalProperties": order,
			},
		},
	}
}

func compiledStateSchema() (*jsonschema.Schema, error) {
	stateSchemaOnce.Do(func() {
		b, err := json.Marshal(BuildStateJSONSchema())
		if err != nil {
			stateSchemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(stateSchemaURL, bytes.NewReader(b)); err != nil {
			stateSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		stateSchema, stateSchemaErr = compiler.Compile(stateSchemaURL)
	})
	return stateSchema, stateSchemaErr
}

// ValidateStateBlob checks a persisted blob against the CaptureState schema.
func ValidateStateBlob(blob []byte) error {
	schema, err := compiledStateSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(blob, &v); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptState, err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptState, err)
	}
	return nil
}

// Check verifies the invariants the schema cannot express.
func (s CaptureState) Check() error {
	for _, id := range s.Orders.IDs() {
		order, _ := s.Orders.Get(id)
		if order.OrderID != id {
			return fmt.Errorf("%w: order stored under %q has id %q", ErrCorruptState, id, order.OrderID)
		}
		if order.TotalPrice.IsNegative() {
			return fmt.Errorf("%w: order %s has negative total", ErrCorruptState, id)
		}
		if order.ItemCount != len(order.Items) {
			return fmt.Errorf("%w: order %s item count %d != %d items", ErrCorruptState, id, order.ItemCount, len(order.Items))
		}
	}
	return nil
}

// EncodeState serialises a state to the blob handed to the key-value store.
func EncodeState(s CaptureState) ([]byte, error) {
	blob, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode capture state: %w", err)
	}
	return blob, nil
}

// DecodeState validates and deserialises a persisted blob.
func DecodeState(blob []byte) (CaptureState, error) {
	if err := ValidateStateBlob(blob); err != nil {
		return CaptureState{}, err
	}
	state := NewCaptureState()
	if err := json.Unmarshal(blob, &state); err != nil {
		return CaptureState{}, fmt.Errorf("%w: %w", ErrCorruptState, err)
	}
	if err := state.Check(); err != nil {
		return CaptureState{}, err
	}
	return state, nil
}
