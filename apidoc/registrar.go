package apidoc

import (
	"fmt"
	"maps"
	"reflect"

	"github.com/vitalvas/automd/openapi"
)

// insertResult tells what Insert did with a record.
type insertResult int

const (
	inserted insertResult = iota
	unchanged
	replaced
)

// Insert stores rec in doc under its path and verb, and its components in
// doc.Components. An identical operation already present is left alone. A
// differing one is replaced under PolicyOverwrite and rejected with
// ErrDuplicateOperation under PolicyReject. Operations differing only in
// their components count as differing. Nothing is stored on error.
func Insert(doc *openapi.Document, rec OperationRecord, policy DuplicatePolicy) error {
	var stored map[string]*openapi.Schema
	if doc.Components != nil {
		stored = doc.Components.Schemas
	}

	if _, err := insert(doc, stored, rec, policy); err != nil {
		return err
	}

	if len(rec.Components) > 0 {
		if doc.Components == nil {
			doc.Components = &openapi.Components{}
		}
		if doc.Components.Schemas == nil {
			doc.Components.Schemas = make(map[string]*openapi.Schema, len(rec.Components))
		}
		maps.Copy(doc.Components.Schemas, rec.Components)
	}
	return nil
}

// insert sets the operation of rec. stored holds the components already
// committed; the caller commits rec.Components after a nil error.
func insert(doc *openapi.Document, stored map[string]*openapi.Schema, rec OperationRecord, policy DuplicatePolicy) (insertResult, error) {
	result := inserted

	if existing := doc.Operation(rec.Path, rec.Verb); existing != nil {
		if reflect.DeepEqual(existing, rec.Operation) && sameComponents(stored, rec.Components) {
			return unchanged, nil
		}
		if policy == PolicyReject {
			return unchanged, fmt.Errorf("%w: %s %s", ErrDuplicateOperation, rec.Verb, rec.Path)
		}
		result = replaced
	}

	if !doc.SetOperation(rec.Path, rec.Verb, rec.Operation) {
		return unchanged, fmt.Errorf("%w: %s", ErrUnsupportedMethod, rec.Verb)
	}
	return result, nil
}

// sameComponents reports whether every staged component is stored as is.
func sameComponents(stored, staged map[string]*openapi.Schema) bool {
	for name, schema := range staged {
		current, ok := stored[name]
		if !ok || !reflect.DeepEqual(current, schema) {
			return false
		}
	}
	return true
}
