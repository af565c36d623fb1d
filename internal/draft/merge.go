package draft

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

var (
	ErrUnknownSection      = errors.New("unknown section")
	ErrUnknownField        = errors.New("unknown field")
	ErrInvalidPatch        = errors.New("invalid patch")
	ErrEntryNotFound       = errors.New("continuity entry not found")
	ErrLastContinuityEntry = errors.New("the last continuity entry cannot be removed")
	ErrContinuityFull      = errors.New("continuity log is full")
	ErrUnknownFileTarget   = errors.New("unknown file target")
	ErrFileField           = errors.New("photos and signatures are set by upload")
)

// fileFields are the handle and preview keys of every file slot. Patches
// cannot set them; AttachFile is their only writer.
var fileFields = map[string]bool{
	"photo":                  true,
	"photoPreview":           true,
	"signature":              true,
	"signaturePreview":       true,
	"certifiedSignature":     true,
	"certifiedSignatureUrl":  true,
	"reviewedBySignature":    true,
	"reviewedBySignatureUrl": true,
	"approvedBySignature":    true,
	"approvedBySignatureUrl": true,
	"verifierSignature":      true,
	"verifierSignatureUrl":   true,
	"qcSignature":            true,
	"qcSignatureUrl":         true,
}

// Fields is a partial record of one section, keyed by JSON field name.
type Fields map[string]any

// fieldIndex caches, per struct type, the JSON key to field index mapping.
var fieldIndex sync.Map // reflect.Type -> map[string]int

func jsonFields(t reflect.Type) map[string]int {
	if m, ok := fieldIndex.Load(t); ok {
		return m.(map[string]int)
	}
	m := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		name, _, _ := strings.Cut(tag, ",")
		if name == "" || name == "-" {
			continue
		}
		m[name] = i
	}
	fieldIndex.Store(t, m)
	return m
}

// mergeJSON replaces the fields of *dst named by the keys of raw, leaving
// every other field untouched. Provided lists replace the whole list.
func mergeJSON(dst any, raw []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	if keys == nil {
		return fmt.Errorf("%w: patch must be a JSON object", ErrInvalidPatch)
	}

	v := reflect.ValueOf(dst).Elem()
	index := jsonFields(v.Type())
	for k := range keys {
		if _, ok := index[k]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, k)
		}
		if fileFields[k] {
			return fmt.Errorf("%w: %q", ErrFileField, k)
		}
	}

	// Decode into a scratch copy so a failed patch leaves dst unchanged.
	scratch := reflect.New(v.Type()).Elem()
	scratch.Set(v)
	for k := range keys {
		f := scratch.Field(index[k])
		f.Set(reflect.Zero(f.Type()))
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(scratch.Addr().Interface()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	v.Set(scratch)
	return nil
}

// sectionTarget returns a pointer to the section record of d.
func sectionTarget(d *FormDraft, section Section) (any, error) {
	switch section {
	case SectionBasicInfo:
		return &d.BasicInfo, nil
	case SectionTestDescription:
		return &d.TestDescription, nil
	case SectionTestingVars1:
		return &d.TestingVars1, nil
	case SectionTestingVars2:
		return &d.TestingVars2, nil
	case SectionResults:
		return &d.Results, nil
	case SectionContinuity:
		return &d.Continuity, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSection, section)
}

// Apply merges a JSON object into one section of d.
func Apply(d *FormDraft, section Section, raw []byte) error {
	target, err := sectionTarget(d, section)
	if err != nil {
		return err
	}
	return mergeJSON(target, raw)
}
