package services_test

import (
	"encoding/json"
	"testing"

	"github.com/localnerve/wpq-drafts/internal/draft"
	"github.com/stretchr/testify/require"
)

func toFields(t *testing.T, v any) draft.Fields {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var fields draft.Fields
	require.NoError(t, json.Unmarshal(raw, &fields))
	return fields
}

// withoutFiles drops the photo and signature keys, which only uploads set.
func withoutFiles(f draft.Fields) draft.Fields {
	for _, k := range []string{"photo", "photoPreview", "signature", "signaturePreview"} {
		delete(f, k)
	}
	return f
}
