package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_Unmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    ID
		wantErr bool
	}{
		{`"a1b2"`, "a1b2", false},
		{`17`, "17", false},
		{`null`, "", false},
		{`{}`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var id ID
			err := json.Unmarshal([]byte(tt.in), &id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestProjectDetail_Decode(t *testing.T) {
	doc := `{
		"id": 3, "name": "Shop", "slug": "shop", "schemaCount": 1,
		"organizationName": "Acme", "createdAt": "2026-01-02T10:00:00",
		"stats": {"totalSchemas": 1, "totalRecords": 5, "activeRecords": 4, "expiredRecords": 1},
		"schemas": [{"id": 9, "name": "Users", "slug": "users", "recordCount": 5, "schemaJson": {"type": "object"}}]
	}`

	var p ProjectDetail
	require.NoError(t, json.Unmarshal([]byte(doc), &p))

	assert.Equal(t, "shop", p.Slug)
	assert.Equal(t, "Acme", p.OrganizationName)
	assert.Equal(t, 4, p.Stats.ActiveRecords)
	require.Len(t, p.Schemas, 1)
	assert.JSONEq(t, `{"type":"object"}`, string(p.Schemas[0].SchemaJSON))
}

func TestRecordInput_OmitsTTLUnlessSet(t *testing.T) {
	data, err := json.Marshal(RecordInput{Data: map[string]any{"name": "x"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"name":"x"}}`, string(data))

	ttl := 30
	data, err = json.Marshal(RecordInput{Data: map[string]any{}, TTLMinutes: &ttl})
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{},"ttlMinutes":30}`, string(data))
}

func TestStats_Keys(t *testing.T) {
	s := Stats{"totalRecords": 3, "activeRecords": 2, "expiredRecords": 1}
	assert.Equal(t, []string{"activeRecords", "expiredRecords", "totalRecords"}, s.Keys())
}
