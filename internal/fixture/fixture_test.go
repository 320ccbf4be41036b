package fixture_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mughalk/csc301-a2/internal/fixture"
)

func TestParseCases_PreservesFileOrder(t *testing.T) {
	data := []byte(`{
		"user_create_200": {"command": "create", "id": 1},
		"user_get_200":    {"id": 1},
		"user_delete_200": {"command": "delete", "id": 1},
		"user_get_404_deleted": {"id": 1}
	}`)

	cases, err := fixture.ParseCases(data)
	require.NoError(t, err)
	require.Len(t, cases, 4)

	names := make([]string, len(cases))
	for i, c := range cases {
		names[i] = c.Name
	}
	assert.Equal(t, []string{
		"user_create_200",
		"user_get_200",
		"user_delete_200",
		"user_get_404_deleted",
	}, names, "delete must run between the two gets")
}

func TestParseCases_NonObjectPayloadKeptWithNilMap(t *testing.T) {
	cases, err := fixture.ParseCases([]byte(`{"broken_case": "just a string", "fine_case": {"id": 1}}`))
	require.NoError(t, err)
	require.Len(t, cases, 2)

	assert.Equal(t, "broken_case", cases[0].Name)
	assert.Nil(t, cases[0].Payload, "the skip must be reported under the case name")
	assert.NotNil(t, cases[1].Payload)
}

func TestParseCases_RejectsNonObjectRoot(t *testing.T) {
	_, err := fixture.ParseCases([]byte(`["not", "an", "object"]`))
	assert.Error(t, err)
}

func TestParseCases_PayloadNumbersDecodeAsFloat64(t *testing.T) {
	cases, err := fixture.ParseCases([]byte(`{"c": {"id": 7, "price": 19.99}}`))
	require.NoError(t, err)
	assert.Equal(t, float64(7), cases[0].Payload["id"])
	assert.Equal(t, 19.99, cases[0].Payload["price"])
}

func TestExpected_LookupTrichotomy(t *testing.T) {
	e := fixture.NewExpected(map[string]map[string]any{
		"has_body":  {"id": float64(1)},
		"dont_care": {},
	})

	body, recorded := e.Lookup("has_body")
	assert.True(t, recorded)
	assert.Len(t, body, 1)

	body, recorded = e.Lookup("dont_care")
	assert.True(t, recorded, "an explicit empty object is still a recorded entry")
	assert.Empty(t, body)

	_, recorded = e.Lookup("never_mentioned")
	assert.False(t, recorded)
}

func TestExpected_MissingForInCaseOrder(t *testing.T) {
	e := fixture.NewExpected(map[string]map[string]any{"b": {}})
	cases := fixture.Cases{{Name: "a"}, {Name: "b"}, {Name: "c"}}

	assert.Equal(t, []string{"a", "c"}, e.MissingFor(cases))
	assert.Equal(t, 1, e.Len())
}
