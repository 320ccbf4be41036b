package expect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mughalk/csc301-a2/internal/expect"
	"github.com/mughalk/csc301-a2/internal/fixture"
)

func TestStatusesFromName_TokenScan(t *testing.T) {
	tests := []struct {
		name string
		want []int
	}{
		{"user_create_200", []int{200}},
		{"order_create_404_invalid_user_id", []int{404}},
		{"order_create_400,409_exceeded_quantity", []int{400, 409}},
		{"user_get_first_match_500_then_200", []int{500}},
		{"user_update_no_code_here", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := expect.StatusesFromName(tt.name, expect.TokenScan)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusesFromName_FixedWidth(t *testing.T) {
	tests := []struct {
		name string
		want []int
	}{
		// The 4-digit price-like token must not be read as a status.
		{"product_create_2000_then_200", []int{200}},
		{"product_create_200_2000", []int{200}},
		{"product_delete_404_401_fields_dont_match", []int{404}},
		{"product_update_7_no_status", nil},
		// Comma lists are a token-scan feature only.
		{"product_create_400,409_dup", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := expect.StatusesFromName(tt.name, expect.FixedWidth)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnconstrainedAcceptsAnything(t *testing.T) {
	e := expect.Expectation{}
	assert.True(t, e.Unconstrained())
	for _, status := range []int{200, 404, 500} {
		assert.True(t, e.StatusAccepts(status))
	}
}

func TestStatusAccepts(t *testing.T) {
	e := expect.Expectation{StatusCandidates: []int{400, 409}}
	assert.True(t, e.StatusAccepts(409))
	assert.False(t, e.StatusAccepts(200))
}

func TestResolve_BodyLookup(t *testing.T) {
	exp := fixture.NewExpected(map[string]map[string]any{
		"user_get_200":    {"id": float64(1), "username": "amal"},
		"user_delete_404": {},
	})

	t.Run("populated entry", func(t *testing.T) {
		e := expect.Resolve("user_get_200", expect.TokenScan, exp)
		assert.Equal(t, []int{200}, e.StatusCandidates)
		assert.True(t, e.BodyRecorded)
		assert.True(t, e.WantsBody())
	})

	t.Run("explicitly empty entry is recorded but vacuous", func(t *testing.T) {
		e := expect.Resolve("user_delete_404", expect.TokenScan, exp)
		assert.True(t, e.BodyRecorded)
		assert.False(t, e.WantsBody())
	})

	t.Run("missing entry", func(t *testing.T) {
		e := expect.Resolve("user_update_200_unlisted", expect.TokenScan, exp)
		assert.False(t, e.BodyRecorded)
		assert.False(t, e.WantsBody())
	})
}

func TestParseStatusPolicy(t *testing.T) {
	p, ok := expect.ParseStatusPolicy("fixed-width")
	assert.True(t, ok)
	assert.Equal(t, expect.FixedWidth, p)

	p, ok = expect.ParseStatusPolicy("")
	assert.True(t, ok)
	assert.Equal(t, expect.TokenScan, p)

	_, ok = expect.ParseStatusPolicy("regex")
	assert.False(t, ok)
}
