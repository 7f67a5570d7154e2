package ledger

import (
	"encoding/json"
	"testing"
	"time"

	"web3events/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseJSON decodes a JSON literal into the any-typed values the RPC layer
// hands to the decoders.
func parseJSON(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestDecodeAddressSet(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "direct array",
			in:   `["0xa","0xb"]`,
			want: []string{"0xa", "0xb"},
		},
		{
			name: "contents field",
			in:   `{"contents":["0xa","0xb"]}`,
			want: []string{"0xa", "0xb"},
		},
		{
			name: "fields wrapper around contents",
			in:   `{"fields":{"contents":["0xa"]}}`,
			want: []string{"0xa"},
		},
		{
			name: "vec_set wrapper",
			in:   `{"vec_set":{"contents":["0xa","0xb","0xc"]}}`,
			want: []string{"0xa", "0xb", "0xc"},
		},
		{
			name: "double wrapped",
			in:   `{"fields":{"vec_set":{"contents":["0xa"]}}}`,
			want: []string{"0xa"},
		},
		{
			name: "triple wrapped",
			in:   `{"fields":{"vec_set":{"fields":{"contents":["0xa","0xb"]}}}}`,
			want: []string{"0xa", "0xb"},
		},
		{
			name: "empty array",
			in:   `[]`,
			want: []string{},
		},
		{
			name: "empty contents",
			in:   `{"contents":[]}`,
			want: []string{},
		},
		{
			name: "unrecognized shape yields empty set",
			in:   `{"something":"else"}`,
			want: []string{},
		},
		{
			name: "non-string elements yield empty set",
			in:   `[1,2,3]`,
			want: []string{},
		},
		{
			name: "scalar yields empty set",
			in:   `"0xa"`,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeAddressSet(parseJSON(t, tt.in))
			require.NotNil(t, got, "result must never be nil")
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("nil input yields empty set", func(t *testing.T) {
		got := DecodeAddressSet(nil)
		require.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestDecodeTableID(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{
			name: "bare string",
			in:   `"0xtable"`,
			want: "0xtable",
		},
		{
			name: "fields id wrapper",
			in:   `{"fields":{"id":{"id":"0xtable"}}}`,
			want: "0xtable",
		},
		{
			name: "id object without fields wrapper",
			in:   `{"id":{"id":"0xtable"}}`,
			want: "0xtable",
		},
		{
			name: "id as plain string",
			in:   `{"id":"0xtable"}`,
			want: "0xtable",
		},
		{
			name:    "missing id",
			in:      `{"fields":{}}`,
			wantErr: true,
		},
		{
			name:    "wrong type",
			in:      `42`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeTableID(parseJSON(t, tt.in))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeEvent(t *testing.T) {
	t.Run("full object", func(t *testing.T) {
		raw := `{
			"creator": "0xcreator",
			"title": "ETH Denver Side Event",
			"description": "Workshops all day",
			"location": "Denver",
			"start_time": "1767225600000",
			"end_time": "1767254400000",
			"capacity": "150",
			"is_free": false,
			"price": "5000000",
			"is_private": false,
			"requires_approval": true,
			"banner_url": "https://img/banner.png",
			"nft_image_url": "https://img/nft.png",
			"poap_image_url": "https://img/poap.png",
			"attendees": {"fields": {"contents": ["0xa", "0xb"]}}
		}`
		var fields map[string]any
		require.NoError(t, json.Unmarshal([]byte(raw), &fields))

		ev, err := DecodeEvent(&domain.LedgerObject{ID: "0xevent", Fields: fields})
		require.NoError(t, err)

		assert.Equal(t, "0xevent", ev.LedgerID)
		assert.Equal(t, "0xcreator", ev.CreatorAddress)
		assert.Equal(t, "ETH Denver Side Event", ev.Title)
		assert.Equal(t, "Denver", ev.Location)
		assert.Equal(t, time.UnixMilli(1767225600000).UTC(), ev.StartsAt)
		assert.Equal(t, time.UnixMilli(1767254400000).UTC(), ev.EndsAt)
		assert.Equal(t, 150, ev.Capacity)
		assert.False(t, ev.IsFree)
		assert.Equal(t, uint64(5000000), ev.Price)
		assert.True(t, ev.RequiresApproval)
		assert.Equal(t, []string{"0xa", "0xb"}, ev.Registered)
	})

	t.Run("value wrapper is unwrapped", func(t *testing.T) {
		raw := `{
			"value": {
				"fields": {
					"title": "Wrapped",
					"creator": "0xc",
					"attendees": ["0xa"]
				}
			}
		}`
		var fields map[string]any
		require.NoError(t, json.Unmarshal([]byte(raw), &fields))

		ev, err := DecodeEvent(&domain.LedgerObject{ID: "0xevent", Fields: fields})
		require.NoError(t, err)
		assert.Equal(t, "Wrapped", ev.Title)
		assert.Equal(t, []string{"0xa"}, ev.Registered)
	})

	t.Run("missing title is an error", func(t *testing.T) {
		_, err := DecodeEvent(&domain.LedgerObject{ID: "0xevent", Fields: map[string]any{"creator": "0xc"}})
		require.Error(t, err)
	})

	t.Run("nil object is an error", func(t *testing.T) {
		_, err := DecodeEvent(nil)
		require.Error(t, err)
	})

	t.Run("missing attendees yields empty registered set", func(t *testing.T) {
		ev, err := DecodeEvent(&domain.LedgerObject{ID: "0xevent", Fields: map[string]any{"title": "T"}})
		require.NoError(t, err)
		require.NotNil(t, ev.Registered)
		assert.Empty(t, ev.Registered)
	})

	t.Run("numeric capacity as JSON number", func(t *testing.T) {
		var fields map[string]any
		require.NoError(t, json.Unmarshal([]byte(`{"title":"T","capacity":25}`), &fields))
		ev, err := DecodeEvent(&domain.LedgerObject{ID: "0xevent", Fields: fields})
		require.NoError(t, err)
		assert.Equal(t, 25, ev.Capacity)
	})
}
