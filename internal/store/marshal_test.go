package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/basm/internal/optimizer"
)

func TestMarshalCanonical(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "hi", `"hi"`},
		{"no html escaping", "<a&b>", `"<a&b>"`},
		{"control characters", "a\nb\x01", `"a\nb\u0001"`},
		{"quote and backslash", `say "\"`, `"say \"\\\""`},
		{"line separator literal", "a\u2028b", "\"a\u2028b\""},
		{"nfc", "e\u0301", "\"\u00e9\""},
		{"ints", []any{1, int64(-2)}, `[1,-2]`},
		{"bool", true, `true`},
		{"sorted keys", map[string]any{"b": 1, "a": 2, "aa": 3}, `{"a":2,"aa":3,"b":1}`},
		{"nested", map[string]any{"x": []any{map[string]any{"z": false}}}, `{"x":[{"z":false}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalCanonical_UTF16Order(t *testing.T) {
	// U+1F600 sorts before U+FB01 in UTF-16 (0xD83D < 0xFB01) but after it
	// by code point.
	got, err := MarshalCanonical(map[string]any{"\U0001F600": 1, "\uFB01": 2})
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":1,\"\uFB01\":2}", string(got))
}

func TestMarshalCanonical_Rejects(t *testing.T) {
	for _, v := range []any{nil, 1.5, struct{}{}, "\xff", map[string]any{"k": nil}} {
		_, err := MarshalCanonical(v)
		assert.Error(t, err, "%#v", v)
	}
}

func TestReportRoundTrip(t *testing.T) {
	r := Report{
		Before: optimizer.Counts{Blocks: 1, Offsets: 3},
		After:  optimizer.Counts{Blocks: 1, Offsets: 2, Texts: 1},
		Passes: []optimizer.PassStats{{Name: "merge_offsets", Operations: 3, Length: 5}},
	}

	data, err := marshalReport(r)
	require.NoError(t, err)
	assert.Equal(t,
		`{"after":{"blocks":1,"in_outs":0,"loose_brackets":0,"offsets":2,"texts":1},`+
			`"before":{"blocks":1,"in_outs":0,"loose_brackets":0,"offsets":3,"texts":0},`+
			`"passes":[{"length":5,"name":"merge_offsets","operations":3}]}`,
		data)

	back, err := unmarshalReport(data)
	require.NoError(t, err)
	assert.Equal(t, r, back)
}

func TestUnmarshalReport_EmptyPasses(t *testing.T) {
	r, err := unmarshalReport(`{"after":{},"before":{},"passes":[]}`)
	require.NoError(t, err)
	assert.NotNil(t, r.Passes)
	assert.Empty(t, r.Passes)
}
