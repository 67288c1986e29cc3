package s2_format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare", `[{"a":1}]`, `[{"a":1}]`},
		{"fenced", "Here you go:\n```json\n[{\"a\":1}]\n```\nDone.", `[{"a":1}]`},
		{"fence without language", "```\n[1, 2]\n```", `[1, 2]`},
		{"prose around", `The report is [{"a":"x]"}] as requested.`, `[{"a":"x]"}]`},
		{"skips bracketed prose", `Scores are in [1-5]. [{"a":1}]`, `[{"a":1}]`},
		{"nested arrays", `[[1],[2]]`, `[[1],[2]]`},
		{"escaped quote", `[{"name":"A \"B\" C"}]`, `[{"name":"A \"B\" C"}]`},
		{"records win over numeric prose", `Scores range over [1, 5].\n[{"ticker":"DUOL"}]`, `[{"ticker":"DUOL"}]`},
		{"records in prose win over numeric fence", "```\n[1, 5]\n```\n[{\"a\":1}]", `[{"a":1}]`},
		{"empty array", `Nothing to report: []`, `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONArray(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestExtractJSONArray_None(t *testing.T) {
	for _, input := range []string{"", "no json here", `{"a":1}`, `[{"a":1},]`, "```json\n[{\"a\":\n```"} {
		_, err := ExtractJSONArray(input)
		assert.ErrorIs(t, err, errNoArray, input)
	}
}
