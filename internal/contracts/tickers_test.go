package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTickerSet(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    TickerSet
		wantErr bool
	}{
		{name: "uppercases and trims", input: []string{" duol", "cmg "}, want: TickerSet{"DUOL", "CMG"}},
		{name: "keeps order", input: []string{"MA", "ADBE", "CRM"}, want: TickerSet{"MA", "ADBE", "CRM"}},
		{name: "duplicates allowed", input: []string{"MA", "MA"}, want: TickerSet{"MA", "MA"}},
		{name: "class shares", input: []string{"brk.b"}, want: TickerSet{"BRK.B"}},
		{name: "empty", input: nil, wantErr: true},
		{name: "blank entry", input: []string{"DUOL", " "}, wantErr: true},
		{name: "bad characters", input: []string{"DU OL"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTickerSet(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTickerSet(t *testing.T) {
	set, err := ParseTickerSet("duol, cmg,,")
	require.NoError(t, err)
	assert.Equal(t, TickerSet{"DUOL", "CMG"}, set)
	assert.Equal(t, "DUOL, CMG", set.Join(", "))

	_, err = ParseTickerSet(" , ")
	assert.Error(t, err)
}

func TestTickerSetCounts(t *testing.T) {
	counts := TickerSet{"MA", "CMG", "MA"}.Counts()
	assert.Equal(t, map[string]int{"MA": 2, "CMG": 1}, counts)
}
