package s2_format

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stocktracker/internal/artifact"
	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/pkg/logger"
)

type fakeReasoner struct {
	reply   string
	err     error
	prompts []contracts.Prompt
}

func (f *fakeReasoner) Complete(ctx context.Context, p contracts.Prompt) (string, error) {
	f.prompts = append(f.prompts, p)
	return f.reply, f.err
}

var runDate = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

const cmgThenDuol = "```json\n" + `[
  {"category": "growth", "ticker": "cmg", "name": "Chipotle Mexican Grill", "price": 50.0,
   "dcf": {"conservative": "38 – 44", "base": "$48-$55", "aggressive": "60-72"},
   "fcfQuality": 5, "roicStrength": 5.0, "revenueDurability": "4", "balanceSheetStrength": 4,
   "insiderActivity": 3, "valueRank": 3, "expectedReturn": 3, "lastUpdated": "2024-01-01"},
  {"category": "Growth", "ticker": "DUOL", "name": "Duolingo Inc", "price": 300.0,
   "dcf": {"conservative": "220-260", "base": "280-330", "aggressive": "350-420"},
   "fcfQuality": 4, "roicStrength": 3, "revenueDurability": 4, "balanceSheetStrength": 5,
   "insiderActivity": 2, "valueRank": 3, "expectedReturn": 4, "lastUpdated": "2026-10-19"}
]` + "\n```"

func newFormatter(t *testing.T, backend contracts.ReasoningClient, overrides map[string]string) (*Formatter, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "output", "stocks.json")
	return NewFormatter(backend, artifact.NewStore(path), time.Second, overrides, logger.NewNop()), path
}

func TestFormat_WritesOrderedArtifact(t *testing.T) {
	backend := &fakeReasoner{reply: cmgThenDuol}
	f, path := newFormatter(t, backend, nil)

	art, err := f.Format(context.Background(), contracts.TickerSet{"DUOL", "CMG"},
		contracts.StageReport{Stage: contracts.StageAnalysis, Text: "analysis"}, runDate)
	require.NoError(t, err)

	require.Len(t, art.Records, 2)
	assert.Equal(t, "DUOL", art.Records[0].Ticker)
	assert.Equal(t, "CMG", art.Records[1].Ticker)

	cmg := art.Records[1]
	assert.Equal(t, contracts.CategoryGrowth, cmg.Category)
	assert.Equal(t, "38-44", cmg.DCF.Conservative)
	assert.Equal(t, "48-55", cmg.DCF.Base)
	assert.Equal(t, 5, cmg.ROICStrength)
	assert.Equal(t, 4, cmg.RevenueDurability)
	for _, r := range art.Records {
		assert.Equal(t, "2026-10-19", r.LastUpdated)
	}

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, art.JSON, onDisk)
	assert.Equal(t, path, art.Path)

	require.Len(t, backend.prompts, 1)
	assert.Contains(t, backend.prompts[0].User, `"lastUpdated": "2026-10-19"`)
	assert.Contains(t, backend.prompts[0].User, "DUOL, CMG")
	assert.Contains(t, backend.prompts[0].User, "analysis")
}

func TestFormat_CategoryOverride(t *testing.T) {
	f, _ := newFormatter(t, &fakeReasoner{reply: cmgThenDuol}, map[string]string{"CMG": contracts.CategoryDividend})

	art, err := f.Format(context.Background(), contracts.TickerSet{"DUOL", "CMG"}, contracts.StageReport{}, runDate)
	require.NoError(t, err)
	assert.Equal(t, contracts.CategoryDividend, art.Records[1].Category)
	assert.Equal(t, contracts.CategoryGrowth, art.Records[0].Category)
}

func TestFormat_SchemaFailureWritesNothing(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		tickers contracts.TickerSet
		wantSub string
	}{
		{"prose only", "I could not format this.", contracts.TickerSet{"DUOL"}, "no JSON array"},
		{"score out of range", strings.Replace(cmgThenDuol, `"valueRank": 3, "expectedReturn": 4`, `"valueRank": 9, "expectedReturn": 4`, 1), contracts.TickerSet{"DUOL", "CMG"}, "valueRank"},
		{"fractional score", strings.Replace(cmgThenDuol, `"insiderActivity": 2`, `"insiderActivity": 2.5`, 1), contracts.TickerSet{"DUOL", "CMG"}, "insiderActivity"},
		{"missing ticker", cmgThenDuol, contracts.TickerSet{"DUOL", "CMG", "MA"}, "MA: no record"},
		{"unknown ticker", cmgThenDuol, contracts.TickerSet{"DUOL"}, "CMG: not in the ticker set"},
		{"duplicate expected", cmgThenDuol, contracts.TickerSet{"DUOL", "DUOL", "CMG"}, "DUOL: 1 records, expected 2"},
		{"extra field", strings.Replace(cmgThenDuol, `"price": 300.0,`, `"price": 300.0, "comment": "cheap",`, 1), contracts.TickerSet{"DUOL", "CMG"}, "comment"},
		{"missing field", strings.Replace(cmgThenDuol, `"name": "Duolingo Inc", `, ``, 1), contracts.TickerSet{"DUOL", "CMG"}, "name"},
		{"signed price", withDuolPrice(`"+300"`), contracts.TickerSet{"DUOL", "CMG"}, "price"},
		{"NaN price", withDuolPrice(`"NaN"`), contracts.TickerSet{"DUOL", "CMG"}, "price"},
		{"Inf price", withDuolPrice(`"Inf"`), contracts.TickerSet{"DUOL", "CMG"}, "price"},
		{"hex price", withDuolPrice(`"0x1p4"`), contracts.TickerSet{"DUOL", "CMG"}, "price"},
		{"word price", withDuolPrice(`"about 300"`), contracts.TickerSet{"DUOL", "CMG"}, "price"},
		{"NaN score", strings.Replace(cmgThenDuol, `"revenueDurability": "4"`, `"revenueDurability": "NaN"`, 1), contracts.TickerSet{"DUOL", "CMG"}, "revenueDurability"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, path := newFormatter(t, &fakeReasoner{reply: tt.reply}, nil)

			art, err := f.Format(context.Background(), tt.tickers, contracts.StageReport{}, runDate)
			assert.Nil(t, art)

			var schemaErr *contracts.SchemaValidationError
			require.True(t, errors.As(err, &schemaErr), "got %v", err)
			assert.Contains(t, strings.Join(schemaErr.Problems, "\n"), tt.wantSub)

			_, statErr := os.Stat(path)
			assert.True(t, os.IsNotExist(statErr), "artifact must not be written")
		})
	}
}

func withDuolPrice(literal string) string {
	return strings.Replace(cmgThenDuol, `"price": 300.0,`, `"price": `+literal+`,`, 1)
}

func TestCoerce_StringPrice(t *testing.T) {
	records, err := Coerce(withDuolPrice(`" $1,234.50 "`), contracts.TickerSet{"DUOL", "CMG"}, runDate, nil)
	require.NoError(t, err)
	assert.Equal(t, 1234.5, records[0].Price)
}

func TestFormat_KeepsPreviousArtifactOnFailure(t *testing.T) {
	f, path := newFormatter(t, &fakeReasoner{reply: "not json"}, nil)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("[]\n"), 0o644))

	_, err := f.Format(context.Background(), contracts.TickerSet{"DUOL"}, contracts.StageReport{}, runDate)
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestFormat_BackendError(t *testing.T) {
	boom := errors.New("timeout")
	f, _ := newFormatter(t, &fakeReasoner{err: boom}, nil)

	_, err := f.Format(context.Background(), contracts.TickerSet{"DUOL"}, contracts.StageReport{}, runDate)
	assert.ErrorIs(t, err, boom)

	var schemaErr *contracts.SchemaValidationError
	assert.False(t, errors.As(err, &schemaErr))
}

func TestFormat_Idempotent(t *testing.T) {
	f1, _ := newFormatter(t, &fakeReasoner{reply: cmgThenDuol}, nil)
	f2, _ := newFormatter(t, &fakeReasoner{reply: cmgThenDuol}, nil)
	tickers := contracts.TickerSet{"DUOL", "CMG"}

	a, err := f1.Format(context.Background(), tickers, contracts.StageReport{}, runDate)
	require.NoError(t, err)
	b, err := f2.Format(context.Background(), tickers, contracts.StageReport{}, runDate)
	require.NoError(t, err)

	assert.Equal(t, a.JSON, b.JSON)
}
