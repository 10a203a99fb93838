package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"qecgraph/pkg/apperror"
)

func testHeader() Header {
	return Header{
		RunID:     "run-1",
		Mode:      "benchmark",
		Code:      "planar",
		D:         5,
		P:         0.01,
		Seed:      42,
		Rounds:    3,
		Workers:   1,
		VertexNum: 30,
		EdgeNum:   55,
		StartedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func testEntries() []Entry {
	return []Entry{
		{Round: 0, SyndromeNum: 2, DecodingTime: 0.001, Paths: 1, Finalized: 10},
		{Round: 1, SyndromeNum: 4, DecodingTime: 0.003, Paths: 6, Finalized: 30},
		{Round: 2, SyndromeNum: 0, DecodingTime: 0.002, Paths: 0, Unreachable: 1},
	}
}

func TestProfile_WriteRead(t *testing.T) {
	var buf bytes.Buffer
	pw, err := NewProfileWriter(&buf, testHeader())
	require.NoError(t, err)
	for _, e := range testEntries() {
		require.NoError(t, pw.Write(e))
	}
	assert.Equal(t, 3, pw.Count())
	require.NoError(t, pw.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], `"run_id":"run-1"`)
	assert.Contains(t, lines[1], `"decoding_time":0.001`)

	p, err := ReadProfile(strings.NewReader(buf.String()), 0)
	require.NoError(t, err)
	assert.Equal(t, testHeader().RunID, p.Header.RunID)
	assert.True(t, p.Header.StartedAt.Equal(testHeader().StartedAt))
	assert.Equal(t, testEntries(), p.Entries)
}

func TestReadProfile_SkipBegin(t *testing.T) {
	var buf bytes.Buffer
	pw, err := NewProfileWriter(&buf, testHeader())
	require.NoError(t, err)
	for _, e := range testEntries() {
		require.NoError(t, pw.Write(e))
	}
	require.NoError(t, pw.Close())

	p, err := ReadProfile(&buf, 2)
	require.NoError(t, err)
	require.Len(t, p.Entries, 1)
	assert.Equal(t, 2, p.Entries[0].Round)
}

func TestReadProfile_StopsAtBlankLine(t *testing.T) {
	data := `{"run_id":"x","mode":"replay"}
{"round":0,"syndrome_num":2,"decoding_time":0.5,"paths":1,"finalized":3}

{"round":1}
`
	p, err := ReadProfile(strings.NewReader(data), 0)
	require.NoError(t, err)
	assert.Len(t, p.Entries, 1)
	assert.Equal(t, "replay", p.Header.Mode)
}

func TestReadProfile_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"bad header", "not json\n"},
		{"bad entry", `{"run_id":"x"}` + "\n{oops}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadProfile(strings.NewReader(tt.data), 0)
			require.Error(t, err)
			assert.True(t, apperror.Is(err, apperror.CodeInvalidFormat))
		})
	}
}

func TestCreateAndLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.jsonl")
	pw, err := CreateProfile(path, testHeader())
	require.NoError(t, err)
	require.NoError(t, pw.Write(testEntries()[0]))
	require.NoError(t, pw.Close())

	p, err := LoadProfile(path, 0)
	require.NoError(t, err)
	assert.Len(t, p.Entries, 1)

	_, err = LoadProfile(filepath.Join(t.TempDir(), "missing"), 0)
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))

	_, err = CreateProfile(filepath.Join(t.TempDir(), "no", "such", "dir", "p.jsonl"), testHeader())
	assert.True(t, apperror.Is(err, apperror.CodeInvalidArgument))
}

func TestSummarize(t *testing.T) {
	s := Summarize(testEntries())

	assert.Equal(t, 3, s.Rounds)
	assert.InDelta(t, 0.006, s.TotalTime, 1e-12)
	assert.InDelta(t, 0.002, s.MeanTime, 1e-12)
	assert.InDelta(t, 0.001, s.StdDevTime, 1e-12)
	assert.InDelta(t, 0.002, s.MedianTime, 1e-12)
	assert.InDelta(t, 0.003, s.P99Time, 1e-12)
	assert.InDelta(t, 0.003, s.MaxTime, 1e-12)
	assert.Equal(t, 6, s.SyndromeNum)
	assert.InDelta(t, 2.0, s.MeanSyndromes, 1e-12)
	assert.InDelta(t, 0.001, s.TimePerDefect, 1e-12)
	assert.Equal(t, 7, s.Paths)
	assert.Equal(t, 1, s.Unreachable)
	assert.Equal(t, 40, s.TotalFinalized)
}

func TestSummarize_EdgeCases(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))

	s := Summarize([]Entry{{DecodingTime: 0.5}})
	assert.Equal(t, 0.5, s.MeanTime)
	assert.Equal(t, 0.0, s.StdDevTime)
	assert.False(t, math.IsNaN(s.StdDevTime))
	assert.Equal(t, 0.0, s.TimePerDefect)
}

func TestWriteXLSX(t *testing.T) {
	entries := testEntries()
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, testHeader(), Summarize(entries), entries))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetRounds}, f.GetSheetList())

	title, err := f.GetCellValue(SheetSummary, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Closure Benchmark Report", title)

	rows, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	found := map[string]string{}
	for _, r := range rows {
		if len(r) == 2 {
			found[r[0]] = r[1]
		}
	}
	assert.Equal(t, "run-1", found["Run ID"])
	assert.Equal(t, "planar", found["Code"])
	assert.Equal(t, "3", found["Rounds"])
	assert.Equal(t, "7", found["Paths"])

	rounds, err := f.GetRows(SheetRounds)
	require.NoError(t, err)
	require.Len(t, rounds, 4)
	assert.Equal(t, "Round", rounds[0][0])
	assert.Equal(t, []string{"1", "4"}, rounds[2][:2])
}

func TestSaveXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, SaveXLSX(path, testHeader(), Summary{}, nil))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	err = SaveXLSX(filepath.Join(t.TempDir(), "missing", "r.xlsx"), testHeader(), Summary{}, nil)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidArgument))
}
