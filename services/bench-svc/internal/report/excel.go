package report

import (
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"qecgraph/pkg/apperror"
)

// Имена листов XLSX сводки
const (
	SheetSummary = "Summary"
	SheetRounds  = "Rounds"
)

// WriteXLSX пишет сводку и таблицу раундов в w
func WriteXLSX(w io.Writer, h Header, s Summary, entries []Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return apperror.Wrap(err, apperror.CodeInternal, "rename sheet")
	}
	if _, err := f.NewSheet(SheetRounds); err != nil {
		return apperror.Wrap(err, apperror.CodeInternal, "create sheet")
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	writeSummary(f, headerStyle, h, s)
	if err := writeRounds(f, headerStyle, entries); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return apperror.Wrap(err, apperror.CodeInternal, "write xlsx")
	}
	return nil
}

// SaveXLSX пишет сводку в файл path
func SaveXLSX(path string, h Header, s Summary, entries []Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInvalidArgument, "create report").
			WithField("bench.report_path")
	}
	if err := WriteXLSX(f, h, s, entries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeSummary(f *excelize.File, style int, h Header, s Summary) {
	sheet := SheetSummary
	row := 1

	f.SetCellValue(sheet, cellAddr("A", row), "Closure Benchmark Report")
	f.MergeCell(sheet, cellAddr("A", row), cellAddr("B", row))
	row += 2

	section := func(title string, pairs [][2]any) {
		f.SetCellValue(sheet, cellAddr("A", row), title)
		f.SetCellStyle(sheet, cellAddr("A", row), cellAddr("B", row), style)
		row++
		for _, kv := range pairs {
			f.SetCellValue(sheet, cellAddr("A", row), kv[0])
			f.SetCellValue(sheet, cellAddr("B", row), kv[1])
			row++
		}
		row++
	}

	section("Run", [][2]any{
		{"Run ID", h.RunID},
		{"Mode", h.Mode},
		{"Code", h.Code},
		{"Distance", h.D},
		{"Noisy Measurements", h.NoisyMeasurements},
		{"p", h.P},
		{"pe", h.Pe},
		{"Seed", h.Seed},
		{"Workers", h.Workers},
		{"Vertices", h.VertexNum},
		{"Edges", h.EdgeNum},
		{"Cache", h.CacheEnabled},
	})
	section("Timing (seconds)", [][2]any{
		{"Rounds", s.Rounds},
		{"Total", s.TotalTime},
		{"Mean", s.MeanTime},
		{"Std Dev", s.StdDevTime},
		{"P50", s.MedianTime},
		{"P90", s.P90Time},
		{"P99", s.P99Time},
		{"Max", s.MaxTime},
		{"Per Syndrome", s.TimePerDefect},
	})
	section("Closure", [][2]any{
		{"Syndrome Vertices", s.SyndromeNum},
		{"Mean Syndrome Vertices", s.MeanSyndromes},
		{"Paths", s.Paths},
		{"Unreachable Pairs", s.Unreachable},
		{"Vertices Finalized", s.TotalFinalized},
	})

	f.SetColWidth(sheet, "A", "A", 24)
	f.SetColWidth(sheet, "B", "B", 40)
}

func writeRounds(f *excelize.File, style int, entries []Entry) error {
	sheet := SheetRounds
	headers := []any{"Round", "Syndrome Vertices", "Decoding Time (s)", "Paths", "Unreachable", "Finalized"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return apperror.Wrap(err, apperror.CodeInternal, "write rounds header")
	}
	f.SetCellStyle(sheet, "A1", "F1", style)

	for i, e := range entries {
		row := []any{e.Round, e.SyndromeNum, e.DecodingTime, e.Paths, e.Unreachable, e.Finalized}
		if err := f.SetSheetRow(sheet, cellAddr("A", i+2), &row); err != nil {
			return apperror.Wrap(err, apperror.CodeInternal, "write round row").WithDetails("round", e.Round)
		}
	}
	return nil
}

func cellAddr(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
