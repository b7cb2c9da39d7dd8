// Package export renders the financial series as an Excel workbook.
package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"burnrate/internal/runway"

	"github.com/xuri/excelize/v2"
)

const (
	SeriesSheet   = "Financial Series"
	SummarySheet  = "Summary"
	ForecastSheet = "Forecast"
)

var seriesHeaders = []string{"Month", "Assets", "Spending", "Revenue", "New Assets"}

// WriteWorkbook writes the actual series and its summary. When forecast is
// non-nil a third sheet holds the projected months.
func WriteWorkbook(w io.Writer, s runway.Summary, forecast *runway.Forecast) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SeriesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	st, err := newStyles(f)
	if err != nil {
		return err
	}

	if err := writeSeries(f, st, SeriesSheet, s.Series, false); err != nil {
		return err
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	summaryRows := [][]any{
		{"Average monthly spend", s.AvgMonthlySpend.InexactFloat64()},
		{"Remaining assets", s.RemainingAssets.InexactFloat64()},
		{"Runway (months)", runwayCell(s.Runway)},
		{"Runway end", runway.EndDate(s.Series, s.Runway)},
	}
	if forecast != nil && forecast.PredictedRunway != nil {
		summaryRows = append(summaryRows,
			[]any{"Predicted runway (months)", *forecast.PredictedRunway},
			[]any{"Predicted runway end", forecast.PredictedEndDate},
		)
	}
	sw := &sheetWriter{f: f, sheet: SummarySheet}
	sw.width("A", "A", 28)
	sw.width("B", "B", 18)
	for i, row := range summaryRows {
		a, b := fmt.Sprintf("A%d", i+1), fmt.Sprintf("B%d", i+1)
		sw.set(a, row[0])
		sw.set(b, row[1])
		sw.style(a, a, st.label)
		if _, isNum := row[1].(float64); isNum {
			sw.style(b, b, st.money)
		}
	}
	if sw.err != nil {
		return fmt.Errorf("write summary sheet: %w", sw.err)
	}

	if forecast != nil {
		if _, err := f.NewSheet(ForecastSheet); err != nil {
			return fmt.Errorf("create forecast sheet: %w", err)
		}
		if err := writeSeries(f, st, ForecastSheet, forecast.Series, true); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

type styles struct {
	header, money, label, projected int
}

func newStyles(f *excelize.File) (styles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "D9D9D9", Style: 1},
		{Type: "top", Color: "D9D9D9", Style: 1},
		{Type: "bottom", Color: "D9D9D9", Style: 1},
		{Type: "right", Color: "D9D9D9", Style: 1},
	}
	var (
		st  styles
		err error
	)
	st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"1F2937"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return st, fmt.Errorf("header style: %w", err)
	}
	fmtCode := "$#,##0.00;[Red]-$#,##0.00"
	st.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &fmtCode, Border: border})
	if err != nil {
		return st, fmt.Errorf("money style: %w", err)
	}
	st.projected, err = f.NewStyle(&excelize.Style{
		CustomNumFmt: &fmtCode,
		Font:         &excelize.Font{Italic: true, Color: "6B7280"},
		Fill:         excelize.Fill{Type: "pattern", Color: []string{"F3F4F6"}, Pattern: 1},
		Border:       border,
	})
	if err != nil {
		return st, fmt.Errorf("projected style: %w", err)
	}
	st.label, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return st, fmt.Errorf("label style: %w", err)
	}
	return st, nil
}

// sheetWriter keeps the first error of a run of cell writes.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (w *sheetWriter) set(cell string, v any) {
	if w.err == nil {
		w.err = w.f.SetCellValue(w.sheet, cell, v)
	}
}

func (w *sheetWriter) style(from, to string, id int) {
	if w.err == nil {
		w.err = w.f.SetCellStyle(w.sheet, from, to, id)
	}
}

func (w *sheetWriter) width(from, to string, width float64) {
	if w.err == nil {
		w.err = w.f.SetColWidth(w.sheet, from, to, width)
	}
}

func writeSeries(f *excelize.File, st styles, sheet string, series []runway.Entry, markProjected bool) error {
	headers := seriesHeaders
	if markProjected {
		headers = append(append([]string(nil), seriesHeaders...), "Projected")
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}

	sw := &sheetWriter{f: f, sheet: sheet}
	sw.width("A", "A", 12)
	sw.width("B", "D", 16)
	sw.width("E", "E", 40)

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		sw.set(cell, h)
		sw.style(cell, cell, st.header)
	}

	for i, e := range series {
		row := i + 2
		sw.set(fmt.Sprintf("A%d", row), e.Date.String())
		sw.set(fmt.Sprintf("B%d", row), e.Assets.InexactFloat64())
		sw.set(fmt.Sprintf("C%d", row), e.Spending.InexactFloat64())
		sw.set(fmt.Sprintf("D%d", row), e.Revenue.InexactFloat64())
		sw.set(fmt.Sprintf("E%d", row), newAssetsCell(e.NewAssets))

		style := st.money
		if markProjected {
			sw.set(fmt.Sprintf("F%d", row), e.Projected)
			if e.Projected {
				style = st.projected
			}
		}
		sw.style(fmt.Sprintf("B%d", row), fmt.Sprintf("D%d", row), style)
	}
	if sw.err != nil {
		return fmt.Errorf("write %s sheet: %w", sheet, sw.err)
	}

	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze %s header: %w", sheet, err)
	}
	if len(series) > 0 {
		if err := f.AutoFilter(sheet, fmt.Sprintf("A1:%s%d", lastCol, len(series)+1), nil); err != nil {
			return fmt.Errorf("filter %s sheet: %w", sheet, err)
		}
	}
	return nil
}

func newAssetsCell(items []runway.NewAsset) string {
	parts := make([]string, 0, len(items))
	for _, na := range items {
		parts = append(parts, fmt.Sprintf("%s %s", na.Category, na.Amount.StringFixed(2)))
	}
	return strings.Join(parts, ", ")
}

func runwayCell(months float64) any {
	if math.IsInf(months, 0) || math.IsNaN(months) {
		return "N/A"
	}
	return math.Round(months*10) / 10
}
