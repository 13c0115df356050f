package interfaces

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	collector "pfmon/internal/collector/domain"
)

// BuildReadingsXLSX renders recent readings as a workbook.
func BuildReadingsXLSX(readings []collector.Reading, threshold float64) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "readings"
	f.SetSheetName("Sheet1", sheet)

	headers := []any{"Timestamp"}
	for _, phase := range collector.PhaseNames {
		headers = append(headers,
			fmt.Sprintf("V_%s (V)", phase),
			fmt.Sprintf("I_%s (A)", phase),
			fmt.Sprintf("PF_%s", phase),
			fmt.Sprintf("P_%s (W)", phase),
			fmt.Sprintf("S_%s (VA)", phase),
			fmt.Sprintf("Q_%s (VAR)", phase),
		)
	}
	headers = append(headers, "Overall PF", "Total P (W)", "Total S (VA)", "Total Q (VAR)", "Status")
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, err
	}

	for i, reading := range readings {
		status := "OK"
		if reading.OverallPF < threshold {
			status = "LOW PF"
		}
		row := []any{reading.Timestamp}
		for _, block := range reading.Blocks() {
			row = append(row,
				block.Voltage,
				block.Current,
				block.PowerFactor,
				block.RealPower,
				block.ApparentPower,
				block.ReactivePower,
			)
		}
		row = append(row,
			reading.OverallPF,
			reading.TotalRealPower,
			reading.TotalApparentPower,
			reading.TotalReactivePower,
			status,
		)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildReadingsPDF renders a summary report of recent readings.
func BuildReadingsPDF(readings []collector.Reading, stats collector.Stats) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Three-Phase Power Factor Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Readings: %d", stats.Count))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Threshold: %.2f", stats.Threshold))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Overall PF avg/min/max: %.3f / %.3f / %.3f",
		stats.Overall.AvgPF, stats.Overall.MinPF, stats.Overall.MaxPF))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(20, 6, "Phase", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Avg PF", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Min PF", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Avg V", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Avg I", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Low PF", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, phase := range collector.PhaseNames {
		ps := stats.Phases[phase]
		pdf.CellFormat(20, 6, phase, "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.3f", ps.AvgPF), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.3f", ps.MinPF), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.1f", ps.AvgVoltage), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.3f", ps.AvgCurrent), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", ps.LowPFCount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(45, 6, "Timestamp", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Overall PF", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Total P (W)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Total S (VA)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Alert", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, reading := range readings {
		alert := ""
		if reading.AlertRaised {
			alert = "yes"
		}
		pdf.CellFormat(45, 6, reading.Timestamp, "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.3f", reading.OverallPF), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%.2f", reading.TotalRealPower), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%.2f", reading.TotalApparentPower), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, alert, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
