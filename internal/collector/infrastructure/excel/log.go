package excel

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"

	collector "pfmon/internal/collector/domain"
)

const sheetName = "Power Factor Log"

// Log appends readings to an Excel workbook, one row per reading. The
// workbook is created with a header row on first use. Appends are serialized
// by a mutex; the workbook is opened and saved per append so a crash loses at
// most the in-flight row.
type Log struct {
	path string
	mu   sync.Mutex
}

// NewLog constructs a log, creating the workbook when missing.
func NewLog(path string) (*Log, error) {
	if path == "" {
		return nil, errors.New("excel log: empty path")
	}
	l := &Log{path: path}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := l.create(); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Log) create() error {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheetName)

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

	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return err
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		end, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(sheetName, "A1", end, style)
	}
	return f.SaveAs(l.path)
}

// Append implements application.ReadingAppender.
func (l *Log) Append(reading collector.Reading, threshold float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := excelize.OpenFile(l.path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return err
	}

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

	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
		return err
	}
	return f.Save()
}
