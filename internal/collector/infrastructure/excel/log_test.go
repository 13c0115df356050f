package excel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	collector "pfmon/internal/collector/domain"
)

func testReading(overallPF float64) collector.Reading {
	block := collector.PhaseReading{Voltage: 230.1, Current: 5.2, PowerFactor: 0.94, RealPower: 1124.6, ApparentPower: 1196.5, ReactivePower: 408.3}
	return collector.Reading{
		Timestamp: "2026-08-23 09:00:00",
		PhaseR:    block,
		PhaseY:    block,
		PhaseB:    block,
		OverallPF: overallPF,
	}
}

func TestNewLogCreatesWorkbookWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.xlsx")
	if _, err := NewLog(path); err != nil {
		t.Fatalf("new log: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("workbook not created: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows in fresh workbook: got %d, want header only", len(rows))
	}
	header := rows[0]
	if header[0] != "Timestamp" || header[len(header)-1] != "Status" {
		t.Fatalf("header shape: %v", header)
	}
	if header[1] != "V_R (V)" || header[3] != "PF_R" {
		t.Fatalf("phase columns: %v", header[:7])
	}
}

func TestLogAppendRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.xlsx")
	log, err := NewLog(path)
	if err != nil {
		t.Fatalf("new log: %v", err)
	}
	if err := log.Append(testReading(0.94), 0.85); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := log.Append(testReading(0.70), 0.85); err != nil {
		t.Fatalf("append: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows: got %d, want header plus 2", len(rows))
	}
	if rows[1][0] != "2026-08-23 09:00:00" {
		t.Fatalf("timestamp cell: got %q", rows[1][0])
	}
	if status := rows[1][len(rows[1])-1]; status != "OK" {
		t.Fatalf("healthy row status: got %q", status)
	}
	if status := rows[2][len(rows[2])-1]; status != "LOW PF" {
		t.Fatalf("low pf row status: got %q", status)
	}
}

func TestLogReopensExistingWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.xlsx")
	log, err := NewLog(path)
	if err != nil {
		t.Fatalf("new log: %v", err)
	}
	if err := log.Append(testReading(0.94), 0.85); err != nil {
		t.Fatalf("append: %v", err)
	}

	// a second instance on the same path must append, not recreate
	reopened, err := NewLog(path)
	if err != nil {
		t.Fatalf("reopen log: %v", err)
	}
	if err := reopened.Append(testReading(0.92), 0.85); err != nil {
		t.Fatalf("append after reopen: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows after reopen: got %d, want 3", len(rows))
	}
}

func TestNewLogRejectsEmptyPath(t *testing.T) {
	if _, err := NewLog(""); err == nil {
		t.Fatal("empty path accepted")
	}
}
