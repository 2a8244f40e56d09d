// capturechart turns a TRNG capture file (.bin or .csv from cmd/collect)
// into an Excel workbook with a running z-score chart of the ones density,
// a quick visual check that the generator output is unbiased.
//
// Usage: capturechart <path-to-.bin-or-.csv>
package main

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"math/bits"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Zscore"

var (
	wordsRe    = regexp.MustCompile(`_w(\d+)_i`)
	intervalRe = regexp.MustCompile(`_i(\d+)`)
)

// sampleRow is one capture sample with its label and ones count, plus the
// computed running statistics.
type sampleRow struct {
	Label          string
	Ones           int
	CumulativeMean float64
	ZScore         float64
}

// parseName recovers the words-per-sample and interval from a capture
// filename following the naming package's convention.
func parseName(filePath string) (words, intervalSec int, err error) {
	base := filepath.Base(filePath)
	m := wordsRe.FindStringSubmatch(base)
	if len(m) < 2 {
		return 0, 0, fmt.Errorf("words-per-sample not found in file name: %s", base)
	}
	if words, err = strconv.Atoi(m[1]); err != nil {
		return 0, 0, err
	}
	m = intervalRe.FindStringSubmatch(base)
	if len(m) < 2 {
		return 0, 0, fmt.Errorf("interval not found in file name: %s", base)
	}
	if intervalSec, err = strconv.Atoi(m[1]); err != nil {
		return 0, 0, err
	}
	return words, intervalSec, nil
}

// readBin reads a raw capture and returns one row per sample of
// words-per-sample 32-bit words, labelled by sample number. A trailing
// partial sample is counted as-is.
func readBin(filePath string, words int) ([]sampleRow, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	rows := make([]sampleRow, 0, 1024)
	buf := make([]byte, words*4)
	sample := 1
	for {
		n, err := io.ReadFull(reader, buf)
		if n == 0 {
			break
		}
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, err
		}
		ones := 0
		for i := 0; i < n; i++ {
			ones += bits.OnesCount8(buf[i])
		}
		rows = append(rows, sampleRow{Label: strconv.Itoa(sample), Ones: ones})
		sample++
		if n < len(buf) {
			break
		}
	}
	return rows, nil
}

// readCSV reads a collect-format csv (timestamp, ones count per line) and
// labels rows by time of day.
func readCSV(filePath string) ([]sampleRow, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	rows := make([]sampleRow, 0, len(records))
	for _, rec := range records {
		if len(rec) < 2 {
			continue
		}
		onesStr := strings.TrimSpace(rec[1])
		ones, err := strconv.Atoi(onesStr)
		if err != nil {
			return nil, fmt.Errorf("invalid ones value %q: %w", onesStr, err)
		}
		rows = append(rows, sampleRow{Label: timeLabel(strings.TrimSpace(rec[0])), Ones: ones})
	}
	return rows, nil
}

// timeLabel reduces a collect timestamp to HH:MM:SS, passing unknown formats
// through unchanged.
func timeLabel(s string) string {
	for _, layout := range []string{"20060102T15:04:05", time.RFC3339, "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04:05")
		}
	}
	return s
}

// zTest fills in the cumulative mean and z-score per row against a fair-coin
// expectation over sampleBits bits:
//
//	expected mean   = sampleBits / 2
//	expected stddev = sqrt(sampleBits / 4)
//	z_i = (cumMean_i - mean) / (stddev / sqrt(i+1))
func zTest(rows []sampleRow, sampleBits int) {
	mean := 0.5 * float64(sampleBits)
	stddev := math.Sqrt(float64(sampleBits) * 0.25)
	if stddev == 0 {
		return
	}
	sum := 0
	for i := range rows {
		sum += rows[i].Ones
		cum := float64(sum) / float64(i+1)
		rows[i].CumulativeMean = cum
		rows[i].ZScore = (cum - mean) / (stddev / math.Sqrt(float64(i+1)))
	}
}

// writeWorkbook writes the rows and a z-score line chart next to the input
// file with a .xlsx extension.
func writeWorkbook(rows []sampleRow, filePath string, sampleBits, intervalSec int, labelHeader string) error {
	if len(rows) == 0 {
		return errors.New("no data to write")
	}
	outPath := strings.TrimSuffix(filePath, filepath.Ext(filePath)) + ".xlsx"
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	if defaultSheet != sheetName {
		f.NewSheet(sheetName)
		f.DeleteSheet(defaultSheet)
	}

	_ = f.SetCellStr(sheetName, "A1", labelHeader)
	_ = f.SetCellStr(sheetName, "B1", "ones")
	_ = f.SetCellStr(sheetName, "C1", "cumulative_mean")
	_ = f.SetCellStr(sheetName, "D1", "z_score")

	for i, r := range rows {
		rowIdx := i + 2
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowIdx), r.Label)
		_ = f.SetCellInt(sheetName, fmt.Sprintf("B%d", rowIdx), r.Ones)
		_ = f.SetCellFloat(sheetName, fmt.Sprintf("C%d", rowIdx), r.CumulativeMean, 6, 64)
		_ = f.SetCellFloat(sheetName, fmt.Sprintf("D%d", rowIdx), r.ZScore, 6, 64)
	}

	endRow := len(rows) + 1
	chart := &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{
			{
				Name:       fmt.Sprintf("%s!$D$1", sheetName),
				Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheetName, endRow),
				Values:     fmt.Sprintf("%s!$D$2:$D$%d", sheetName, endRow),
			},
		},
		Title:  []excelize.RichTextRun{{Text: filepath.Base(filePath)}},
		Legend: excelize.ChartLegend{Position: "none"},
		XAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: fmt.Sprintf("Samples - one every %d second(s)", intervalSec)}}},
		YAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: fmt.Sprintf("Z-score - sample size = %d bits", sampleBits)}}, MajorGridLines: true},
	}
	if err := f.AddChart(sheetName, "F2", chart); err != nil {
		return err
	}

	return f.SaveAs(outPath)
}

func run(filePath string) error {
	words, intervalSec, err := parseName(filePath)
	if err != nil {
		return err
	}
	sampleBits := words * 32

	var rows []sampleRow
	labelHeader := "samples"
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".bin":
		rows, err = readBin(filePath, words)
	case ".csv":
		rows, err = readCSV(filePath)
		labelHeader = "time"
	default:
		return fmt.Errorf("unsupported file type: %s", filepath.Ext(filePath))
	}
	if err != nil {
		return err
	}

	zTest(rows, sampleBits)
	return writeWorkbook(rows, filePath, sampleBits, intervalSec, labelHeader)
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: capturechart <path-to-.bin-or-.csv>")
		os.Exit(2)
	}
	if err := run(os.Args[1]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
