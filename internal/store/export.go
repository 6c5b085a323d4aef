package store

import (
	"encoding/json"
	"io"
	"os"

	"github.com/gocarina/gocsv"
)

type ExportData struct {
	Run     RunMetadata             `json:"run"`
	Frames  int                     `json:"frames"`
	Summary map[string]ChannelStats `json:"summary"`
	Samples []Row                   `json:"samples"`
}

func newExportData(meta RunMetadata, rows []Row) ExportData {
	frames := 0
	for _, r := range rows {
		if r.Frame+1 > frames {
			frames = r.Frame + 1
		}
	}
	if rows == nil {
		rows = []Row{}
	}
	return ExportData{
		Run:     meta,
		Frames:  frames,
		Summary: Summarize(rows),
		Samples: rows,
	}
}

func ExportJSON(w io.Writer, meta RunMetadata, rows []Row) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExportData(meta, rows))
}

func ExportJSONFile(path string, meta RunMetadata, rows []Row) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportJSON(file, meta, rows)
}

func ExportCSV(w io.Writer, rows []Row) error {
	if rows == nil {
		rows = []Row{}
	}
	return gocsv.Marshal(rows, w)
}

func ExportCSVFile(path string, rows []Row) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportCSV(file, rows)
}
