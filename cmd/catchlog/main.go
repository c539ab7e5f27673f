// Command catchlog edits a free-form catch log CSV outside the TUI.
//
//	catchlog rate -file log.csv -row 3 -score 7
//	catchlog append -file log.csv -location "113 Bridge" -area Channel -method Boat
//	catchlog show -file log.csv
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ngmaloney/fishing-log/internal/catchlog"
	"github.com/ngmaloney/fishing-log/internal/models"
)

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "rate":
		err = runRate(os.Args[2:])
	case "append":
		err = runAppend(os.Args[2:])
	case "show":
		err = runShow(os.Args[2:], os.Stdout)
	case "-h", "--help", "help":
		usage(os.Stdout)
		return
	default:
		usage(os.Stderr)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: catchlog <rate|append|show> -file PATH [flags]")
}

func runRate(args []string) error {
	fs := flag.NewFlagSet("rate", flag.ContinueOnError)
	path := fs.String("file", "", "Catch log CSV")
	row := fs.Int("row", -1, "Zero-based row to rate")
	score := fs.Int("score", 0, "Success score, 1-10")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log, err := load(*path, false)
	if err != nil {
		return err
	}
	if err := log.Rate(*row, *score); err != nil {
		return err
	}
	return save(*path, log)
}

func runAppend(args []string) error {
	fs := flag.NewFlagSet("append", flag.ContinueOnError)
	path := fs.String("file", "", "Catch log CSV, created if missing")
	location := fs.String("location", "", "Location name")
	sub := fs.String("sub", "", "Sub-location")
	area := fs.String("area", "", "Area type: Channel, Hold, Flat, Drop Off")
	water := fs.String("water", "", "Water type: Channel, Near Channel, Slack")
	position := fs.String("position", "", "Position: Shore, Transition, Middle")
	method := fs.String("method", "", "Fishing method: Shore, Boat")
	access := fs.String("access", "", "Access point")
	waterDepth := fs.Float64("water-depth", 0, "Water depth in feet")
	fishDepth := fs.Float64("fish-depth", 0, "Fish depth in feet")
	score := fs.Int("score", 0, "Success score, 1-10 (0 leaves it blank)")
	notes := fs.String("notes", "", "Notes")
	lat := fs.Float64("lat", 0, "Latitude")
	lon := fs.Float64("lon", 0, "Longitude")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log, err := load(*path, true)
	if err != nil {
		return err
	}
	err = log.Append(catchlog.LogEntry{
		RecordedAt:    time.Now(),
		LocationName:  *location,
		SubLocation:   *sub,
		AreaType:      catchlog.AreaType(*area),
		WaterType:     models.WaterType(*water),
		Position:      models.Position(*position),
		FishingMethod: catchlog.FishingMethod(*method),
		AccessPoint:   *access,
		WaterDepth:    *waterDepth,
		FishDepth:     *fishDepth,
		SuccessScore:  *score,
		Notes:         *notes,
		Latitude:      *lat,
		Longitude:     *lon,
	})
	if err != nil {
		return err
	}
	return save(*path, log)
}

func runShow(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	path := fs.String("file", "", "Catch log CSV")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log, err := load(*path, false)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, strings.Join(log.Columns, " | "))
	for i, row := range log.Rows {
		cells := make([]string, len(log.Columns))
		for j, c := range log.Columns {
			cells[j] = row[c]
		}
		fmt.Fprintf(w, "%d: %s\n", i, strings.Join(cells, " | "))
	}
	return nil
}

// load reads the log at path. A missing file is an empty log when create is set.
func load(path string, create bool) (*catchlog.Log, error) {
	if path == "" {
		return nil, errors.New("-file is required")
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) && create {
		return catchlog.NewLog(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return catchlog.ImportLog(f)
}

// save replaces the file at path by renaming a temp file over it
func save(path string, log *catchlog.Log) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".catchlog-*.csv")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := log.WriteCSV(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
