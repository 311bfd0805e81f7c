package evaluation

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// Format is an export encoding for the reward trace.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl" // one point per line
)

// ExportTrace writes the reward trace to w.
func (r *Recorder) ExportTrace(w io.Writer, format Format) error {
	trace := r.Trace()
	switch format {
	case FormatCSV:
		return exportTraceCSV(w, trace)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(trace)
	case FormatJSONL:
		for _, p := range trace {
			data, err := json.Marshal(p)
			if err != nil {
				return err
			}
			if _, err := w.Write(append(data, '\n')); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

// ExportDone writes the executed ids, one per row under a "done" header.
func (r *Recorder) ExportDone(w io.Writer) (retErr error) {
	cw := csv.NewWriter(w)
	defer func() {
		cw.Flush()
		if err := cw.Error(); err != nil && retErr == nil {
			retErr = fmt.Errorf("CSV writer flush error: %w", err)
		}
	}()

	if err := cw.Write([]string{"done"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, id := range r.Sequence() {
		if err := cw.Write([]string{strconv.FormatUint(uint64(id), 10)}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	return nil
}

func exportTraceCSV(w io.Writer, trace []Point) (retErr error) {
	cw := csv.NewWriter(w)
	defer func() {
		cw.Flush()
		if err := cw.Error(); err != nil && retErr == nil {
			retErr = fmt.Errorf("CSV writer flush error: %w", err)
		}
	}()

	if err := cw.Write([]string{"time", "reward"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, p := range trace {
		record := []string{
			strconv.FormatFloat(p.Steps, 'f', -1, 64),
			strconv.FormatFloat(p.Accumulated, 'f', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	return nil
}

// SaveResults writes <base>_reward.csv and <base>_done.csv under dir and
// returns their paths.
func (r *Recorder) SaveResults(dir, base string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create results dir: %w", err)
	}

	reward := filepath.Join(dir, base+"_reward.csv")
	if err := writeFile(reward, func(w io.Writer) error { return r.ExportTrace(w, FormatCSV) }); err != nil {
		return nil, err
	}
	done := filepath.Join(dir, base+"_done.csv")
	if err := writeFile(done, r.ExportDone); err != nil {
		return nil, err
	}
	return []string{reward, done}, nil
}

func writeFile(name string, export func(io.Writer) error) (retErr error) {
	file, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("failed to close export file: %w", closeErr)
		}
	}()
	return export(file)
}
