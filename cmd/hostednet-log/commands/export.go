package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/hostednet/hostednet-go/pkg/log"
)

// RunExport exports the log file to w in the given format.
func RunExport(path, format string, w io.Writer) error {
	if format != "jsonl" && format != "csv" {
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}

	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	if format == "csv" {
		return exportCSV(reader, w)
	}
	return exportJSONL(reader, w)
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "run_id", "source", "category", "ssid", "device_id", "type", "detail"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		eventType, detail := "unknown", ""
		switch {
		case event.Notification != nil:
			eventType = event.Notification.Type.String()
			detail = event.Notification.Message
		case event.StateChange != nil:
			eventType = "state"
			detail = event.StateChange.NewState
		case event.Error != nil:
			eventType = "error"
			detail = event.Error.Kind + ": " + event.Error.Message
		}

		row := []string{
			event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
			event.RunID,
			event.Source.String(),
			event.Category.String(),
			event.SSID,
			event.DeviceID,
			eventType,
			detail,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return cw.Error()
}
