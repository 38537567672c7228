package producer

import (
	"encoding/json"
	"io"
	"os"
	"time"
)

// ReplayLog replays history records from r to writer. A speed >0 paces
// playback by the recorded timestamps; speed <= 0 inserts no delay.
func ReplayLog(r io.Reader, writer SnapshotWriter, speed float64) error {
	dec := json.NewDecoder(r)
	var prev time.Time
	for {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if !prev.IsZero() && speed > 0 {
			diff := rec.Timestamp.Sub(prev)
			if speed != 1 {
				diff = time.Duration(float64(diff) / speed)
			}
			if diff > 0 {
				time.Sleep(diff)
			}
		}
		if err := writer.Write(rec.Values); err != nil {
			return err
		}
		prev = rec.Timestamp
	}
}

// ReplayLogFile opens a history file and replays its records.
func ReplayLogFile(path string, writer SnapshotWriter, speed float64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ReplayLog(f, writer, speed)
}
