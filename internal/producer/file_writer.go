package producer

import (
	"encoding/json"
	"os"
	"time"

	"mailbox-bridge/internal/command"
	"mailbox-bridge/internal/mailbox"
	"mailbox-bridge/internal/telemetry"
)

// Record is one line of the JSONL history log, replayable later.
type Record struct {
	Timestamp time.Time          `json:"ts"`
	Values    telemetry.Snapshot `json:"values"`
}

// CommandRecord logs one dispatched command to the history log.
type CommandRecord struct {
	Timestamp time.Time       `json:"ts"`
	Command   mailbox.Command `json:"command"`
	Outcome   string          `json:"outcome"`
}

// FileWriter appends snapshots and command records to JSONL files. The
// data buffer only ever holds the latest snapshot, so this is the one
// place history is retained.
type FileWriter struct {
	snapFile *os.File
	cmdFile  *os.File
	snapEnc  *json.Encoder
	cmdEnc   *json.Encoder
	now      func() time.Time
}

// NewFileWriter creates a FileWriter. commandPath may be empty to skip
// the command log.
func NewFileWriter(snapshotPath, commandPath string) (*FileWriter, error) {
	sf, err := os.Create(snapshotPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{snapFile: sf, snapEnc: json.NewEncoder(sf), now: time.Now}
	if commandPath != "" {
		cf, err := os.Create(commandPath)
		if err != nil {
			sf.Close()
			return nil, err
		}
		fw.cmdFile = cf
		fw.cmdEnc = json.NewEncoder(cf)
	}
	return fw, nil
}

// Write logs a single snapshot record.
func (f *FileWriter) Write(snap telemetry.Snapshot) error {
	return f.snapEnc.Encode(Record{Timestamp: f.now().UTC(), Values: snap})
}

// WriteCommand logs a dispatched command, if enabled.
func (f *FileWriter) WriteCommand(cmd mailbox.Command, outcome command.Outcome) error {
	if f.cmdEnc == nil {
		return nil
	}
	return f.cmdEnc.Encode(CommandRecord{Timestamp: f.now().UTC(), Command: cmd, Outcome: outcome.String()})
}

// Close closes the underlying files.
func (f *FileWriter) Close() error {
	var err error
	if f.snapFile != nil {
		if e := f.snapFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	if f.cmdFile != nil {
		if e := f.cmdFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
