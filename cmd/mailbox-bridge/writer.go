package main

import (
	"os"

	"mailbox-bridge/internal/producer"
)

// newSnapshotWriter sets up the extra sinks next to the data buffer based
// on flags and env vars. It returns the writer and a cleanup function to
// close any resources.
func newSnapshotWriter(printOnly, useTUI bool, logFile string) (producer.SnapshotWriter, func(), error) {
	cleanup := func() {}

	base, err := baseWriter(printOnly, useTUI)
	if err != nil {
		return nil, nil, err
	}
	if logFile == "" {
		if c, ok := base.(interface{ Close() error }); ok {
			cleanup = func() { c.Close() }
		}
		return base, cleanup, nil
	}

	fw, err := producer.NewFileWriter(logFile, logFile+".commands")
	if err != nil {
		return nil, nil, err
	}
	mw := producer.NewMultiWriter(base, fw)
	cleanup = func() { mw.Close() }
	return mw, cleanup, nil
}

// baseWriter chooses the underlying sink based on flags and env vars.
func baseWriter(printOnly, useTUI bool) (producer.SnapshotWriter, error) {
	if useTUI {
		return producer.NewTUIWriter(), nil
	}
	endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	if printOnly || endpoint == "" {
		return producer.NewStdoutWriter(), nil
	}
	tableName := os.Getenv("GREPTIMEDB_TABLE")
	if tableName == "" {
		tableName = "mailbox_snapshots"
	}
	source := os.Getenv("SOURCE_ID")
	if source == "" {
		source = "producer-01"
	}
	return producer.NewGreptimeWriter(endpoint, tableName, source)
}
