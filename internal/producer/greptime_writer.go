package producer

import (
	"context"
	"log"
	"net"
	"strconv"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	ingesterContext "github.com/GreptimeTeam/greptimedb-ingester-go/context"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"mailbox-bridge/internal/telemetry"
)

// ingestClient is the subset of the GreptimeDB client the writer needs,
// abstracted for testing.
type ingestClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeWriter mirrors snapshots to GreptimeDB, one row per attribute.
// Snapshots have no fixed schema, so attributes become a tag column and
// values split into numeric and text fields.
type GreptimeWriter struct {
	client    ingestClient
	tableName string
	source    string
	now       func() time.Time
}

// NewGreptimeWriter creates the writer and auto-creates the table.
// source tags every row, distinguishing multiple producers sharing a DB.
func NewGreptimeWriter(endpoint, tableName, source string) (*GreptimeWriter, error) {
	cfg := greptime.NewConfig(endpoint)
	if host, port, err := net.SplitHostPort(endpoint); err == nil {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, err
		}
		cfg = greptime.NewConfig(host).WithPort(p)
	}
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &GreptimeWriter{client: client, tableName: tableName, source: source, now: time.Now}, nil
}

// Write inserts one row per snapshot attribute.
func (w *GreptimeWriter) Write(snap telemetry.Snapshot) error {
	if len(snap) == 0 {
		return nil
	}
	ts := w.now().UTC()

	tbl, err := table.New(w.tableName)
	if err != nil {
		return err
	}
	if err := tbl.AddTagColumn("source", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTagColumn("attribute", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("value_num", types.FLOAT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("value_text", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}

	for _, k := range snap.Keys() {
		num, text := splitScalar(snap[k])
		if err := tbl.AddRow(w.source, k, num, text, ts); err != nil {
			return err
		}
	}

	// The table is auto-created on first write; the hint applies the
	// retention the schema calls for.
	ctx := ingesterContext.New(context.Background(), ingesterContext.WithHints("ttl=30d"))
	if _, err := w.client.Write(ctx, tbl); err != nil {
		log.Printf("[GreptimeWriter] write failed: %v", err)
		return err
	}
	return nil
}

// splitScalar maps a snapshot value onto the numeric/text field pair.
func splitScalar(v any) (float64, string) {
	switch x := v.(type) {
	case int:
		return float64(x), ""
	case int32:
		return float64(x), ""
	case int64:
		return float64(x), ""
	case float32:
		return float64(x), ""
	case float64:
		return x, ""
	case string:
		return 0, x
	}
	return 0, ""
}
