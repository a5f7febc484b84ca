package routing

import (
	"context"

	"wparse/internal/wpl"
)

// BlackHole discards every record. internal/app backs every infra group with
// a file sink, so BlackHole is used only where a caller adds it explicitly.
type BlackHole struct{}

func (BlackHole) SinkRecord(ctx context.Context, r *wpl.DataRecord) error   { return nil }
func (BlackHole) SinkRecords(ctx context.Context, rs []*wpl.DataRecord) error { return nil }
func (BlackHole) SinkStr(ctx context.Context, s string) error               { return nil }
func (BlackHole) SinkBytes(ctx context.Context, b []byte) error             { return nil }
func (BlackHole) Stop(ctx context.Context) error                            { return nil }
func (BlackHole) Reconnect(ctx context.Context) error                       { return nil }
