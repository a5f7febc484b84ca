package oml

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"html"
	"net"
	"strings"
	"time"
)

// PipeOp is one stage of an OML pipe-operation chain.
type PipeOp interface {
	Apply(v string) (string, error)
}

// Base64Decode implements base64_de; Encode carries the decode target
// charset hint (see Encoding).
type Base64Decode struct{ Encode Encoding }

func (p Base64Decode) Apply(v string) (string, error) {
	out, err := base64.StdEncoding.DecodeString(v)
	if err != nil {
		return "", fmt.Errorf("base64_de: %w", err)
	}
	return string(out), nil
}

// HTMLEscapeEncode/Decode implement html_escape_en/html_escape_de.
type HTMLEscapeEncode struct{}

func (HTMLEscapeEncode) Apply(v string) (string, error) { return html.EscapeString(v), nil }

type HTMLEscapeDecode struct{}

func (HTMLEscapeDecode) Apply(v string) (string, error) { return html.UnescapeString(v), nil }

// JSONEscapeEncode/Decode quote/unquote a string as a JSON string literal.
type JSONEscapeEncode struct{}

func (JSONEscapeEncode) Apply(v string) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type JSONEscapeDecode struct{}

func (JSONEscapeDecode) Apply(v string) (string, error) {
	var out string
	if err := json.Unmarshal([]byte(v), &out); err != nil {
		return "", err
	}
	return out, nil
}

// StrEscapeEncode implements str_escape_en: backslash-escape quotes/backslashes.
type StrEscapeEncode struct{}

func (StrEscapeEncode) Apply(v string) (string, error) {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return r.Replace(v), nil
}

// IP4Int implements to_ip4_int: converts a dotted-quad IPv4 to its uint32.
type IP4Int struct{}

func (IP4Int) Apply(v string) (string, error) {
	ip := net.ParseIP(v).To4()
	if ip == nil {
		return "", fmt.Errorf("to_ip4_int: not an ipv4 address: %q", v)
	}
	n := binary.BigEndian.Uint32(ip)
	return fmt.Sprintf("%d", n), nil
}

// TimeUnit selects the epoch unit for timestamp pipe conversions.
type TimeUnit int

const (
	UnitSec TimeUnit = iota
	UnitMS
	UnitUS
)

// ToTimestamp implements to_timestamp / to_timestamp_ms / to_timestamp_us /
// to_timestamp_zone: parses an epoch integer string in Unit, optionally
// offset by ZoneSeconds, and renders RFC3339.
type ToTimestamp struct {
	Unit        TimeUnit
	ZoneSeconds int
}

func (p ToTimestamp) Apply(v string) (string, error) {
	var n int64
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return "", fmt.Errorf("to_timestamp: %w", err)
	}
	var t time.Time
	switch p.Unit {
	case UnitMS:
		t = time.UnixMilli(n)
	case UnitUS:
		t = time.UnixMicro(n)
	default:
		t = time.Unix(n, 0)
	}
	loc := time.FixedZone("", p.ZoneSeconds)
	return t.In(loc).Format(time.RFC3339), nil
}

// RunPipe runs an ordered chain of pipe operations over v, failing on the
// first stage error (OML's FmtConv reason).
func RunPipe(v string, ops []PipeOp) (string, error) {
	for _, op := range ops {
		out, err := op.Apply(v)
		if err != nil {
			return "", err
		}
		v = out
	}
	return v, nil
}
