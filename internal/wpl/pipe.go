package wpl

import (
	"encoding/base64"
	"encoding/hex"
	"strconv"
)

// base64Pipe implements the decode/base64 built-in pipe unit.
type base64Pipe struct{}

func (base64Pipe) Name() string { return "decode/base64" }

func (base64Pipe) Apply(raw RawData) (RawData, error) {
	out, err := base64.StdEncoding.DecodeString(raw.AsString())
	if err != nil {
		return RawData{}, err
	}
	return RawBytes(out), nil
}

// hexPipe implements the decode/hex built-in pipe unit.
type hexPipe struct{}

func (hexPipe) Name() string { return "decode/hex" }

func (hexPipe) Apply(raw RawData) (RawData, error) {
	out, err := hex.DecodeString(raw.AsString())
	if err != nil {
		return RawData{}, err
	}
	return RawBytes(out), nil
}

// unescapePipe implements the unquote/unescape built-in pipe unit, handling
// Go-style backslash escapes the way WPL's function-pipe chain expects.
type unescapePipe struct{}

func (unescapePipe) Name() string { return "unquote/unescape" }

func (unescapePipe) Apply(raw RawData) (RawData, error) {
	out, err := strconv.Unquote(`"` + raw.AsString() + `"`)
	if err != nil {
		return RawData{}, err
	}
	return RawString(out), nil
}

// BuiltinPipes returns the pipe units registered on startup, keyed by name.
func BuiltinPipes() map[string]PipeFunc {
	return map[string]PipeFunc{
		"decode/base64":   base64Pipe{},
		"decode/hex":      hexPipe{},
		"unquote/unescape": unescapePipe{},
	}
}
