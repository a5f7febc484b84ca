package wpl

import (
	"sync/atomic"
	"time"
)

// PackageID tags a WplPackage instance for diagnostics; it is not
// load-bearing on parse semantics.
type PackageID uint64

var (
	pkgIDBase  uint64
	pkgIDOnce  int32
	pkgCounter uint64
)

func packageIDBase() uint64 {
	if atomic.CompareAndSwapInt32(&pkgIDOnce, 0, 1) {
		atomic.StoreUint64(&pkgIDBase, (uint64(time.Now().Unix())&0xFFFFFFFF)<<24)
	}
	return atomic.LoadUint64(&pkgIDBase)
}

// NewPackageID returns a monotonically increasing id combining a
// process-start-time-derived base with an atomic counter.
func NewPackageID() PackageID {
	return PackageID(packageIDBase() + atomic.AddUint64(&pkgCounter, 1) - 1)
}

// GroupIndexDesc renders a group's diagnostic position label.
func GroupIndexDesc(idx int) string {
	switch {
	case idx == 0:
		return ""
	case idx >= 1 && idx <= 9:
		return "group[" + digitString(idx) + "]"
	default:
		return "group[.]"
	}
}

// FieldIndexDesc renders a field's diagnostic position label.
func FieldIndexDesc(idx int) string {
	switch {
	case idx == 0:
		return ""
	case idx >= 1 && idx <= 9:
		return "field[" + digitString(idx) + "]"
	default:
		return "field[.]"
	}
}

func digitString(d int) string {
	return string(rune('0' + d))
}

// FieldType names a built-in WPL field type parser.
type FieldType int

const (
	TypeChars FieldType = iota
	TypeDigit
	TypeIP
	TypeHex
	TypeBool
	TypeSymbol
	TypePeekSymbol
	TypeIgnore
	TypeTime
)

// PipeFunc is a side-effect-free transform applied to a field's raw value.
type PipeFunc interface {
	Name() string
	Apply(raw RawData) (RawData, error)
}

// RawDataKind tags the variant RawData holds.
type RawDataKind int

const (
	RawOwnedString RawDataKind = iota
	RawOwnedBytes
	RawSharedBytes
)

// RawData is the value threaded through a function-pipe chain.
type RawData struct {
	Kind  RawDataKind
	Str   string
	Bytes []byte
}

func RawString(s string) RawData { return RawData{Kind: RawOwnedString, Str: s} }
func RawBytes(b []byte) RawData  { return RawData{Kind: RawOwnedBytes, Bytes: b} }

func (r RawData) AsBytes() []byte {
	if r.Kind == RawOwnedString {
		return []byte(r.Str)
	}
	return r.Bytes
}

func (r RawData) AsString() string {
	if r.Kind == RawOwnedString {
		return r.Str
	}
	return string(r.Bytes)
}

// GroupKind selects a GroupStmt's combination semantics.
type GroupKind int

const (
	GroupSeq GroupKind = iota
	GroupAlt
	GroupOpt
	GroupSomeOf
)

// Statement is any node that can be executed inside a rule: a typed field
// parser, a grouping combinator, or a side-effect-free function pipe.
type Statement interface {
	isStatement()
}

// FieldStmt consumes a substring matching Type and emits one DataField.
type FieldStmt struct {
	Type   FieldType
	Name   string // optional; empty means positional/unnamed
	Params map[string]string
	Pipe   []PipeFunc
	Index  int // diagnostic field[N] position, 0 = unset
}

func (*FieldStmt) isStatement() {}

// GroupStmt composes inner statements under Kind's combination semantics.
type GroupStmt struct {
	Kind  GroupKind
	Inner [][]Statement // each element is an alternative/branch sequence
	Index int           // diagnostic group[N] position, 0 = unset
}

func (*GroupStmt) isStatement() {}

// FunctionStmt applies a pipe function to the most recently emitted field.
type FunctionStmt struct {
	Fn PipeFunc
}

func (*FunctionStmt) isStatement() {}

// WplRule is an ordered sequence of statements with a cardinality mode and
// completion flag: if Completion is true, the residue after the rule runs
// must be empty or the rule fails with ReasonNotComplete.
type WplRule struct {
	Name       string
	Statements []Statement
	Completion bool
	Group      string // declared business sink group; "" means default
}

// WplPackage is a named, ordered set of rules.
type WplPackage struct {
	ID    PackageID
	Name  string
	Rules []*WplRule
}

func NewPackage(name string, rules []*WplRule) *WplPackage {
	return &WplPackage{ID: NewPackageID(), Name: name, Rules: rules}
}
