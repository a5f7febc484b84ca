package wpl

// Cursor is a position-tracked view over an input string. Field and group
// statements advance it on success and restore it on failure.
type Cursor struct {
	data string
	pos  int
}

func NewCursor(s string) *Cursor { return &Cursor{data: s} }

func (c *Cursor) Pos() int { return c.pos }

func (c *Cursor) Reset(pos int) { c.pos = pos }

func (c *Cursor) Remaining() string { return c.data[c.pos:] }

func (c *Cursor) Len() int { return len(c.data) - c.pos }

func (c *Cursor) Advance(n int) { c.pos += n }

func (c *Cursor) AtEnd() bool { return c.pos >= len(c.data) }

func (c *Cursor) Peek(n int) string {
	end := c.pos + n
	if end > len(c.data) {
		end = len(c.data)
	}
	return c.data[c.pos:end]
}
