package executor

import (
	"bytes"

	"github.com/Cyclone1070/nyx/internal/action/service/fs"
)

const binarySample = 8000

// collector captures one output stream up to maxBytes and stops keeping
// data once the leading sample looks binary.
type collector struct {
	buf       bytes.Buffer
	maxBytes  int
	truncated bool
	binary    bool
	checked   int
}

func newCollector(maxBytes int) *collector {
	return &collector{maxBytes: maxBytes}
}

func (c *collector) Write(p []byte) (int, error) {
	if c.binary {
		return len(p), nil
	}
	if c.checked < binarySample {
		sample := p[:min(len(p), binarySample-c.checked)]
		if fs.IsBinary(sample) {
			c.binary = true
			c.truncated = true
			c.buf.Reset()
			return len(p), nil
		}
		c.checked += len(sample)
	}

	room := c.maxBytes - c.buf.Len()
	if room <= 0 {
		c.truncated = true
		return len(p), nil
	}
	chunk := p
	if len(chunk) > room {
		chunk = chunk[:room]
		c.truncated = true
	}
	c.buf.Write(chunk)
	return len(p), nil
}

func (c *collector) String() string {
	if c.binary {
		return "[binary output]"
	}
	return c.buf.String()
}

func (c *collector) Truncated() bool { return c.truncated }
