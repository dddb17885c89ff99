package protocol

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"gridplan/internal/domain/grid"
)

var ErrMalformedAck = errors.New("malformed acknowledgement")

const endMarker = "#end"

// Channel speaks the line protocol of the environment server: the client
// names itself, reads the level up to #end, then sends one joint action
// per line and reads one acknowledgement line back.
type Channel struct {
	mu sync.Mutex
	r  *bufio.Reader
	w  *bufio.Writer
}

func NewChannel(r io.Reader, w io.Writer) *Channel {
	return &Channel{r: bufio.NewReader(r), w: bufio.NewWriter(w)}
}

func (c *Channel) Hello(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.writeLine(name)
}

// ReadLevel returns the level text including the #end line.
func (c *Channel) ReadLevel(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var b strings.Builder
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		line, err := c.readLine()
		if err != nil {
			return "", fmt.Errorf("read level: %w", err)
		}
		b.WriteString(line)
		b.WriteByte('\n')
		if line == endMarker {
			return b.String(), nil
		}
	}
}

func (c *Channel) Send(ctx context.Context, joint grid.JointAction) ([]bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.writeLine(joint.String()); err != nil {
		return nil, err
	}
	line, err := c.readLine()
	if err != nil {
		return nil, fmt.Errorf("read acknowledgement: %w", err)
	}
	return ParseAck(line, len(joint))
}

func (c *Channel) writeLine(s string) error {
	if _, err := c.w.WriteString(s + "\n"); err != nil {
		return err
	}
	return c.w.Flush()
}

func (c *Channel) readLine() (string, error) {
	line, err := c.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", io.ErrUnexpectedEOF
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ParseAck reads a "true;false" line. Anything other than "true" counts
// as a rejection; the number of fields must match the agent count.
func ParseAck(line string, agents int) ([]bool, error) {
	fields := strings.Split(strings.TrimSpace(line), ";")
	if len(fields) != agents {
		return nil, fmt.Errorf("%w: %q has %d fields, want %d", ErrMalformedAck, line, len(fields), agents)
	}
	out := make([]bool, len(fields))
	for i, f := range fields {
		out[i] = strings.EqualFold(strings.TrimSpace(f), "true")
	}
	return out, nil
}
