package remote

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"time"
)

// DefaultDialTimeout bounds Send's connection attempt.
const DefaultDialTimeout = 3 * time.Second

// Send connects to addr and writes one command per line. Empty lines are
// skipped since the server treats them as end of input.
func Send(ctx context.Context, addr string, lines ...string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}

	dialer := net.Dialer{Timeout: DefaultDialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("remote: dial %s: %w", addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}

	w := bufio.NewWriter(conn)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, err := w.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("remote: write: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("remote: write: %w", err)
	}
	return nil
}
