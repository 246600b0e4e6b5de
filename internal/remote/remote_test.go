package remote

import (
	"bytes"
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

// inbox is a Target that records lines.
type inbox struct {
	mu    sync.Mutex
	lines []string
	full  bool
	got   chan struct{}
}

func newInbox() *inbox {
	return &inbox{got: make(chan struct{}, 64)}
}

func (b *inbox) Submit(line string) bool {
	if b.full {
		return false
	}
	b.mu.Lock()
	b.lines = append(b.lines, line)
	b.mu.Unlock()
	b.got <- struct{}{}
	return true
}

func (b *inbox) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lines...)
}

func (b *inbox) wait(t *testing.T, n int) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for i := 0; i < n; i++ {
		select {
		case <-b.got:
		case <-timeout:
			t.Fatalf("timed out after %d of %d lines", i, n)
		}
	}
}

func quiet() *log.Logger {
	return log.NewWithOptions(&bytes.Buffer{}, log.Options{})
}

func TestHubBroadcast(t *testing.T) {
	h := NewHub(quiet())
	a, b, c := newInbox(), newInbox(), newInbox()
	c.full = true

	h.Register("a", a)
	h.Register("b", b)
	h.Register("c", c)
	if h.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", h.Count())
	}

	if n := h.Broadcast("start"); n != 2 {
		t.Errorf("Broadcast() = %d, want 2", n)
	}

	h.Unregister("b")
	h.Broadcast("left")

	if got := a.Lines(); len(got) != 2 || got[1] != "left" {
		t.Errorf("a got %v", got)
	}
	if got := b.Lines(); len(got) != 1 {
		t.Errorf("unregistered target got %v", got)
	}
	ids := h.IDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "c" {
		t.Errorf("IDs() = %v", ids)
	}
}

func startServer(t *testing.T, h *Hub) *Server {
	t.Helper()
	s := NewServer("127.0.0.1:0", h, quiet())
	if err := s.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	t.Cleanup(func() { s.Stop() })
	return s
}

func TestServerDeliversLines(t *testing.T) {
	h := NewHub(quiet())
	box := newInbox()
	h.Register("launcher", box)
	s := startServer(t, h)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := Send(ctx, s.Addr().String(), "start", "  setup bci=1.8 ", "", "select 3"); err != nil {
		t.Fatalf("Send() failed: %v", err)
	}

	box.wait(t, 3)
	want := []string{"start", "setup bci=1.8", "select 3"}
	got := box.Lines()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestServerEmptyLineEndsConnection(t *testing.T) {
	h := NewHub(quiet())
	box := newInbox()
	h.Register("launcher", box)
	s := startServer(t, h)

	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("start\n\nleft\n")); err != nil {
		t.Fatal(err)
	}
	box.wait(t, 1)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 1)
	if _, err := conn.Read(buf); err == nil {
		t.Error("server should close the connection after an empty line")
	}
	if got := box.Lines(); len(got) != 1 {
		t.Errorf("lines after the empty line were delivered: %v", got)
	}
}

func TestServerStopClosesClients(t *testing.T) {
	s := NewServer("127.0.0.1:0", NewHub(quiet()), quiet())
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}

	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() hung with an idle client")
	}

	if err := s.Stop(); err != nil {
		t.Errorf("second Stop() = %v", err)
	}
}

func TestSendDialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := Send(ctx, addr, "start"); err == nil {
		t.Error("Send() to a closed port should fail")
	}
}
