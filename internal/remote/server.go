package remote

import (
	"bufio"
	"errors"
	"net"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// DefaultAddr is where the launcher listens for remote control lines.
const DefaultAddr = ":7897"

// Server accepts TCP connections and forwards each received line to the
// hub. A connection ends at EOF or at the first empty line.
type Server struct {
	addr   string
	hub    *Hub
	logger *log.Logger

	listener net.Listener
	running  atomic.Bool
	stopCh   chan struct{}
	wg       sync.WaitGroup

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

// NewServer creates a server for addr delivering to hub.
func NewServer(addr string, hub *Hub, logger *log.Logger) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		addr:   addr,
		hub:    hub,
		logger: logger,
		stopCh: make(chan struct{}),
		conns:  make(map[net.Conn]struct{}),
	}
}

// Start binds the listener and begins accepting connections.
func (s *Server) Start() error {
	if !s.running.CompareAndSwap(false, true) {
		return nil
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return err
	}
	s.listener = ln
	s.logger.Info("remote control listening", "addr", ln.Addr().String())

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("accept failed", "err", err)
			continue
		}

		s.mu.Lock()
		select {
		case <-s.stopCh:
			s.mu.Unlock()
			conn.Close()
			return
		default:
		}
		s.conns[conn] = struct{}{}
		s.wg.Add(1)
		s.mu.Unlock()

		go s.serve(conn)
	}
}

func (s *Server) serve(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	remote := conn.RemoteAddr().String()
	s.logger.Debug("client connected", "remote", remote)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			break
		}
		n := s.hub.Broadcast(line)
		s.logger.Debug("remote line", "remote", remote, "line", line, "delivered", n)
	}
	if err := scanner.Err(); err != nil {
		select {
		case <-s.stopCh:
		default:
			s.logger.Debug("client read failed", "remote", remote, "err", err)
		}
	}
	s.logger.Debug("client disconnected", "remote", remote)
}

// Stop closes the listener and every open connection, then waits for the
// connection goroutines to finish.
func (s *Server) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	close(s.stopCh)

	err := s.listener.Close()

	s.mu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	return err
}
