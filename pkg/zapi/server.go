package zapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/go-logr/logr"
)

// Handler consumes decoded route messages. Calls are serialized: the
// server invokes the handler from a single goroutine, one message is
// processed to completion before the next one is dequeued.
type Handler interface {
	HandleRouteAdd(clientVRF uint32, body *IPRouteBody) error
	HandleRouteDelete(clientVRF uint32, body *IPRouteBody) error
}

// Stats are monotonic counters exposed for monitoring.
type Stats struct {
	Clients      atomic.Int64
	Messages     atomic.Uint64
	DecodeErrors atomic.Uint64
}

type Server struct {
	path    string
	handler Handler
	logger  logr.Logger
	stats   Stats

	listener net.Listener
	events   chan *Message
}

const eventQueueDepth = 64

func NewServer(path string, handler Handler, logger logr.Logger) *Server {
	return &Server{
		path:    path,
		handler: handler,
		logger:  logger.WithName("zapi-server"),
		events:  make(chan *Message, eventQueueDepth),
	}
}

func (s *Server) Stats() *Stats {
	return &s.stats
}

// Run listens on the unix socket until ctx is cancelled. It owns the
// socket file and removes a stale one at startup.
func (s *Server) Run(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("error creating socket directory: %w", err)
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error removing stale socket: %w", err)
	}

	listener, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("error listening on %s: %w", s.path, err)
	}
	s.listener = listener
	s.logger.Info("listening", "path", s.path)

	go s.dispatch(ctx)

	go func() {
		<-ctx.Done()
		listener.Close()
		os.Remove(s.path)
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("error accepting client: %w", err)
		}
		go s.serveConn(ctx, conn)
	}
}

// dispatch is the single consumer of decoded messages.
func (s *Server) dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-s.events:
			s.handleMessage(m)
		}
	}
}

func (s *Server) handleMessage(m *Message) {
	switch m.Header.Command {
	case CommandRouteAdd, CommandRouteDelete:
		body, ok := m.Body.(*IPRouteBody)
		if !ok {
			return
		}
		var err error
		if m.Header.Command == CommandRouteAdd {
			err = s.handler.HandleRouteAdd(m.Header.VRFID, body)
		} else {
			err = s.handler.HandleRouteDelete(m.Header.VRFID, body)
		}
		if err != nil {
			s.logger.Error(err, "route handling failed", "command", m.Header.Command.String(), "route", body.String())
		}
	case CommandHello:
		body, ok := m.Body.(*HelloBody)
		if !ok {
			return
		}
		s.logger.Info("client hello", "routeType", body.RouteType.String(), "instance", body.Instance)
	default:
		s.logger.V(1).Info("ignoring message", "command", m.Header.Command.String())
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	s.stats.Clients.Add(1)
	defer func() {
		s.stats.Clients.Add(-1)
		conn.Close()
	}()

	for {
		m, err := readMessage(conn)
		if err != nil {
			if err != io.EOF && ctx.Err() == nil {
				s.stats.DecodeErrors.Add(1)
				s.logger.Error(err, "error reading client message")
			}
			return
		}
		s.stats.Messages.Add(1)
		select {
		case <-ctx.Done():
			return
		case s.events <- m:
		}
	}
}

func readMessage(conn net.Conn) (*Message, error) {
	headerBuf, err := readAll(conn, HeaderSize)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("error reading header: %w", err)
	}
	hdr := &Header{}
	if err := hdr.DecodeFromBytes(headerBuf); err != nil {
		return nil, fmt.Errorf("error decoding header: %w", err)
	}
	bodyBuf, err := readAll(conn, int(hdr.Len)-HeaderSize)
	if err != nil {
		return nil, fmt.Errorf("error reading body: %w", err)
	}
	m, err := ParseMessage(hdr, bodyBuf)
	if err != nil {
		return nil, fmt.Errorf("error parsing message: %w", err)
	}
	return m, nil
}

func readAll(conn net.Conn, length int) ([]byte, error) {
	buf := make([]byte, length)
	_, err := io.ReadFull(conn, buf)
	return buf, err
}
