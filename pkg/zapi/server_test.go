package zapi

import (
	"context"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

type recordingHandler struct {
	mu      sync.Mutex
	added   []*IPRouteBody
	deleted []*IPRouteBody
}

func (h *recordingHandler) HandleRouteAdd(_ uint32, body *IPRouteBody) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.added = append(h.added, body)
	return nil
}

func (h *recordingHandler) HandleRouteDelete(_ uint32, body *IPRouteBody) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deleted = append(h.deleted, body)
	return nil
}

func (h *recordingHandler) counts() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.added), len(h.deleted)
}

func sendMessage(t *testing.T, conn net.Conn, command Command, vrfID uint32, body Body) {
	t.Helper()
	m := &Message{
		Header: Header{Marker: HeaderMarker, Version: Version, VRFID: vrfID, Command: command},
		Body:   body,
	}
	data, err := m.Serialize()
	require.NoError(t, err)
	_, err = conn.Write(data)
	require.NoError(t, err)
}

func TestServerDispatchesRouteMessages(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "zserv.api")
	handler := &recordingHandler{}
	server := NewServer(socketPath, handler, logr.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- server.Run(ctx) }()

	var conn net.Conn
	var err error
	require.Eventually(t, func() bool {
		conn, err = net.Dial("unix", socketPath)
		return err == nil
	}, time.Second, 10*time.Millisecond)
	defer conn.Close()

	sendMessage(t, conn, CommandHello, 0, &HelloBody{RouteType: RouteBGP})

	route := &IPRouteBody{
		Type:         RouteBGP,
		Message:      MessageNexthop,
		Family:       unix.AF_INET,
		Prefix:       net.ParseIP("10.1.0.0").To4(),
		PrefixLength: 16,
		Nexthops: []APINexthop{
			{Type: NexthopTypeIPv4, Gate: net.ParseIP("192.0.2.1")},
		},
	}
	sendMessage(t, conn, CommandRouteAdd, 1, route)
	sendMessage(t, conn, CommandRouteDelete, 1, route)

	require.Eventually(t, func() bool {
		added, deleted := handler.counts()
		return added == 1 && deleted == 1
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, uint64(3), server.Stats().Messages.Load())
	assert.Equal(t, int64(1), server.Stats().Clients.Load())

	cancel()
	require.NoError(t, <-done)
}

func TestServerCountsDecodeErrors(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "zserv.api")
	handler := &recordingHandler{}
	server := NewServer(socketPath, handler, logr.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = server.Run(ctx) }()

	var conn net.Conn
	var err error
	require.Eventually(t, func() bool {
		conn, err = net.Dial("unix", socketPath)
		return err == nil
	}, time.Second, 10*time.Millisecond)
	defer conn.Close()

	// Valid length, wrong marker. The server drops the client.
	_, err = conn.Write([]byte{0x00, 0x0a, 0x00, Version, 0, 0, 0, 0, 0x00, 0x01})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return server.Stats().DecodeErrors.Load() == 1
	}, time.Second, 10*time.Millisecond)
}
