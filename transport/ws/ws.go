// Package ws implements a WebSocket-carried pairing.Sender/pairing.Receiver
// pair backed by a real github.com/gorilla/websocket connection. A small
// JSON envelope carries the content topic alongside each PayloadV2 wire
// frame so many pairing sessions can share one socket.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/waku-org/go-noise-pairing/crypto"
	"github.com/waku-org/go-noise-pairing/pairing"
)

type envelope struct {
	Topic string `json:"topic"`
	Wire  []byte `json:"wire"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Endpoint is the server side: it accepts connections at a single HTTP
// path and relays every envelope it receives from one connection to every
// other connection, regardless of topic, leaving topic filtering to the
// Decoder on each end.
type Endpoint struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]struct{}
}

// NewEndpoint creates a relay with no connections yet.
func NewEndpoint() *Endpoint {
	return &Endpoint{conns: make(map[*websocket.Conn]struct{})}
}

// ServeHTTP upgrades the request and relays until the connection closes.
func (e *Endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	e.mu.Lock()
	e.conns[conn] = struct{}{}
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		delete(e.conns, conn)
		e.mu.Unlock()
		conn.Close()
	}()

	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			return
		}
		e.broadcast(conn, env)
	}
}

func (e *Endpoint) broadcast(from *websocket.Conn, env envelope) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for c := range e.conns {
		if c == from {
			continue
		}
		_ = c.WriteJSON(env)
	}
}

// Peer is the client side: a single websocket connection used both to send
// and, via Subscribe, to receive pairing traffic.
type Peer struct {
	conn     *websocket.Conn
	mu       sync.Mutex
	subs     map[string][]*subscription
	closed   uint32
	closedCh chan struct{}
}

// Dial connects to an Endpoint's WebSocket URL (e.g. "ws://host:port/path").
func Dial(ctx context.Context, url string) (*Peer, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ws: dial: %w", err)
	}
	p := &Peer{
		conn:     conn,
		subs:     make(map[string][]*subscription),
		closedCh: make(chan struct{}),
	}
	go p.readLoop()
	return p, nil
}

func (p *Peer) readLoop() {
	defer close(p.closedCh)
	for {
		var env envelope
		if err := p.conn.ReadJSON(&env); err != nil {
			return
		}
		p.mu.Lock()
		subs := append([]*subscription(nil), p.subs[env.Topic]...)
		p.mu.Unlock()
		for _, sub := range subs {
			decoded, ok := sub.decoder.FromWire(env.Wire)
			if !ok {
				continue
			}
			select {
			case sub.ch <- decoded:
			default:
			}
		}
	}
}

// Close tears down the underlying connection.
func (p *Peer) Close() error {
	if !atomic.CompareAndSwapUint32(&p.closed, 0, 1) {
		return nil
	}
	return p.conn.Close()
}

// Send implements pairing.Sender.
func (p *Peer) Send(ctx context.Context, encoder pairing.Encoder, payload crypto.PayloadV2) error {
	wire, err := encoder.ToWire(payload)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn.WriteJSON(envelope{Topic: encoder.ContentTopic(), Wire: wire})
}

type subscription struct {
	topic   string
	decoder pairing.Decoder
	ch      chan crypto.PayloadV2
	peer    *Peer
	closed  uint32
}

func (s *subscription) Messages() <-chan crypto.PayloadV2 { return s.ch }

func (s *subscription) Stop() {
	if !atomic.CompareAndSwapUint32(&s.closed, 0, 1) {
		return
	}
	s.peer.mu.Lock()
	list := s.peer.subs[s.topic]
	for i, sub := range list {
		if sub == s {
			s.peer.subs[s.topic] = append(list[:i], list[i+1:]...)
			break
		}
	}
	s.peer.mu.Unlock()
	close(s.ch)
}

// Subscribe implements pairing.Receiver.
func (p *Peer) Subscribe(ctx context.Context, decoder pairing.Decoder) (pairing.Subscription, error) {
	sub := &subscription{
		topic:   decoder.ContentTopic(),
		decoder: decoder,
		ch:      make(chan crypto.PayloadV2, 32),
		peer:    p,
	}
	p.mu.Lock()
	p.subs[sub.topic] = append(p.subs[sub.topic], sub)
	p.mu.Unlock()

	go func() {
		<-ctx.Done()
		sub.Stop()
	}()

	return sub, nil
}
