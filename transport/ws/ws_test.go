package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/waku-org/go-noise-pairing/crypto"
)

type fakeCodec struct{ topic string }

func (c fakeCodec) ContentTopic() string { return c.topic }

func (c fakeCodec) ToWire(payload crypto.PayloadV2) ([]byte, error) {
	return payload.Serialize()
}

func (c fakeCodec) FromWire(data []byte) (crypto.PayloadV2, bool) {
	p, err := crypto.DeserializePayloadV2(data)
	if err != nil {
		return crypto.PayloadV2{}, false
	}
	return p, true
}

func dialTestServer(t *testing.T, srv *httptest.Server) *Peer {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	peer, err := Dial(context.Background(), url)
	require.NoError(t, err)
	return peer
}

func TestWSRelaysBetweenTwoPeers(t *testing.T) {
	endpoint := NewEndpoint()
	srv := httptest.NewServer(endpoint)
	defer srv.Close()

	alice := dialTestServer(t, srv)
	defer alice.Close()
	bob := dialTestServer(t, srv)
	defer bob.Close()

	ctx := context.Background()
	topic := "/app/1/0/proto"
	sub, err := bob.Subscribe(ctx, fakeCodec{topic: topic})
	require.NoError(t, err)
	defer sub.Stop()

	time.Sleep(50 * time.Millisecond)

	payload := crypto.PayloadV2{TransportMessage: []byte("hello over websocket")}
	require.NoError(t, alice.Send(ctx, fakeCodec{topic: topic}, payload))

	select {
	case got := <-sub.Messages():
		require.Equal(t, payload.TransportMessage, got.TransportMessage)
	case <-time.After(2 * time.Second):
		t.Fatal("message never relayed")
	}
}

func TestWSSubscriptionIgnoresOtherTopics(t *testing.T) {
	endpoint := NewEndpoint()
	srv := httptest.NewServer(endpoint)
	defer srv.Close()

	alice := dialTestServer(t, srv)
	defer alice.Close()
	bob := dialTestServer(t, srv)
	defer bob.Close()

	ctx := context.Background()
	sub, err := bob.Subscribe(ctx, fakeCodec{topic: "/app/1/0/proto"})
	require.NoError(t, err)
	defer sub.Stop()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, alice.Send(ctx, fakeCodec{topic: "/other/1/0/proto"}, crypto.PayloadV2{}))

	select {
	case <-sub.Messages():
		t.Fatal("received message on unsubscribed topic")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWSSubscriptionStopClosesChannel(t *testing.T) {
	endpoint := NewEndpoint()
	srv := httptest.NewServer(endpoint)
	defer srv.Close()

	peer := dialTestServer(t, srv)
	defer peer.Close()

	sub, err := peer.Subscribe(context.Background(), fakeCodec{topic: "/app/1/0/proto"})
	require.NoError(t, err)
	sub.Stop()

	_, ok := <-sub.Messages()
	require.False(t, ok)
}
