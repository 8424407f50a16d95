// Package pairing implements the WakuPairing device-pairing choreography:
// QR construction and scanning, the 3-message handshake driven through
// crypto.Handshake, static-key commitment opening, authcode confirmation,
// and the wall-clock timeout race against the transport.
package pairing

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/waku-org/go-noise-pairing/crypto"
	"github.com/waku-org/go-noise-pairing/internal/logging"
	"github.com/waku-org/go-noise-pairing/internal/state"
)

// Config parameterizes a pairing attempt. ConfirmAuthCode is the
// synchronous yes/no human-interface contract; only the programmatic
// contract is implemented here, the actual prompt is up to the caller.
type Config struct {
	ApplicationName    string
	ApplicationVersion string
	ShardID            string
	Timeout            time.Duration
	ConfirmAuthCode    func(code string) bool
	Logger             *logging.Logger
}

func (c Config) contentTopic() string {
	return ContentTopic(c.ApplicationName, c.ApplicationVersion, c.ShardID)
}

func (c Config) logger() *logging.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logging.New(logging.LevelInfo, nil)
}

// Result is what a completed pairing attempt hands back: the secure
// channel material and the content topic the post-handshake codec should
// keep using.
type Result struct {
	Handshake    *crypto.HandshakeResult
	ContentTopic string
	Authcode     string
}

func newSessionID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// RunResponder plays Bob: it generates the pre-message ephemeral and static
// commitment, hands the QR the initiator must scan to displayQR, then blocks
// driving the handshake to completion (or failure) against transport.
func RunResponder(ctx context.Context, transport Transport, cfg Config, staticKeyPair crypto.KeyPair, displayQR func(QR)) (*Result, error) {
	log := cfg.logger().With(map[string]interface{}{"role": "responder", "session": newSessionID()})

	preEphemeral, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("pairing: generate pre-ephemeral: %w", err)
	}
	r, err := crypto.RandomBytes32()
	if err != nil {
		return nil, fmt.Errorf("pairing: generate commitment randomness: %w", err)
	}
	committed := crypto.Commit(staticKeyPair.Public, r)

	qr := QR{
		ApplicationName:    cfg.ApplicationName,
		ApplicationVersion: cfg.ApplicationVersion,
		ShardID:            cfg.ShardID,
		EphemeralPublicKey: preEphemeral.Public,
		CommittedStaticKey: committed,
	}
	if displayQR != nil {
		displayQR(qr)
	}

	hs, err := crypto.NewHandshake(crypto.HandshakeConfig{
		Pattern:           crypto.PatternWakuPairing,
		Initiator:         false,
		StaticKeyPair:     &staticKeyPair,
		LocalPreEphemeral: &preEphemeral,
	})
	if err != nil {
		return nil, fmt.Errorf("pairing: init handshake: %w", err)
	}

	sess := state.NewPairingTimers(newSessionID(), "responder", cfg.Timeout)
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	sess.Start(cancel)
	defer sess.Stop()

	topic := cfg.contentTopic()
	decoder := newPayloadCodec(topic)
	encoder := newPayloadCodec(topic)

	sub, err := transport.Receiver.Subscribe(ctx, decoder)
	if err != nil {
		return nil, fmt.Errorf("pairing: subscribe: %w", err)
	}
	defer sub.Stop()

	if displayQR != nil {
		displayQR(qr)
	}
	sess.SetState(state.StateQRExchanged)

	// Message 1: initiator -> responder, nametag pre-shared via the QR.
	nametag0 := qrMessageNametag(qr)
	payload1, err := awaitPayload(ctx, sub, nametag0, log)
	if err != nil {
		return nil, err
	}
	step1, err := hs.Step(crypto.StepInput{ReadPayload: payload1, MessageNametag: nametag0})
	if err != nil {
		return nil, fmt.Errorf("pairing: message 1: %w", err)
	}
	var initiatorCommitted [32]byte
	copy(initiatorCommitted[:], step1.PlaintextRead)
	sess.SetState(state.StateMessage2Received)

	// Message 2: responder -> initiator, carries r, the opener for the
	// commitment the initiator already has from the QR.
	nametag1 := hs.MessageNametagSnapshot()
	step2, err := hs.Step(crypto.StepInput{TransportMessage: r[:], MessageNametag: nametag1})
	if err != nil {
		return nil, fmt.Errorf("pairing: message 2: %w", err)
	}
	if err := sendPayload(ctx, transport, encoder, *step2.Payload); err != nil {
		return nil, err
	}
	sess.SetState(state.StateMessage3Sent)

	code, err := hs.Authcode()
	if err != nil {
		return nil, fmt.Errorf("pairing: authcode: %w", err)
	}
	sess.SetState(state.StateAuthCodePending)
	if cfg.ConfirmAuthCode == nil || !cfg.ConfirmAuthCode(code) {
		sess.SetState(state.StateAborted)
		return nil, ErrAuthcodeRejected
	}

	// Message 3: initiator -> responder, carries s, the opener for the
	// commitment the initiator sent in message 1.
	nametag2 := hs.MessageNametagSnapshot()
	payload3, err := awaitPayload(ctx, sub, nametag2, log)
	if err != nil {
		return nil, err
	}
	step3, err := hs.Step(crypto.StepInput{ReadPayload: payload3, MessageNametag: nametag2})
	if err != nil {
		return nil, fmt.Errorf("pairing: message 3: %w", err)
	}

	remoteStatic, ok := hs.RemoteStatic()
	if !ok {
		return nil, errors.New("pairing: remote static key never revealed")
	}
	var opener [32]byte
	copy(opener[:], step3.PlaintextRead)
	if crypto.Commit(remoteStatic, opener) != initiatorCommitted {
		sess.SetState(state.StateAborted)
		log.Warn("commitment mismatch", map[string]interface{}{"message": 3})
		return nil, ErrCommitmentMismatch
	}

	result, err := hs.Finalize()
	if err != nil {
		return nil, fmt.Errorf("pairing: finalize: %w", err)
	}
	sess.SetState(state.StateEstablished)
	log.Info("pairing established", map[string]interface{}{"topic": topic})

	return &Result{Handshake: result, ContentTopic: topic, Authcode: code}, nil
}

// RunInitiator plays Alice: it scans a responder's QR, generates its own
// static commitment, and drives the same 3-message exchange.
func RunInitiator(ctx context.Context, transport Transport, cfg Config, qr QR, staticKeyPair crypto.KeyPair) (*Result, error) {
	log := cfg.logger().With(map[string]interface{}{"role": "initiator", "session": newSessionID()})

	s, err := crypto.RandomBytes32()
	if err != nil {
		return nil, fmt.Errorf("pairing: generate commitment randomness: %w", err)
	}
	committed := crypto.Commit(staticKeyPair.Public, s)
	remoteEphemeral := qr.EphemeralPublicKey

	hs, err := crypto.NewHandshake(crypto.HandshakeConfig{
		Pattern:            crypto.PatternWakuPairing,
		Initiator:          true,
		StaticKeyPair:      &staticKeyPair,
		RemotePreEphemeral: &remoteEphemeral,
	})
	if err != nil {
		return nil, fmt.Errorf("pairing: init handshake: %w", err)
	}

	sess := state.NewPairingTimers(newSessionID(), "initiator", cfg.Timeout)
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	sess.Start(cancel)
	defer sess.Stop()

	topic := ContentTopic(qr.ApplicationName, qr.ApplicationVersion, qr.ShardID)
	decoder := newPayloadCodec(topic)
	encoder := newPayloadCodec(topic)

	sub, err := transport.Receiver.Subscribe(ctx, decoder)
	if err != nil {
		return nil, fmt.Errorf("pairing: subscribe: %w", err)
	}
	defer sub.Stop()

	// Message 1: initiator -> responder, carries our own commitment.
	nametag0 := qrMessageNametag(qr)
	step1, err := hs.Step(crypto.StepInput{TransportMessage: committed[:], MessageNametag: nametag0})
	if err != nil {
		return nil, fmt.Errorf("pairing: message 1: %w", err)
	}
	if err := sendPayload(ctx, transport, encoder, *step1.Payload); err != nil {
		return nil, err
	}
	sess.SetState(state.StateMessage1Sent)

	// Message 2: responder -> initiator, carries the opener for
	// qr.CommittedStaticKey.
	nametag1 := hs.MessageNametagSnapshot()
	payload2, err := awaitPayload(ctx, sub, nametag1, log)
	if err != nil {
		return nil, err
	}
	step2, err := hs.Step(crypto.StepInput{ReadPayload: payload2, MessageNametag: nametag1})
	if err != nil {
		return nil, fmt.Errorf("pairing: message 2: %w", err)
	}
	sess.SetState(state.StateMessage2Received)

	remoteStatic, ok := hs.RemoteStatic()
	if !ok {
		return nil, errors.New("pairing: remote static key never revealed")
	}
	var opener [32]byte
	copy(opener[:], step2.PlaintextRead)
	if crypto.Commit(remoteStatic, opener) != qr.CommittedStaticKey {
		sess.SetState(state.StateAborted)
		log.Warn("commitment mismatch", map[string]interface{}{"message": 2})
		return nil, ErrCommitmentMismatch
	}

	code, err := hs.Authcode()
	if err != nil {
		return nil, fmt.Errorf("pairing: authcode: %w", err)
	}
	sess.SetState(state.StateAuthCodePending)
	if cfg.ConfirmAuthCode == nil || !cfg.ConfirmAuthCode(code) {
		sess.SetState(state.StateAborted)
		return nil, ErrAuthcodeRejected
	}

	// Message 3: initiator -> responder, carries the opener for our own
	// commitment sent in message 1.
	nametag2 := hs.MessageNametagSnapshot()
	step3, err := hs.Step(crypto.StepInput{TransportMessage: s[:], MessageNametag: nametag2})
	if err != nil {
		return nil, fmt.Errorf("pairing: message 3: %w", err)
	}
	if err := sendPayload(ctx, transport, encoder, *step3.Payload); err != nil {
		return nil, err
	}
	sess.SetState(state.StateMessage3Sent)

	result, err := hs.Finalize()
	if err != nil {
		return nil, fmt.Errorf("pairing: finalize: %w", err)
	}
	sess.SetState(state.StateEstablished)
	log.Info("pairing established", map[string]interface{}{"topic": topic})

	return &Result{Handshake: result, ContentTopic: topic, Authcode: code}, nil
}

func sendPayload(ctx context.Context, transport Transport, encoder Encoder, payload crypto.PayloadV2) error {
	if err := transport.Sender.Send(ctx, encoder, payload); err != nil {
		return fmt.Errorf("pairing: send: %w", err)
	}
	return nil
}

// awaitPayload pulls messages off the subscription until one bearing the
// expected nametag arrives, discarding anything else, or until ctx is done,
// in which case it reports ErrPairingTimeout.
func awaitPayload(ctx context.Context, sub Subscription, expected [16]byte, log *logging.Logger) (*crypto.PayloadV2, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ErrPairingTimeout
		case payload, ok := <-sub.Messages():
			if !ok {
				return nil, ErrPairingTimeout
			}
			if payload.MessageNametag != expected {
				log.Debug("discarding message with unexpected nametag", nil)
				continue
			}
			p := payload
			return &p, nil
		}
	}
}
