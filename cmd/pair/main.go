// Command pair drives one side of a WakuPairing exchange from the command
// line: the responder generates and prints/saves a QR, the initiator scans
// one from a file and dials in.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/waku-org/go-noise-pairing/config"
	"github.com/waku-org/go-noise-pairing/crypto"
	"github.com/waku-org/go-noise-pairing/internal/logging"
	"github.com/waku-org/go-noise-pairing/internal/management"
	"github.com/waku-org/go-noise-pairing/internal/state"
	"github.com/waku-org/go-noise-pairing/pairing"
	"github.com/waku-org/go-noise-pairing/transport/ws"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "config.json", "Path to configuration file (or '-' for stdin)")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	level := logging.ParseLevel(cfg.NormalisedLevel())
	baseLogger := logging.New(level, os.Stdout)
	logger := baseLogger.With(map[string]interface{}{"component": "pair", "role": cfg.Role})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Transport.Kind != "websocket" {
		logger.Error("cmd/pair only supports the websocket transport; memory is library/test-only", nil)
		os.Exit(1)
	}

	sessionState := map[string]interface{}{"state": "starting"}
	attempts := state.NewAttemptTracker(20)
	mgmt, err := management.New(cfg.Management.Bind, func() interface{} {
		return map[string]interface{}{"session": sessionState, "attempts": attempts.GetHistory()}
	}, logger, management.WithACL(cfg.ManagementPrefixes()))
	if err != nil {
		logger.Error("management server failed to start", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	mgmt.Start()
	defer mgmt.Close(ctx)

	staticKey, err := crypto.GenerateKeyPair()
	if err != nil {
		logger.Error("failed to generate static keypair", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	pairingCfg := pairing.Config{
		ApplicationName:    cfg.ApplicationName,
		ApplicationVersion: cfg.ApplicationVersion,
		ShardID:            cfg.ShardID,
		Timeout:            cfg.Timeout.Duration,
		ConfirmAuthCode:    confirmAuthCodeOnTerminal,
		Logger:             logger,
	}

	var result *pairing.Result
	switch cfg.Role {
	case "responder":
		result, err = runResponder(ctx, cfg, pairingCfg, staticKey, logger)
	case "initiator":
		result, err = runInitiator(ctx, cfg, pairingCfg, staticKey)
	default:
		logger.Error("unknown role", map[string]interface{}{"role": cfg.Role})
		os.Exit(1)
	}
	if err != nil {
		attempts.RecordFailure(cfg.Role, err)
		logger.Error("pairing failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	attempts.RecordSuccess(cfg.Role, result.ContentTopic)
	sessionState["state"] = "established"
	sessionState["topic"] = result.ContentTopic
	logger.Info("pairing complete", map[string]interface{}{"authcode": result.Authcode, "topic": result.ContentTopic})

	<-ctx.Done()
}

func runResponder(ctx context.Context, cfg *config.Config, pairingCfg pairing.Config, staticKey crypto.KeyPair, logger *logging.Logger) (*pairing.Result, error) {
	endpoint := ws.NewEndpoint()
	srv := &http.Server{Addr: cfg.Transport.Listen, Handler: endpoint}
	go func() {
		_ = srv.ListenAndServe()
	}()
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	peer, err := ws.Dial(ctx, "ws://"+cfg.Transport.Listen+"/")
	if err != nil {
		return nil, fmt.Errorf("connect to local relay: %w", err)
	}
	defer peer.Close()

	return pairing.RunResponder(ctx, pairing.Transport{Sender: peer, Receiver: peer}, pairingCfg, staticKey, func(qr pairing.QR) {
		writeQR(cfg.QRPath, qr, logger)
	})
}

func runInitiator(ctx context.Context, cfg *config.Config, pairingCfg pairing.Config, staticKey crypto.KeyPair) (*pairing.Result, error) {
	qr, err := readQR(cfg.QRPath)
	if err != nil {
		return nil, fmt.Errorf("read QR: %w", err)
	}
	peer, err := ws.Dial(ctx, "ws://"+cfg.Transport.Endpoint+"/")
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	defer peer.Close()

	return pairing.RunInitiator(ctx, pairing.Transport{Sender: peer, Receiver: peer}, pairingCfg, qr, staticKey)
}

func confirmAuthCodeOnTerminal(code string) bool {
	fmt.Printf("Authcode: %s - confirm match on both devices [y/N]: ", code)
	var answer string
	_, _ = fmt.Scanln(&answer)
	return answer == "y" || answer == "Y"
}

func writeQR(path string, qr pairing.QR, logger *logging.Logger) {
	if path == "" {
		fmt.Println(qr.Serialize())
		return
	}
	if err := os.WriteFile(path, []byte(qr.Serialize()), 0o600); err != nil {
		logger.Error("failed to write QR", map[string]interface{}{"error": err.Error()})
	}
}

func readQR(path string) (pairing.QR, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pairing.QR{}, err
	}
	return pairing.ParseQR(string(data))
}
