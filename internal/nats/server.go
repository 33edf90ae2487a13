// Package nats manages the embedded in-process NATS server and JetStream
// storage backing the debug journal. The server never opens network ports;
// everything runs inside the widget process.
package nats

import (
	"errors"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/skisplace/epoxyview/internal/logger"
)

// StartEmbedded starts an embedded NATS server with JetStream file storage
// under dataDir.
func StartEmbedded(dataDir string) (*server.Server, error) {
	logger.Debug("starting embedded NATS server, data dir %s", dataDir)

	opts := &server.Options{
		JetStream:  true,
		StoreDir:   dataDir,
		DontListen: true, // in-process only, no network ports
	}
	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, err
	}

	go ns.Start()
	if !ns.ReadyForConnections(4 * time.Second) {
		return nil, errors.New("nats server failed to start within timeout")
	}
	return ns, nil
}

// ConnectInProcess creates a portless in-process connection to the embedded
// server and a JetStream context on it.
func ConnectInProcess(ns *server.Server) (*nats.Conn, jetstream.JetStream, error) {
	nc, err := nats.Connect("", nats.InProcessServer(ns))
	if err != nil {
		return nil, nil, err
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}
	return nc, js, nil
}

// Shutdown drains the connection and stops the server, bounding each phase
// with a timeout so a wedged stream cannot hang process exit.
func Shutdown(nc *nats.Conn, ns *server.Server) error {
	if nc != nil {
		drainDone := make(chan error, 1)
		go func() { drainDone <- nc.Drain() }()
		select {
		case err := <-drainDone:
			if err != nil {
				logger.Warn("nats drain failed, forcing close: %v", err)
				nc.Close()
			}
		case <-time.After(2 * time.Second):
			logger.Warn("nats drain timed out, forcing close")
			nc.Close()
		}
	}

	if ns != nil {
		ns.Shutdown()
		done := make(chan struct{})
		go func() {
			ns.WaitForShutdown()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			return errors.New("nats server shutdown timed out")
		}
	}
	return nil
}
