package core

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"nbclient/internal/metrics"
	"nbclient/util"
)

// EchoMode accepts inbound TCP connections and writes every byte back
// to its sender.  With KeepOpen=true it serves connections concurrently
// until ctx ends; otherwise it serves one connection and returns.
type EchoMode struct {
	Address  string // ":port"
	KeepOpen bool
	Logger   *util.Logger
	Metrics  *metrics.Collector
	Stats    bool

	// Stderr receives the metrics summary; defaults to os.Stderr.
	Stderr io.Writer

	// ready, if set, receives the bound address once listening.
	ready chan<- net.Addr
}

func (m *EchoMode) stderr() io.Writer {
	if m.Stderr != nil {
		return m.Stderr
	}
	return os.Stderr
}

// Run listens on Address and echoes until done.
func (m *EchoMode) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", m.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", m.Address, err)
	}
	defer ln.Close()

	m.Logger.Info("echo peer listening on %s", ln.Addr())
	if m.ready != nil {
		m.ready <- ln.Addr()
	}

	// Shut the listener down when the context expires.
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	var wg sync.WaitGroup
	defer func() {
		wg.Wait()
		if m.Stats {
			fmt.Fprintln(m.stderr(), m.Metrics.JSON())
		}
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("accept: %w", err)
			}
		}

		if !m.KeepOpen {
			return m.serveConn(ctx, conn)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.serveConn(ctx, conn) //nolint:errcheck
		}()
	}
}

func (m *EchoMode) serveConn(ctx context.Context, conn net.Conn) error {
	defer conn.Close()

	peer := conn.RemoteAddr().String()
	m.Logger.Verbose("connection from %s", peer)
	m.Metrics.ConnectionOpened()
	defer m.Metrics.ConnectionClosed()

	n, err := util.Echo(ctx, conn, func(n int) {
		m.Metrics.ReadCompleted(n)
		m.Metrics.WriteCompleted(n)
	})
	if err != nil {
		m.Metrics.RecordError(err.Error())
		m.Logger.Warn("echo %s: %v", peer, err)
		return fmt.Errorf("echo %s: %w", peer, err)
	}
	m.Logger.Verbose("%s closed after %d bytes", peer, n)
	return nil
}
