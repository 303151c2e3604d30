// Copyright 2021 lesismal. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nbproxy

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/lesismal/nbio/logging"
)

// Dialer is a blocking driver: it connects to the proxy, pumps a
// Negotiator's output and input over the connection until the handshake
// reaches a terminal state, and returns the tunnel. The zero value is
// not usable; ProxyAddr is required.
type Dialer struct {
	// ProxyNetwork is "tcp" if empty.
	ProxyNetwork string
	ProxyAddr    string

	Username   string
	Password   string
	Interactor Interactor

	// Timeout bounds connecting to the proxy and the whole handshake.
	// The negotiator itself carries no deadline; zero means none here
	// either.
	Timeout time.Duration

	// NewNegotiator selects the proxy protocol; NewHTTPNegotiator is
	// used if nil.
	NewNegotiator func(settings *Settings) Negotiator

	// DialProxy overrides how the proxy connection is made.
	DialProxy func(network, addr string) (net.Conn, error)
}

//go:norace
func (d *Dialer) dialProxy() (net.Conn, error) {
	network := d.ProxyNetwork
	if network == "" {
		network = "tcp"
	}
	if d.DialProxy != nil {
		return d.DialProxy(network, d.ProxyAddr)
	}
	return net.DialTimeout(network, d.ProxyAddr, d.Timeout)
}

// Dial negotiates a tunnel to addr ("host:port") through the proxy.
// network is accepted for compatibility with dialer interfaces and must
// be a tcp variant.
//
//go:norace
func (d *Dialer) Dial(network, addr string) (net.Conn, error) {
	switch network {
	case "tcp", "tcp4", "tcp6":
	default:
		return nil, fmt.Errorf("nbproxy: unsupported network %q", network)
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("nbproxy: invalid port in address %q", addr)
	}

	conn, err := d.dialProxy()
	if err != nil {
		return nil, err
	}

	settings := &Settings{
		RemoteHost: host,
		RemotePort: port,
		Username:   d.Username,
		Password:   d.Password,
		Interactor: d.Interactor,
	}
	newNegotiator := d.NewNegotiator
	if newNegotiator == nil {
		newNegotiator = func(settings *Settings) Negotiator {
			return NewHTTPNegotiator(settings)
		}
	}
	neg := newNegotiator(settings)

	pending, err := d.drive(conn, neg)
	neg.Close()
	if err != nil {
		conn.Close()
		return nil, err
	}
	logging.Debug("nbproxy: %v tunnel to %v established via %v", neg.Type(), addr, d.ProxyAddr)
	return newConn(conn, pending), nil
}

// drive runs the negotiator loop on conn and returns any input bytes
// that arrived beyond the end of the handshake.
//
//go:norace
func (d *Dialer) drive(conn net.Conn, neg Negotiator) ([]byte, error) {
	if d.Timeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(d.Timeout)); err != nil {
			return nil, err
		}
		defer conn.SetDeadline(time.Time{}) //nolint:errcheck
	}

	in, out := &Bufchain{}, &Bufchain{}
	defer in.Release()
	defer out.Release()

	buf := make([]byte, 4096)
	for {
		err := neg.Step(in, out)
		if b := out.Pop(); len(b) > 0 {
			if _, werr := conn.Write(b); werr != nil {
				return nil, werr
			}
		}
		if err != nil {
			logging.Debug("nbproxy: %v handshake with %v failed: %v", neg.Type(), d.ProxyAddr, err)
			return nil, err
		}
		if neg.Aborted() {
			return nil, ErrHandshakeAborted
		}
		if neg.Done() {
			break
		}
		n, rerr := conn.Read(buf)
		if n > 0 {
			in.Write(buf[:n])
		}
		if rerr != nil {
			return nil, rerr
		}
	}

	var pending []byte
	if b := in.Pop(); len(b) > 0 {
		pending = append([]byte(nil), b...)
	}
	return pending, nil
}
