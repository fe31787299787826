// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package remote serves SPC700 host sessions over websockets. Every text
// message a client sends holds one or more host command lines, and the
// output of those commands is returned in a single text message.
package remote

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/beevik/spc700/host"
	"github.com/gorilla/websocket"
)

// Path is the URL path served by ListenAndServe.
const Path = "/spc700"

var upgrader = websocket.Upgrader{} // use default options

// A Server gives each websocket client its own host session.
type Server struct {
	opts []host.Option
	log  *log.Logger
}

// NewServer creates a server whose clients each get a host created with
// the options 'opts'. Client hosts never have access to the server's file
// system.
func NewServer(logger *log.Logger, opts ...host.Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	opts = append(append([]host.Option{}, opts...), host.WithoutFileAccess())
	return &Server{opts: opts, log: logger}
}

// ListenAndServe accepts clients at Path on the TCP address 'addr'.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.Handle(Path, s)
	s.log.Printf("Started websocket server at %s%s", addr, Path)
	return http.ListenAndServe(addr, mux)
}

// ServeHTTP upgrades the request to a websocket connection and runs a host
// session on it until the client disconnects or quits.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.log.Printf("New client connection from %s", r.RemoteAddr)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Print("websocket upgrade error: ", err)
		return
	}
	defer conn.Close()

	logger := log.New(s.log.Writer(), fmt.Sprintf("[client/%s] ", conn.RemoteAddr()), s.log.Flags())

	h := host.New(s.opts...)
	defer h.Close()

	err = serveSession(conn, h)
	switch {
	case errors.Is(err, host.ErrQuit):
		logger.Printf("Client quit")
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "quit")
		conn.WriteMessage(websocket.CloseMessage, msg)
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
		logger.Printf("Client disconnected")
	default:
		logger.Printf("Closing client connection due to an error: %v", err)
	}
}

func serveSession(conn *websocket.Conn, h *host.Host) error {
	for {
		tp, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if tp != websocket.TextMessage {
			return errors.New("expected text message, got something else")
		}

		var out bytes.Buffer
		var quit error
		for _, line := range strings.Split(string(msg), "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if err := h.Execute(line, &out); err != nil {
				quit = err
				break
			}
		}

		if err := conn.WriteMessage(websocket.TextMessage, out.Bytes()); err != nil {
			return err
		}
		if quit != nil {
			return quit
		}
	}
}
