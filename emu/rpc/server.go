package rpc

import (
	"context"
	"errors"
	"image"
	"net"
	"net/http"
	"net/rpc"
	"strconv"
	"sync/atomic"
)

// emuProxy exposes an Emu with the method signatures net/rpc expects.
type emuProxy struct {
	emu    Emu
	paused atomic.Bool
}

func (ep *emuProxy) Reset(_, _ *struct{}) error   { ep.emu.Reset(); return nil }
func (ep *emuProxy) Restart(_, _ *struct{}) error { ep.emu.Restart(); return nil }
func (ep *emuProxy) Stop(_, _ *struct{}) error    { ep.emu.Stop(); return nil }

func (ep *emuProxy) SetPause(pause bool, _ *struct{}) error {
	ep.emu.SetPause(pause)
	ep.paused.Store(pause)
	return nil
}

func (ep *emuProxy) Status(_ *struct{}, reply *Status) error {
	*reply = Status{Frames: ep.emu.Frames(), Paused: ep.paused.Load()}
	return nil
}

func (ep *emuProxy) Screenshot(_ *struct{}, reply *image.RGBA) error {
	*reply = *ep.emu.Screenshot()
	return nil
}

// Server serves RPC requests over HTTP.
type Server struct {
	l    net.Listener
	http *http.Server
}

// NewServer listens on localhost:port (0 picks a free port) and registers emu.
// Call Serve to start handling requests.
func NewServer(port int, emu Emu) (*Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName("emu", &emuProxy{emu: emu}); err != nil {
		return nil, err
	}

	l, err := net.Listen("tcp", "localhost:"+strconv.Itoa(port))
	if err != nil {
		return nil, err
	}

	modRPC.InfoZ("rpc server listening").String("addr", l.Addr().String()).End()
	return &Server{l: l, http: &http.Server{Handler: srv}}, nil
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string { return s.l.Addr().String() }

// Serve handles requests until ctx is done or the server is closed.
func (s *Server) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { s.Close() })
	defer stop()

	err := s.http.Serve(s.l)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Close() error {
	modRPC.DebugZ("closing rpc server").End()
	return s.http.Close()
}
