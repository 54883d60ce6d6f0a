// Package protocol is a thin, explicitly shallow stand-in for the real wire
// protocol (spec §2 item 12): a length-prefixed TCP listener that decodes a
// JSON envelope into an engine.PhysicalPlan, runs it, and writes back a JSON
// response. It exists only so cmd/touchhoused is runnable end to end; the
// production protocol (MessagePack-framed, richer error semantics) is out
// of scope here.
package protocol

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"io"
	"net"

	"github.com/rs/zerolog"

	"github.com/touchhouse/touchhouse/internal/catalog"
	"github.com/touchhouse/touchhouse/internal/engine"
	"github.com/touchhouse/touchhouse/internal/errs"
)

// maxFrameSize bounds a single request/response frame so a malformed length
// prefix can't make the server try to allocate an unbounded buffer.
const maxFrameSize = 64 << 20

// Server listens for length-prefixed JSON requests and dispatches each to
// engine.Execute against a shared catalog (spec §2 item 12).
type Server struct {
	Catalog *catalog.Catalog
	Addr    string
	Log     zerolog.Logger
}

// NewServer builds a Server bound to cat, serving at addr.
func NewServer(cat *catalog.Catalog, addr string, log zerolog.Logger) *Server {
	return &Server{Catalog: cat, Addr: addr, Log: log}
}

// Start listens on s.Addr until ctx is cancelled, accepting and serving
// connections until then.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.Addr)
	if err != nil {
		return errs.Wrap(errs.IoError, err, "listening on %s", s.Addr)
	}

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	s.Log.Info().Str("addr", s.Addr).Msg("listening")

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.Log.Error().Err(err).Msg("accept failed")
			continue
		}
		go s.serveConn(ctx, conn)
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	for {
		frame, err := readFrame(conn)
		if err != nil {
			if err != io.EOF {
				s.Log.Warn().Err(err).Msg("reading request frame")
			}
			return
		}

		var req requestWire
		resp := s.handle(ctx, frame, &req)

		out, err := json.Marshal(resp)
		if err != nil {
			s.Log.Error().Err(err).Msg("marshaling response")
			return
		}
		if err := writeFrame(conn, out); err != nil {
			s.Log.Warn().Err(err).Msg("writing response frame")
			return
		}
	}
}

func (s *Server) handle(ctx context.Context, frame []byte, req *requestWire) responseWire {
	if err := json.Unmarshal(frame, req); err != nil {
		return errorResponse(errs.Wrap(errs.Internal, err, "decoding request"))
	}
	plan, err := decode(*req)
	if err != nil {
		return errorResponse(err)
	}
	out, err := engine.Execute(ctx, s.Catalog, plan)
	if err != nil {
		// InternalInvariant means an on-disk structure the engine trusted
		// turned out to violate its own invariants (spec line 216:
		// "InternalInvariant is fatal to the process") — continuing to
		// serve requests against state that broke an invariant risks
		// corrupting further writes, so the process terminates rather than
		// treating this like an ordinary client-facing error.
		if errs.KindOf(err) == errs.InternalInvariant {
			s.Log.Fatal().Err(err).Msg("internal invariant violated, terminating")
		}
		return errorResponse(err)
	}
	return responseWire{Output: encodeOutput(out)}
}

func errorResponse(err error) responseWire {
	return responseWire{Error: err.Error(), Kind: errs.KindOf(err).String()}
}

func readFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > maxFrameSize {
		return nil, errs.New(errs.Internal, "request frame of %d bytes exceeds maximum %d", n, maxFrameSize)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeFrame(w io.Writer, payload []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}
