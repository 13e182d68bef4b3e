// Package dispatch routes inbound framed packets to registered handlers
// keyed by (family, packet id, version), and runs the receive loop that
// reads frames off a connection and dispatches them. The registry
// mirrors the teacher's io_uring completion loop in internal/queue:
// one goroutine owns the connection, processes frames in a loop gated on
// a context, and treats per-frame errors as either fatal (stop the loop)
// or recoverable (log and continue).
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/ARM-software/armnn-sub019/internal/logging"
	"github.com/ARM-software/armnn-sub019/internal/wire"
)

// Key identifies a handler slot: the packet's family, its class (packet
// id within the family), and a wire version. Version lets two
// incompatible encodings of the same packet id coexist during a
// transition; Registry.Version picks which one a given connection speaks.
type Key struct {
	Family  uint8
	Class   uint8
	Version uint32
}

// ErrDuplicateHandler is returned by Register when Key is already bound.
var ErrDuplicateHandler = errors.New("dispatch: handler already registered for key")

// ErrUnknownPacket is returned by Dispatch when no handler matches a
// frame's (family, class) under the active version.
var ErrUnknownPacket = errors.New("dispatch: no handler for packet")

// Handler processes one decoded frame's payload.
type Handler interface {
	Handle(ctx context.Context, payload []byte) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, payload []byte) error

func (f HandlerFunc) Handle(ctx context.Context, payload []byte) error { return f(ctx, payload) }

// Registry maps Keys to Handlers and resolves which version a frame
// should be dispatched as.
type Registry struct {
	handlers map[Key]Handler
	// Version is consulted for every dispatch; NewRegistry sets it to 1.
	Version uint32
}

// NewRegistry returns an empty registry at wire version 1.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[Key]Handler), Version: 1}
}

// Register binds a handler to (family, class) at the registry's current
// Version. Re-registering the same key is an error; callers that need to
// replace a handler must build a new Registry (this mirrors the
// teacher's directory-style "no silent overwrite" registration pattern).
func (r *Registry) Register(family, class uint8, h Handler) error {
	key := Key{Family: family, Class: class, Version: r.Version}
	if _, exists := r.handlers[key]; exists {
		return fmt.Errorf("family=%d class=%d version=%d: %w", family, class, r.Version, ErrDuplicateHandler)
	}
	r.handlers[key] = h
	return nil
}

// SupportedPacketIDs returns the packet id (class) of every handler
// registered at the registry's current Version, in ascending order. Used
// to advertise the connection's capabilities in the stream-metadata
// handshake packet.
func (r *Registry) SupportedPacketIDs() []uint8 {
	ids := make([]uint8, 0, len(r.handlers))
	for key := range r.handlers {
		if key.Version == r.Version {
			ids = append(ids, key.Class)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Dispatch looks up and invokes the handler for h's (family, class) at
// the registry's current Version.
func (r *Registry) Dispatch(ctx context.Context, h wire.Header, payload []byte) error {
	key := Key{Family: h.Family, Class: h.Class, Version: r.Version}
	handler, ok := r.handlers[key]
	if !ok {
		return fmt.Errorf("family=%d class=%d version=%d: %w", h.Family, h.Class, r.Version, ErrUnknownPacket)
	}
	return handler.Handle(ctx, payload)
}

// ReceiveLoop reads frames from r and dispatches them until ctx is
// cancelled (returns ctx.Err()), r reaches io.EOF (returns nil), a read
// fails, or a handler returns an error. ErrUnknownPacket from Dispatch is
// logged and the loop continues: an unsupported packet must not bring
// down the whole connection. Any other handler error ends the loop and is
// returned as is.
func ReceiveLoop(ctx context.Context, r io.Reader, reg *Registry) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		frame, err := wire.ReadFrame(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("dispatch: read frame: %w", err)
		}

		if err := reg.Dispatch(ctx, frame.Header, frame.Payload); err != nil {
			if errors.Is(err, ErrUnknownPacket) {
				logging.Default().WithPacket(frame.Header.Family, frame.Header.Class).Warn("dropping unrecognized packet")
				continue
			}
			return err
		}
	}
}
