package profiling

import "github.com/ARM-software/armnn-sub019/internal/wire"

// LocalPacketHandler lets in-process code observe outbound packets
// without a network hop. The Service delivers the control packets it
// commits (stream metadata, counter directory); periodic capture packets
// and timeline packets are not delivered.
type LocalPacketHandler interface {
	OnPacket(frame wire.Frame)
}

// LocalPacketHandlerFunc adapts a plain function to LocalPacketHandler.
type LocalPacketHandlerFunc func(wire.Frame)

func (f LocalPacketHandlerFunc) OnPacket(frame wire.Frame) { f(frame) }

// notifyLocalHandlers fans frame out to every configured handler. Panics
// from a misbehaving handler are not recovered: a LocalPacketHandler is
// in-process test/debug code, not untrusted input.
func notifyLocalHandlers(handlers []LocalPacketHandler, frame wire.Frame) {
	for _, h := range handlers {
		h.OnPacket(frame)
	}
}
