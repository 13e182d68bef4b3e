// Package timelinewire encodes timeline trace records (entities, event
// classes, events, labels, and relationships between them) and drives
// them through the shared buffer pool with the retry discipline described
// for timeline reporting: a record that hits buffer exhaustion is retried
// exactly once, while the one-shot directory package sent on activation
// is not retried at all.
package timelinewire

import (
	"github.com/ARM-software/armnn-sub019/internal/guid"
	"github.com/ARM-software/armnn-sub019/internal/wire"
)

// Kind identifies which of the five timeline record shapes a Record
// holds.
type Kind int

const (
	KindEntity Kind = iota
	KindEventClass
	KindEvent
	KindLabel
	KindRelationship
)

// RelationshipKind enumerates the relationship types a Relationship
// record can express, mirroring the timeline decl's link taxonomy.
type RelationshipKind uint32

const (
	RelationRetention RelationshipKind = iota
	RelationExecutionLink
	RelationDataLink
	RelationLabelLink
)

// Record is a tagged union over the five timeline wire shapes. Only the
// fields relevant to Kind are populated; Encode dispatches on Kind.
type Record struct {
	Kind Kind
	GUID guid.Guid

	// KindEventClass
	NameGUID guid.Guid

	// KindEvent
	TimestampUs uint64
	ThreadID    uint64

	// KindLabel
	Value string

	// KindRelationship
	RelationshipKind RelationshipKind
	HeadGUID         guid.Guid
	TailGUID         guid.Guid
	AttributeGUID    guid.Guid
}

// Packet class IDs within family 1 (timeline), one per record kind plus
// the directory package itself.
const (
	FamilyTimeline = 1

	ClassDirectory    = 0
	ClassEntity       = 1
	ClassEventClass   = 2
	ClassEvent        = 3
	ClassLabel        = 4
	ClassRelationship = 5
)

// Encode serializes rec's payload (header.Class selects which wire shape
// it is, so the payload carries no kind tag of its own).
func Encode(rec Record) []byte {
	switch rec.Kind {
	case KindEntity:
		return wire.PutUint64(nil, uint64(rec.GUID))
	case KindEventClass:
		buf := wire.PutUint64(nil, uint64(rec.GUID))
		return wire.PutUint64(buf, uint64(rec.NameGUID))
	case KindEvent:
		buf := wire.PutUint64(nil, uint64(rec.GUID))
		buf = wire.PutUint64(buf, rec.TimestampUs)
		return wire.PutUint64(buf, rec.ThreadID)
	case KindLabel:
		buf := wire.PutUint64(nil, uint64(rec.GUID))
		return wire.PutString(buf, rec.Value)
	case KindRelationship:
		buf := wire.PutUint32(nil, uint32(rec.RelationshipKind))
		buf = wire.PutUint64(buf, uint64(rec.GUID))
		buf = wire.PutUint64(buf, uint64(rec.HeadGUID))
		buf = wire.PutUint64(buf, uint64(rec.TailGUID))
		return wire.PutUint64(buf, uint64(rec.AttributeGUID))
	default:
		return nil
	}
}

// Class returns the packet class for rec's Kind.
func (r Record) Class() uint8 {
	switch r.Kind {
	case KindEntity:
		return ClassEntity
	case KindEventClass:
		return ClassEventClass
	case KindEvent:
		return ClassEvent
	case KindLabel:
		return ClassLabel
	case KindRelationship:
		return ClassRelationship
	default:
		return ClassDirectory
	}
}
