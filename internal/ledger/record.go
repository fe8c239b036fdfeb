// Package ledger defines the in-memory transaction record that tangle-index
// persists and indexes. Field widths are compile-time constants and the
// record stores each field in a fixed-size byte array (spec.md §9, "Raw
// buffers"). The setters still accept byte slices, so they check the width
// at run time and return InvalidInput on a mismatch.
package ledger

import (
	"github.com/biilabs/tangle-index/internal/storeerr"
)

// Field widths, in bytes, of the flex-trit encoded values this system treats
// as opaque. These mirror the 243-trit hash width and the signature/message
// fragment width used throughout the IOTA reference implementation.
const (
	HashLen    = 48   // FLEX_TRIT_SIZE_243
	BundleLen  = HashLen
	AddressLen = HashLen
	TrunkLen   = HashLen
	BranchLen  = HashLen
	MessageLen = 1312 // FLEX_TRIT_SIZE_6561 (signature/message fragment)
)

// Hash is a fixed-width, opaque 243-trit hash: a transaction hash, a bundle
// hash, an address, or an approvee (trunk/branch) reference. The storage
// layer never interprets its contents.
type Hash [HashLen]byte

// Message is a fixed-width opaque signature/message fragment.
type Message [MessageLen]byte

// Record is the in-memory value object for one ledger transaction. All
// eight fields are immutable once the record has been submitted to the
// write path (spec.md §3, invariant I4); nothing here prevents a caller
// from mutating a record before that point, since the core only owns rows
// once they are written.
type Record struct {
	bundle    Hash
	address   Hash
	hash      Hash
	message   Message
	value     int64
	timestamp int64
	trunk     Hash
	branch    Hash
}

// New builds an empty Record. Every field must be populated through the
// width-checked setters below before the record is handed to the write
// path; an all-zero record is a valid but meaningless value.
func New() *Record {
	return &Record{}
}

// Bundle returns the bundle hash bytes.
func (r *Record) Bundle() []byte { return r.bundle[:] }

// SetBundle validates and copies a bundle hash into the record.
func (r *Record) SetBundle(b []byte) error { return setField(r, (*Record).Bundle, b, BundleLen) }

// Address returns the address bytes.
func (r *Record) Address() []byte { return r.address[:] }

// SetAddress validates and copies an address into the record.
func (r *Record) SetAddress(b []byte) error { return setField(r, (*Record).Address, b, AddressLen) }

// TransactionHash returns the transaction's own hash bytes.
func (r *Record) TransactionHash() []byte { return r.hash[:] }

// SetTransactionHash validates and copies the transaction hash into the record.
func (r *Record) SetTransactionHash(b []byte) error { return setField(r, (*Record).TransactionHash, b, HashLen) }

// Message returns the message/signature fragment bytes.
func (r *Record) Message() []byte { return r.message[:] }

// SetMessage validates and copies the message fragment into the record.
func (r *Record) SetMessage(b []byte) error { return setField(r, (*Record).Message, b, MessageLen) }

// Trunk returns the trunk (first approvee) hash bytes.
func (r *Record) Trunk() []byte { return r.trunk[:] }

// SetTrunk validates and copies the trunk hash into the record.
func (r *Record) SetTrunk(b []byte) error { return setField(r, (*Record).Trunk, b, TrunkLen) }

// Branch returns the branch (second approvee) hash bytes.
func (r *Record) Branch() []byte { return r.branch[:] }

// SetBranch validates and copies the branch hash into the record.
func (r *Record) SetBranch(b []byte) error { return setField(r, (*Record).Branch, b, BranchLen) }

// Value returns the transferred value. No width check applies to scalar
// fields (spec.md §4.1).
func (r *Record) Value() int64 { return r.value }

// SetValue sets the transferred value.
func (r *Record) SetValue(v int64) error {
	if r == nil {
		return storeerr.NewNullArgument("record")
	}
	r.value = v
	return nil
}

// Timestamp returns the transaction's attachment timestamp.
func (r *Record) Timestamp() int64 { return r.timestamp }

// SetTimestamp sets the attachment timestamp.
func (r *Record) SetTimestamp(ts int64) error {
	if r == nil {
		return storeerr.NewNullArgument("record")
	}
	r.timestamp = ts
	return nil
}

// HashValue returns the transaction's own hash as a Hash value, for use as
// a map/set key or for comparison against HashQueue contents.
func (r *Record) HashValue() Hash { return r.hash }

// BundleHash returns the bundle field as a Hash value, for use as a map/set key.
func (r *Record) BundleHash() Hash { return r.bundle }

// AddressHash returns the address field as a Hash value.
func (r *Record) AddressHash() Hash { return r.address }

// TrunkHash returns the trunk field as a Hash value.
func (r *Record) TrunkHash() Hash { return r.trunk }

// BranchHash returns the branch field as a Hash value.
func (r *Record) BranchHash() Hash { return r.branch }

// setField copies src into the field that the getter field returns, after
// validating both the record and the source slice are present and that src
// is exactly the declared width. field is only called once r is non-nil.
// Every mutator on Record funnels through here so the InvalidInput/
// NullArgument rules in spec.md §4.1 are enforced in exactly one place.
func setField(r *Record, field func(*Record) []byte, src []byte, width int) error {
	if r == nil || src == nil {
		return storeerr.NewNullArgument("record or field value")
	}
	if len(src) != width {
		return storeerr.NewInvalidInput("field width", width, len(src))
	}
	copy(field(r), src)
	return nil
}
