// Package ipc implements the primary-to-worker protocol described in
// spec.md §4.7: a length-prefixed, little-endian, tagged-union wire format
// carried over a local Unix-domain socket, ported from ipc.rs's
// IpcCommand/IpcResponse pair (which rides on bincode+interprocess in the
// source project). Go has no ecosystem-standard analogue of bincode in the
// examples pack, so the frame codec here is hand-rolled on
// encoding/binary; see DESIGN.md for that justification.
package ipc
