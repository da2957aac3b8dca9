// Package extstate stores JSON values of arbitrary size in REAPER's ExtState.
//
// A value is serialized and split into chunks by a chunk.Codec. Chunk i of
// logical key k lives under the ExtState key "k.i"; every chunk except the
// last ends with the continuation marker, so a reader follows the chain until
// it meets a chunk without one. A missing chunk 0 means the key is absent.
//
// ExtState cannot enumerate keys, so each section keeps an index of its
// keys, stored as one more chunked value under IndexKey. Keeping the index in
// step with the items is the caller's job; the kvstore package does it.
//
// A Store assumes a single writer per section. Concurrent sessions can lose
// index updates.
package extstate
