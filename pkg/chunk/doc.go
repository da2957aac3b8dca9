// Package chunk splits serialized values into bounded-size chunks and
// reassembles them. Every chunk except the last carries a reserved
// continuation marker suffix, so a reader can discover the next chunk only by
// inspecting the previous one. Payloads containing the marker are rejected
// before any chunk is produced.
package chunk
