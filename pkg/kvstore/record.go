package kvstore

// Record is a schemaless record that keeps its key under "id".
type Record map[string]any

// WithID returns a copy of r with "id" set.
func (r Record) WithID(id string) Record {
	out := make(Record, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	out["id"] = id
	return out
}

// ID returns the "id" field, or "" when it is missing or not a string.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}
