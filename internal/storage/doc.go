package storage

// DocStore persists small JSON documents (the active rubric) under a string
// key. The fs implementation is the default; swap in a bucket-backed one for
// multi-node deployments.
type DocStore interface {
	PutJSON(key string, v interface{}) error
	GetJSON(key string, v interface{}) error
	Exists(key string) bool
}
