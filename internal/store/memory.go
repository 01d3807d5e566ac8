package store

// MemoryStore keeps collections in memory. It backs dry runs and tests.
type MemoryStore struct {
	*snapshotStore
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshotStore: &snapshotStore{b: &memoryBackend{blobs: map[string][]byte{}}}}
}

type memoryBackend struct {
	blobs map[string][]byte
}

func (m *memoryBackend) read(name string) ([]byte, error) {
	data, ok := m.blobs[name]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

func (m *memoryBackend) write(name string, data []byte) error {
	m.blobs[name] = append([]byte(nil), data...)
	return nil
}

func (m *memoryBackend) clear() error {
	clear(m.blobs)
	return nil
}

func (m *memoryBackend) close() error { return nil }
