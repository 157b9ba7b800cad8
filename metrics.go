package obstack

// NumChunks returns the number of live chunks in the chain.
func (o *Obstack) NumChunks() int {
	n := 0
	for c := o.chunk; c != nil; c = c.prev {
		n++
	}
	return n
}

// ObstackMetrics contains a point-in-time snapshot of an obstack's memory
// footprint.
type ObstackMetrics struct {
	MemoryUsed  int // bytes held in live chunks, headers included
	NumChunks   int // chunks in the chain
	ChunkSize   int // preferred chunk size
	PendingSize int // bytes in the growing object
	Room        int // bytes left in the current chunk
}

// Metrics returns a snapshot of obstack statistics.
func (o *Obstack) Metrics() ObstackMetrics {
	return ObstackMetrics{
		MemoryUsed:  o.MemoryUsed(),
		NumChunks:   o.NumChunks(),
		ChunkSize:   o.chunkSize,
		PendingSize: o.Size(),
		Room:        o.Room(),
	}
}
