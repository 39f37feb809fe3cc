package storage

// WALWriter adapts a Store to wal.PageWriter without creating an import
// cycle. (wal package must not import storage)
type WALWriter struct {
	S Store
}

func NewWALWriter(s Store) *WALWriter {
	return &WALWriter{S: s}
}

func (w *WALWriter) WritePage(pageID int64, pageBytes []byte) error {
	if w == nil || w.S == nil {
		return nil
	}
	return w.S.WritePage(PageID(pageID), pageBytes)
}
