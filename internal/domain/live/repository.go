package live

// Subscription is a disposable live listener handle. Close never waits for
// an in-flight handler and is safe to call more than once.
type Subscription interface {
	Close()
}

// Feed delivers live snapshots per match identifier. Handlers are never
// invoked from inside Subscribe or Close.
type Feed interface {
	Subscribe(matchID string, handler Handler) (Subscription, error)
}

// SnapshotReader exposes the latest retained snapshot for a match.
type SnapshotReader interface {
	Latest(matchID string) (Snapshot, bool)
}
