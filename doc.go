/*
Package stagehand loads, runs, and supervises project sessions: user-created
projects fetched by remote identifier, read from a local file, or supplied
as a raw byte buffer, in one of several legacy container formats.

The Player turns a source into a running, observable, cancellable session
and coordinates pause/resume/stop transitions plus a derived cloud-variable
snapshot. Project execution itself is external: a stage runtime plugs in
through domain.StageFactory, and the Player drives it only through the
narrow domain.Stage contract.

# Concept

A load runs through a fixed pipeline: fetch (remote loads only), format
detection, loader selection, parse, stage instantiation, attach. Each load
owns a cancellation token; starting a new load supersedes the previous
token, so a superseded load can never mutate shared state or fire stale
events. At most one session is attached at a time.

Observers subscribe to the typed event bus. For any single load the
emission order is fixed: load-started, zero or more monotonic progress
values, then session-attached, or an error in its place. Cancelled loads
emit nothing beyond the abort itself.

# Usage

	player := stagehand.New(
		stagehand.WithProjectSource(httpsource.New("https://projects.example.org")),
	)

	player.Bus().SessionAttached.Subscribe(func(s *domain.Session) {
		log.Printf("attached %s", s.SourceID)
	})

	player.LoadByID(context.Background(), "118504448")
	if err := player.Resume(); err != nil {
		log.Fatal(err)
	}

Cloud variables (names carrying the "☁" marker) are rebuilt after attach by
replaying the remote change log; see package cloud. The snapshot is a
best-effort approximation, not a consistent read.
*/
package stagehand
