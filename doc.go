// Package folio is the composition root for the folio library.
//
// Folio is a personal research-library manager core: a single versioned
// Document holding articles, books, notes and shelves, persisted locally
// and mirrored to a remote object store through an encrypted sync protocol.
//
// Design:
//
//   - **Single aggregate**: all user data lives in one Document; every
//     mutation is load -> mutate -> save, strictly sequential.
//   - **Read-repair, never reject**: older persisted documents are
//     backfilled on load; a schema version bump migrates forward and resets
//     the diagnostic log buffer.
//   - **Encrypted sync**: AES-256-GCM with a PBKDF2-derived key from a
//     locally held secret; full-document replace, last-write-wins.
//   - **Explicit lifecycle**: the service is an injected instance with a
//     subscription interface, not a module-level singleton with a global
//     event bus.
//
// Usage:
//
//	svc, err := folio.New("~/.folio",
//		folio.WithLogger(logger),
//	)
//
//	doc, err := svc.AddArticle(ctx, core.Article{Title: "Attention Is All You Need"})
package folio
