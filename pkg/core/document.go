// Package core defines the folio domain model and the service that
// operates on it. The central entity is the Document: a single versioned
// aggregate holding every user-owned collection (articles, books, notes,
// shelves, diagnostics, usage telemetry). Exactly one Document exists per
// profile; storage adapters persist it as a whole.
package core

import "time"

// SchemaVersion is the schema version written by this build.
// A stored Document with a different version is migrated forward on load.
const SchemaVersion = "2.4.0"

// QueueShelfID is the reserved reading-queue shelf. It always exists and
// cannot be deleted.
const QueueShelfID = "queue"

const (
	// LogCapacity bounds the diagnostic log buffer (most recent first).
	LogCapacity = 100
	// UsageCapacity bounds the usage telemetry list (most recent first).
	UsageCapacity = 200
)

// Source identifies how an article entered the library.
type Source string

const (
	SourceManual  Source = "manual"
	SourceFeed    Source = "feed"
	SourceProfile Source = "profile"
)

// Rating sentinel values. Anything in 1..10 is a user rating.
const (
	RatingUntriaged = 0
	RatingDismissed = -1
	RatingMax       = 10
)

// Article is a tracked paper.
//
// References holds titles, not ids; they are resolved against the article
// collection by ResolveReference, which is approximate by design.
type Article struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Authors          []string  `json:"authors,omitempty"`
	Abstract         string    `json:"abstract,omitempty"`
	Year             int       `json:"year,omitempty"`
	Published        string    `json:"published,omitempty"`
	Source           Source    `json:"source"`
	Rating           int       `json:"rating"`
	Notes            string    `json:"notes,omitempty"`
	Tags             []string  `json:"tags,omitempty"`
	ShelfIDs         []string  `json:"shelfIds,omitempty"`
	NoteIDs          []string  `json:"noteIds,omitempty"`
	ReadSeconds      int       `json:"readSeconds,omitempty"`
	References       []string  `json:"references,omitempty"`
	GroundingSources []string  `json:"groundingSources,omitempty"`
	AddedAt          time.Time `json:"addedAt"`
}

// Book is a tracked book. Unlike articles, books carry no triage rating;
// they have marketplace fields instead.
type Book struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Authors  []string  `json:"authors,omitempty"`
	Year     int       `json:"year,omitempty"`
	Price    string    `json:"price,omitempty"`
	StoreURL string    `json:"storeUrl,omitempty"`
	Tags     []string  `json:"tags,omitempty"`
	ShelfIDs []string  `json:"shelfIds,omitempty"`
	AddedAt  time.Time `json:"addedAt"`
}

// Note is a free-text annotation. Note.ArticleIDs and Article.NoteIDs are
// kept symmetric by the link/unlink operations.
type Note struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	UpdatedAt  time.Time `json:"updatedAt"`
	ArticleIDs []string  `json:"articleIds,omitempty"`
}

// Shelf is a user-defined named collection with a display color.
type Shelf struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Feed is a monitored source URL. Feeds are persisted outside the Document.
type Feed struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	URL    string `json:"url"`
	Active bool   `json:"active"`
}

// Severity levels for diagnostic log entries.
type Severity string

const (
	SeverityDebug Severity = "debug"
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// LogEntry is one diagnostic record in the capped log buffer.
type LogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Severity  Severity       `json:"severity"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
}

// UsageEvent records one external model call.
type UsageEvent struct {
	Timestamp    time.Time `json:"timestamp"`
	Feature      string    `json:"feature"`
	Model        string    `json:"model"`
	InputTokens  int       `json:"inputTokens"`
	OutputTokens int       `json:"outputTokens"`
	LatencyMS    int64     `json:"latencyMs"`
	Success      bool      `json:"success"`
}

// Bias steers recommendation prompts.
type Bias string

const (
	BiasBalanced     Bias = "balanced"
	BiasRecent       Bias = "recent"
	BiasFoundational Bias = "foundational"
)

// AIConfig is the model-call configuration. It is persisted outside the
// Document. Debug gates "debug" severity log entries at call time.
type AIConfig struct {
	Bias           Bias   `json:"bias"`
	PromptTemplate string `json:"promptTemplate,omitempty"`
	FeedbackURL    string `json:"feedbackUrl,omitempty"`
	TokenLimit     int    `json:"tokenLimit"`
	Debug          bool   `json:"debug"`
}

// DefaultAIConfig returns the configuration used when none is persisted.
func DefaultAIConfig() AIConfig {
	return AIConfig{
		Bias:       BiasBalanced,
		TokenLimit: 8192,
	}
}

// Document is the root aggregate. It exclusively owns every nested
// collection; no entity is shared across Documents.
type Document struct {
	SchemaVersion  string       `json:"schemaVersion"`
	LastModified   time.Time    `json:"lastModified"`
	Articles       []Article    `json:"articles"`
	Books          []Book       `json:"books"`
	Notes          []Note       `json:"notes"`
	Shelves        []Shelf      `json:"shelves"`
	Logs           []LogEntry   `json:"logs"`
	Usage          []UsageEvent `json:"usage"`
	TrackedAuthors []string     `json:"trackedAuthors"`
}

// DefaultDocument returns a freshly initialized Document with empty
// collections and the reserved queue shelf present.
func DefaultDocument() *Document {
	return &Document{
		SchemaVersion:  SchemaVersion,
		Articles:       []Article{},
		Books:          []Book{},
		Notes:          []Note{},
		Shelves:        []Shelf{{ID: QueueShelfID, Name: "Reading Queue", Color: "#6b7280"}},
		Logs:           []LogEntry{},
		Usage:          []UsageEvent{},
		TrackedAuthors: []string{},
	}
}

// Repair backfills collections that older persisted documents lack, so any
// previously stored shape remains loadable (read-repair, never reject).
// It reports whether anything changed.
func (d *Document) Repair() bool {
	changed := false
	if d.Articles == nil {
		d.Articles = []Article{}
		changed = true
	}
	if d.Books == nil {
		d.Books = []Book{}
		changed = true
	}
	if d.Notes == nil {
		d.Notes = []Note{}
		changed = true
	}
	if d.Shelves == nil {
		d.Shelves = []Shelf{}
		changed = true
	}
	if d.Logs == nil {
		d.Logs = []LogEntry{}
		changed = true
	}
	if d.Usage == nil {
		d.Usage = []UsageEvent{}
		changed = true
	}
	if d.TrackedAuthors == nil {
		d.TrackedAuthors = []string{}
		changed = true
	}
	if _, ok := d.Shelf(QueueShelfID); !ok {
		d.Shelves = append([]Shelf{{ID: QueueShelfID, Name: "Reading Queue", Color: "#6b7280"}}, d.Shelves...)
		changed = true
	}
	return changed
}

// Clone returns a deep copy. Callers receive snapshots; mutating a snapshot
// never affects persisted state until it is saved explicitly.
func (d *Document) Clone() *Document {
	out := *d
	out.Articles = make([]Article, len(d.Articles))
	for i, a := range d.Articles {
		a.Authors = cloneStrings(a.Authors)
		a.Tags = cloneStrings(a.Tags)
		a.ShelfIDs = cloneStrings(a.ShelfIDs)
		a.NoteIDs = cloneStrings(a.NoteIDs)
		a.References = cloneStrings(a.References)
		a.GroundingSources = cloneStrings(a.GroundingSources)
		out.Articles[i] = a
	}
	out.Books = make([]Book, len(d.Books))
	for i, b := range d.Books {
		b.Authors = cloneStrings(b.Authors)
		b.Tags = cloneStrings(b.Tags)
		b.ShelfIDs = cloneStrings(b.ShelfIDs)
		out.Books[i] = b
	}
	out.Notes = make([]Note, len(d.Notes))
	for i, n := range d.Notes {
		n.ArticleIDs = cloneStrings(n.ArticleIDs)
		out.Notes[i] = n
	}
	out.Shelves = append([]Shelf(nil), d.Shelves...)
	out.Logs = make([]LogEntry, len(d.Logs))
	for i, l := range d.Logs {
		if l.Context != nil {
			ctx := make(map[string]any, len(l.Context))
			for k, v := range l.Context {
				ctx[k] = v
			}
			l.Context = ctx
		}
		out.Logs[i] = l
	}
	out.Usage = append([]UsageEvent(nil), d.Usage...)
	out.TrackedAuthors = cloneStrings(d.TrackedAuthors)
	return &out
}

// Article returns a pointer into the document's article slice.
func (d *Document) Article(id string) (*Article, bool) {
	for i := range d.Articles {
		if d.Articles[i].ID == id {
			return &d.Articles[i], true
		}
	}
	return nil, false
}

// Book returns a pointer into the document's book slice.
func (d *Document) Book(id string) (*Book, bool) {
	for i := range d.Books {
		if d.Books[i].ID == id {
			return &d.Books[i], true
		}
	}
	return nil, false
}

// Note returns a pointer into the document's note slice.
func (d *Document) Note(id string) (*Note, bool) {
	for i := range d.Notes {
		if d.Notes[i].ID == id {
			return &d.Notes[i], true
		}
	}
	return nil, false
}

// Shelf returns a pointer into the document's shelf slice.
func (d *Document) Shelf(id string) (*Shelf, bool) {
	for i := range d.Shelves {
		if d.Shelves[i].ID == id {
			return &d.Shelves[i], true
		}
	}
	return nil, false
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
