package core

import (
	"context"

	"github.com/google/uuid"
)

// AddArticle appends an article. A missing ID is generated, a missing
// source defaults to manual entry and new articles start untriaged.
func (s *Service) AddArticle(ctx context.Context, a Article) (*Document, error) {
	return s.mutate(ctx, func(doc *Document) ([]Event, error) {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if a.Source == "" {
			a.Source = SourceManual
		}
		if a.AddedAt.IsZero() {
			a.AddedAt = s.now()
		}
		doc.Articles = append(doc.Articles, a)
		return []Event{{Type: EventCreate, Topic: "articles/" + a.ID}}, nil
	})
}

// UpdateArticle replaces the stored article with the same ID.
func (s *Service) UpdateArticle(ctx context.Context, a Article) (*Document, error) {
	return s.mutate(ctx, func(doc *Document) ([]Event, error) {
		cur, ok := doc.Article(a.ID)
		if !ok {
			return nil, ErrNotFound
		}
		*cur = a
		return []Event{{Type: EventModify, Topic: "articles/" + a.ID}}, nil
	})
}

// RateArticle sets the user rating. Valid values are RatingDismissed (-1),
// RatingUntriaged (0) and 1..RatingMax.
func (s *Service) RateArticle(ctx context.Context, id string, rating int) (*Document, error) {
	if rating < RatingDismissed || rating > RatingMax {
		return nil, ErrInvalidRating
	}
	return s.mutate(ctx, func(doc *Document) ([]Event, error) {
		a, ok := doc.Article(id)
		if !ok {
			return nil, ErrNotFound
		}
		a.Rating = rating
		return []Event{{Type: EventModify, Topic: "articles/" + id}}, nil
	})
}

// DismissArticle marks an article dismissed (rating -1). Articles are never
// hard-deleted; dismissal is the observed retirement flow.
func (s *Service) DismissArticle(ctx context.Context, id string) (*Document, error) {
	return s.RateArticle(ctx, id, RatingDismissed)
}

// AddReadTime accumulates read time, in seconds, on an article.
func (s *Service) AddReadTime(ctx context.Context, id string, seconds int) (*Document, error) {
	return s.mutate(ctx, func(doc *Document) ([]Event, error) {
		a, ok := doc.Article(id)
		if !ok {
			return nil, ErrNotFound
		}
		a.ReadSeconds += seconds
		return []Event{{Type: EventModify, Topic: "articles/" + id}}, nil
	})
}

// AddBook appends a book. A missing ID is generated.
func (s *Service) AddBook(ctx context.Context, b Book) (*Document, error) {
	return s.mutate(ctx, func(doc *Document) ([]Event, error) {
		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		if b.AddedAt.IsZero() {
			b.AddedAt = s.now()
		}
		doc.Books = append(doc.Books, b)
		return []Event{{Type: EventCreate, Topic: "books/" + b.ID}}, nil
	})
}

// UpdateBook replaces the stored book with the same ID.
func (s *Service) UpdateBook(ctx context.Context, b Book) (*Document, error) {
	return s.mutate(ctx, func(doc *Document) ([]Event, error) {
		cur, ok := doc.Book(b.ID)
		if !ok {
			return nil, ErrNotFound
		}
		*cur = b
		return []Event{{Type: EventModify, Topic: "books/" + b.ID}}, nil
	})
}

// AddNote appends a note. A missing ID is generated.
func (s *Service) AddNote(ctx context.Context, n Note) (*Document, error) {
	return s.mutate(ctx, func(doc *Document) ([]Event, error) {
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		n.UpdatedAt = s.now()
		doc.Notes = append(doc.Notes, n)
		return []Event{{Type: EventCreate, Topic: "notes/" + n.ID}}, nil
	})
}

// UpdateNote replaces title and content of the stored note, stamping its
// last-edited time. Links are managed by LinkNoteToArticle/Unlink.
func (s *Service) UpdateNote(ctx context.Context, id, title, content string) (*Document, error) {
	return s.mutate(ctx, func(doc *Document) ([]Event, error) {
		n, ok := doc.Note(id)
		if !ok {
			return nil, ErrNotFound
		}
		n.Title = title
		n.Content = content
		n.UpdatedAt = s.now()
		return []Event{{Type: EventModify, Topic: "notes/" + id}}, nil
	})
}

// DeleteNote removes a note and drops its id from every linked article,
// keeping the two-sided link invariant.
func (s *Service) DeleteNote(ctx context.Context, id string) (*Document, error) {
	return s.mutate(ctx, func(doc *Document) ([]Event, error) {
		if _, ok := doc.Note(id); !ok {
			return nil, ErrNotFound
		}
		notes := doc.Notes[:0]
		for _, n := range doc.Notes {
			if n.ID != id {
				notes = append(notes, n)
			}
		}
		doc.Notes = notes
		for i := range doc.Articles {
			doc.Articles[i].NoteIDs = remove(doc.Articles[i].NoteIDs, id)
		}
		return []Event{{Type: EventDelete, Topic: "notes/" + id}}, nil
	})
}

// LinkNoteToArticle links a note and an article, updating both membership
// lists within one store mutation. Linking twice is a no-op.
func (s *Service) LinkNoteToArticle(ctx context.Context, noteID, articleID string) (*Document, error) {
	return s.mutate(ctx, func(doc *Document) ([]Event, error) {
		n, ok := doc.Note(noteID)
		if !ok {
			return nil, ErrNotFound
		}
		a, ok := doc.Article(articleID)
		if !ok {
			return nil, ErrNotFound
		}
		if contains(n.ArticleIDs, articleID) {
			return nil, nil
		}
		n.ArticleIDs = append(n.ArticleIDs, articleID)
		a.NoteIDs = append(a.NoteIDs, noteID)
		return []Event{
			{Type: EventModify, Topic: "notes/" + noteID},
			{Type: EventModify, Topic: "articles/" + articleID},
		}, nil
	})
}

// UnlinkNoteFromArticle removes the link from both sides.
func (s *Service) UnlinkNoteFromArticle(ctx context.Context, noteID, articleID string) (*Document, error) {
	return s.mutate(ctx, func(doc *Document) ([]Event, error) {
		n, ok := doc.Note(noteID)
		if !ok {
			return nil, ErrNotFound
		}
		a, ok := doc.Article(articleID)
		if !ok {
			return nil, ErrNotFound
		}
		if !contains(n.ArticleIDs, articleID) {
			return nil, nil
		}
		n.ArticleIDs = remove(n.ArticleIDs, articleID)
		a.NoteIDs = remove(a.NoteIDs, noteID)
		return []Event{
			{Type: EventModify, Topic: "notes/" + noteID},
			{Type: EventModify, Topic: "articles/" + articleID},
		}, nil
	})
}

// AddShelf creates a shelf.
func (s *Service) AddShelf(ctx context.Context, name, color string) (*Document, error) {
	return s.mutate(ctx, func(doc *Document) ([]Event, error) {
		shelf := Shelf{ID: uuid.NewString(), Name: name, Color: color}
		doc.Shelves = append(doc.Shelves, shelf)
		return []Event{{Type: EventCreate, Topic: "shelves/" + shelf.ID}}, nil
	})
}

// DeleteShelf removes a shelf and all memberships pointing at it. Deleting
// the reserved queue shelf is a silent no-op, not an error.
func (s *Service) DeleteShelf(ctx context.Context, id string) (*Document, error) {
	return s.mutate(ctx, func(doc *Document) ([]Event, error) {
		if id == QueueShelfID {
			return nil, nil
		}
		if _, ok := doc.Shelf(id); !ok {
			return nil, ErrNotFound
		}
		shelves := doc.Shelves[:0]
		for _, sh := range doc.Shelves {
			if sh.ID != id {
				shelves = append(shelves, sh)
			}
		}
		doc.Shelves = shelves
		for i := range doc.Articles {
			doc.Articles[i].ShelfIDs = remove(doc.Articles[i].ShelfIDs, id)
		}
		for i := range doc.Books {
			doc.Books[i].ShelfIDs = remove(doc.Books[i].ShelfIDs, id)
		}
		return []Event{{Type: EventDelete, Topic: "shelves/" + id}}, nil
	})
}

// AssignToShelf adds an article or book to a shelf. Assigning twice is a
// no-op.
func (s *Service) AssignToShelf(ctx context.Context, itemID, shelfID string) (*Document, error) {
	return s.mutate(ctx, func(doc *Document) ([]Event, error) {
		if _, ok := doc.Shelf(shelfID); !ok {
			return nil, ErrNotFound
		}
		if a, ok := doc.Article(itemID); ok {
			if contains(a.ShelfIDs, shelfID) {
				return nil, nil
			}
			a.ShelfIDs = append(a.ShelfIDs, shelfID)
			return []Event{{Type: EventModify, Topic: "articles/" + itemID}}, nil
		}
		if b, ok := doc.Book(itemID); ok {
			if contains(b.ShelfIDs, shelfID) {
				return nil, nil
			}
			b.ShelfIDs = append(b.ShelfIDs, shelfID)
			return []Event{{Type: EventModify, Topic: "books/" + itemID}}, nil
		}
		return nil, ErrNotFound
	})
}

// RemoveFromShelf removes an article or book from a shelf.
func (s *Service) RemoveFromShelf(ctx context.Context, itemID, shelfID string) (*Document, error) {
	return s.mutate(ctx, func(doc *Document) ([]Event, error) {
		if a, ok := doc.Article(itemID); ok {
			a.ShelfIDs = remove(a.ShelfIDs, shelfID)
			return []Event{{Type: EventModify, Topic: "articles/" + itemID}}, nil
		}
		if b, ok := doc.Book(itemID); ok {
			b.ShelfIDs = remove(b.ShelfIDs, shelfID)
			return []Event{{Type: EventModify, Topic: "books/" + itemID}}, nil
		}
		return nil, ErrNotFound
	})
}

// SetTrackedAuthors overwrites the tracked-author list.
func (s *Service) SetTrackedAuthors(ctx context.Context, authors []string) (*Document, error) {
	return s.mutate(ctx, func(doc *Document) ([]Event, error) {
		doc.TrackedAuthors = append([]string{}, authors...)
		return []Event{{Type: EventModify, Topic: "document"}}, nil
	})
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func remove(list []string, v string) []string {
	out := list[:0]
	for _, item := range list {
		if item != v {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
