package bookstack

// Book is the root of one sync scope. Books are looked up by exact name and
// never created by this tool.
type Book struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Chapter groups pages inside a book. Priority is nil when the API omits it.
type Chapter struct {
	ID          int    `json:"id"`
	BookID      int    `json:"book_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Priority    *int   `json:"priority"`
}

// Page is a leaf document. ChapterID zero means the page sits at the book
// root. Markdown and HTML are only populated by GetPage, and either may be
// absent depending on how the page was authored.
type Page struct {
	ID        int     `json:"id"`
	BookID    int     `json:"book_id"`
	ChapterID int     `json:"chapter_id"`
	Name      string  `json:"name"`
	Priority  *int    `json:"priority"`
	Markdown  *string `json:"markdown,omitempty"`
	HTML      *string `json:"html,omitempty"`
	Tags      []Tag   `json:"tags,omitempty"`
}

func (p Page) InChapter() bool {
	return p.ChapterID != 0
}

type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Role struct {
	ID          int    `json:"id"`
	DisplayName string `json:"display_name"`
}

type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Roles []Role `json:"roles"`
}

// ChapterCreate is the body for POST /api/chapters.
type ChapterCreate struct {
	BookID      int    `json:"book_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Priority    *int   `json:"priority,omitempty"`
}

// ChapterUpdate is the body for PUT /api/chapters/{id}; nil fields are left
// untouched remotely.
type ChapterUpdate struct {
	Name     *string `json:"name,omitempty"`
	Priority *int    `json:"priority,omitempty"`
}

// PageCreate is the body for POST /api/pages. Exactly one of BookID and
// ChapterID must be set; a chapter already implies the book.
type PageCreate struct {
	BookID    int    `json:"book_id,omitempty"`
	ChapterID int    `json:"chapter_id,omitempty"`
	Name      string `json:"name"`
	Markdown  string `json:"markdown"`
	Priority  *int   `json:"priority,omitempty"`
}

// PageUpdate is the body for PUT /api/pages/{id}; nil fields are left
// untouched remotely.
type PageUpdate struct {
	Markdown *string `json:"markdown,omitempty"`
	Priority *int    `json:"priority,omitempty"`
	Tags     []Tag   `json:"tags,omitempty"`
}
