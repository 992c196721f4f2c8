package scraper

import "strings"

// Post — одна строка листинга. Upvotes хранится как на странице ("1.2k", "Vote").
type Post struct {
	Title   string
	Author  string
	Upvotes string
}

// Locator описывает элемент по тегу и строке class, как в разметке.
// Если задан CSS, он используется как есть.
type Locator struct {
	Tag   string `yaml:"tag"`
	Class string `yaml:"class"`
	CSS   string `yaml:"css"`
}

// Selector возвращает селектор вида tag.class1.class2
func (l Locator) Selector() string {
	if l.CSS != "" {
		return l.CSS
	}
	var b strings.Builder
	b.WriteString(l.Tag)
	for _, class := range strings.Fields(l.Class) {
		b.WriteByte('.')
		b.WriteString(class)
	}
	return b.String()
}

func (l Locator) IsZero() bool {
	return l.Tag == "" && l.Class == "" && l.CSS == ""
}

type Selectors struct {
	Version   int     `yaml:"version"`
	Container Locator `yaml:"container"`
	Title     Locator `yaml:"title"`
	Author    Locator `yaml:"author"`
	Upvotes   Locator `yaml:"upvotes"`
}

// Fields возвращает поля записи в порядке колонок CSV
func (s *Selectors) Fields() []Field {
	return []Field{
		{Name: FieldTitle, Locator: s.Title},
		{Name: FieldAuthor, Locator: s.Author},
		{Name: FieldUpvotes, Locator: s.Upvotes},
	}
}

type Field struct {
	Name    string
	Locator Locator
}

const (
	FieldTitle   = "title"
	FieldAuthor  = "author"
	FieldUpvotes = "upvotes"
)
