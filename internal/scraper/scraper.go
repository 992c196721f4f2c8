package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// TextNormalizer чистит текст поля перед записью в Post
type TextNormalizer interface {
	Clean(text string) string
}

type Scraper struct {
	selectors  *Selectors
	normalizer TextNormalizer
}

func NewScraper(selectors *Selectors, normalizer TextNormalizer) *Scraper {
	return &Scraper{
		selectors:  selectors,
		normalizer: normalizer,
	}
}

// Extract разбирает отрендеренную страницу и возвращает посты в порядке документа.
// Если в любом контейнере нет одного из полей, возвращается *ExtractError.
func (s *Scraper) Extract(html string) ([]Post, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return s.ExtractDocument(doc)
}

func (s *Scraper) ExtractDocument(doc *goquery.Document) ([]Post, error) {
	containers := doc.Find(s.selectors.Container.Selector())
	posts := make([]Post, 0, containers.Length())
	fields := s.selectors.Fields()

	var extractErr error
	containers.EachWithBreak(func(i int, sel *goquery.Selection) bool {
		values := make(map[string]string, len(fields))
		for _, field := range fields {
			selector := field.Locator.Selector()
			match := sel.Find(selector).First()
			if match.Length() == 0 {
				extractErr = &ExtractError{Index: i, Field: field.Name, Selector: selector}
				return false
			}
			values[field.Name] = s.clean(match.Text())
		}

		posts = append(posts, Post{
			Title:   values[FieldTitle],
			Author:  values[FieldAuthor],
			Upvotes: values[FieldUpvotes],
		})
		return true
	})
	if extractErr != nil {
		return nil, extractErr
	}

	return posts, nil
}

func (s *Scraper) clean(text string) string {
	if s.normalizer == nil {
		return strings.TrimSpace(text)
	}
	return s.normalizer.Clean(text)
}
