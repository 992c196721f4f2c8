package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"postscrape/internal/config"
)

var spacesRe = regexp.MustCompile(`\s+`)

type Normalizer struct {
	cfg config.NormalizeConfig
}

func NewNormalizer(cfg config.NormalizeConfig) *Normalizer {
	return &Normalizer{cfg: cfg}
}

// Clean приводит текст поля к виду, пригодному для CSV
func (n *Normalizer) Clean(text string) string {
	if n.cfg.UnicodeNFC {
		text = norm.NFC.String(text)
	}

	if n.cfg.TrimNBSP {
		// Заменяем NBSP (\u00A0) на обычный пробел
		text = strings.ReplaceAll(text, "\u00A0", " ")
	}

	if n.cfg.CollapseSpaces {
		text = spacesRe.ReplaceAllString(text, " ")
	}

	return strings.TrimSpace(text)
}
