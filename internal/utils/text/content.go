// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-08-11
// Last Modified: 2026-08-11

package text

import (
	"fmt"
	"strings"
)

// BuildEmbeddingContent constructs the text content used for vector embedding.
// It combines the card's title, body, and source citation into a single
// string. The assembly is deterministic: the same card always embeds the same
// text, so re-ingesting a card yields the same vector.
func BuildEmbeddingContent(title, body, source string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\n\n", title)

	if b := strings.TrimSpace(body); b != "" {
		fmt.Fprintf(&sb, "Body: %s\n\n", b)
	}

	if s := strings.TrimSpace(source); s != "" {
		fmt.Fprintf(&sb, "Source: %s\n", s)
	}

	return sb.String()
}
