package recommend

import (
	"fmt"
	"strings"

	"github.com/jvaldes/plexcurator/internal/catalog"
)

// buildPrompt renders the question sent to the assistant. The corpus file
// already carries the full library with watched status, so the prompt only
// needs the viewing history and the constraints on the answer.
func buildPrompt(history []catalog.Item, count int) string {
	var b strings.Builder

	if len(history) > 0 {
		b.WriteString("Estas son las últimas películas que he visto:\n\n")
		b.WriteString(catalog.HistoryContext(history))
		b.WriteString("\n\nBasándote en mi historial y en la biblioteca adjunta, ")
		fmt.Fprintf(&b, "recomiéndame %d películas de la biblioteca que aún no haya visto (status 'Unwatched').", count)
	} else {
		fmt.Fprintf(&b, "Recomiéndame %d películas populares y variadas de la biblioteca adjunta que aún no haya visto (status 'Unwatched').", count)
	}

	b.WriteString(" Responde únicamente con los títulos, uno por línea, sin descripciones ni texto adicional.")
	return b.String()
}
