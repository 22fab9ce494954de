// ABOUTME: Embeds HTML templates and help pages into the binary using go:embed
// ABOUTME: Provides templateFS for loading templates at runtime

package webadmin

import "embed"

//go:embed templates/*.html templates/partials/*.html templates/help/*.md
var templateFS embed.FS
