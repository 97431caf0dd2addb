package banner

import (
	"pipegen/internal/styles"

	"github.com/charmbracelet/lipgloss"
)

func GetString() string {
	renderer := lipgloss.DefaultRenderer()

	style := renderer.NewStyle().
		Foreground(styles.ColorBanner).
		Bold(true)

	ascii := `
        _                            
  _ __ (_)_ __   ___  __ _  ___ _ __  
 | '_ \| | '_ \ / _ \/ _' |/ _ \ '_ \ 
 | |_) | | |_) |  __/ (_| |  __/ | | |
 | .__/|_| .__/ \___|\__, |\___|_| |_|
 |_|     |_|         |___/            `

	return "\n" + style.Render(ascii) + "\n"
}
