package ebitenview

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// drawFPS prints the actual FPS and TPS in the top-left corner. The overlay
// is drawn on the screen, not the canvas, so it never causes damage.
func drawFPS(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, fpsText(ebiten.ActualFPS(), ebiten.ActualTPS()), 4, 4)
}

func fpsText(fps, tps float64) string {
	return fmt.Sprintf("FPS: %.1f\nTPS: %.1f", fps, tps)
}
