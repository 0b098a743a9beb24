package ebitenview

import (
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/stage"
)

// Game runs a scene inside ebiten. It implements ebiten.Game.
type Game struct {
	Scene     *stage.Scene
	Presenter *Presenter
	// UpdateFunc runs on the event side before every tick. Mutate the tree
	// here.
	UpdateFunc func() error
}

// NewGame creates a game for s with a presenter configured from the
// scene's settings.
func NewGame(s *stage.Scene) *Game {
	return &Game{
		Scene:     s,
		Presenter: NewPresenter(s.Config().PartialUpdate),
	}
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if g.UpdateFunc != nil {
		if err := g.UpdateFunc(); err != nil {
			return err
		}
	}
	g.Scene.Tick(1 / float32(ebiten.TPS()))
	return nil
}

// Draw implements ebiten.Game. It presents the latest frame and
// acknowledges the damage it redrew.
func (g *Game) Draw(screen *ebiten.Image) {
	f := g.Scene.Frame()
	drawn, isNew := g.Presenter.Present(screen, f)
	if isNew {
		g.Scene.AcknowledgeDamage(f.Number, drawn)
	}
}

// Layout implements ebiten.Game.
func (g *Game) Layout(_, _ int) (int, int) {
	cfg := g.Scene.Config()
	return int(math.Ceil(float64(cfg.Width))), int(math.Ceil(float64(cfg.Height)))
}

// RunConfig configures Run.
type RunConfig struct {
	Title   string
	ShowFPS bool
	// Update runs on the event side before every tick.
	Update func() error
}

// Run opens a window the size of the scene's viewport and runs the game
// loop until the window is closed or Update returns an error.
func Run(s *stage.Scene, rc RunConfig) error {
	g := NewGame(s)
	g.UpdateFunc = rc.Update
	g.Presenter.ShowFPS = rc.ShowFPS

	cfg := s.Config()
	w, h := g.Layout(0, 0)
	ebiten.SetWindowTitle(rc.Title)
	ebiten.SetWindowSize(w, h)
	if cfg.TPS > 0 {
		ebiten.SetTPS(cfg.TPS)
	}
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("ebitenview: %w", err)
	}
	return nil
}
