// Package ebiten hosts the debug UI inside an Ebiten game loop.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/sparsecs/ecs"
)

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend so it can live in a world singleton.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// Overlay is an ebiten.Game that ticks a scheduler inside an ImGui frame and draws
// the resulting UI over whatever the wrapped game draws.
type Overlay struct {
	backend   *ecs.Singleton[ImguiBackend]
	scheduler *ecs.Scheduler
	game      ebiten.Game
}

// NewOverlay stores backend as a singleton of world. game may be nil for a UI-only window.
func NewOverlay(world *ecs.World, scheduler *ecs.Scheduler, backend *ebitenbackend.EbitenBackend, game ebiten.Game) *Overlay {
	return &Overlay{
		backend:   ecs.NewSingleton(world, ImguiBackend{EbitenBackend: backend}),
		scheduler: scheduler,
		game:      game,
	}
}

func (o *Overlay) Update() error {
	if o.game != nil {
		if err := o.game.Update(); err != nil {
			return err
		}
	}

	backend := o.backend.Get()
	backend.BeginFrame()
	o.scheduler.Once(1.0 / float64(ebiten.TPS()))
	backend.EndFrame()
	return nil
}

func (o *Overlay) Draw(screen *ebiten.Image) {
	if o.game != nil {
		o.game.Draw(screen)
	}
	o.backend.Get().Draw(screen)
}

func (o *Overlay) Layout(outsideWidth, outsideHeight int) (int, int) {
	o.backend.Get().Layout(outsideWidth, outsideHeight)
	if o.game != nil {
		return o.game.Layout(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}
