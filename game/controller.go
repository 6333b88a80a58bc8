package game

import (
	"github.com/dimaq12/hexsweeper/models"
)

type GameController struct {
	service  *GameService
	registry models.Registry
}

func NewGameController(service *GameService, registry models.Registry) *GameController {
	return &GameController{service: service, registry: registry}
}

// StartGame looks up the difficulty before anything reaches the engine, so
// a typo in the config never produces a half-built board.
func (c *GameController) StartGame(difficulty string) error {
	d, err := c.registry.Lookup(difficulty)
	if err != nil {
		return err
	}
	return c.service.Run(d)
}

func (c *GameController) TerminateGame() {
	c.service.log.Info("terminating the game")
	c.service.Stop()
}
