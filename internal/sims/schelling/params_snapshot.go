package schelling

import "schelling-ca/internal/core"

func (m *Model) Parameters() core.ParameterSnapshot {
	cfg := m.cfg
	pop := m.grid.Counts()
	groups := []core.ParameterGroup{
		{
			Name: "Grid",
			Params: []core.Parameter{
				core.IntParam("n", "Size", cfg.Size),
				core.FloatParam("empty_ratio", "Empty ratio", cfg.EmptyRatio),
				core.Int64Param("seed", "Seed", cfg.Seed),
			},
		},
		{
			Name: "Agents",
			Params: []core.Parameter{
				core.IntParam("h", "Threshold", cfg.Threshold),
				core.StringParam("move", "Move", string(cfg.Move)),
				core.StringParam("order", "Order", string(cfg.Order)),
				core.IntParam("max_iter", "Max iterations", cfg.MaxIterations),
			},
		},
		{
			Name: "Run",
			Params: []core.Parameter{
				core.IntParam("tick", "Tick", m.tick),
				core.IntParam("unhappy", "Unhappy", m.last.Unhappy),
				core.IntParam("moved", "Moved", m.last.Moved),
				core.IntParam("red", "Red", pop.Red),
				core.IntParam("blue", "Blue", pop.Blue),
				core.IntParam("empty", "Empty", pop.Empty),
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

// ParameterControls lists the values the HUD may adjust while running.
func (m *Model) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{
			Key:    "h",
			Label:  "Threshold",
			Type:   core.ParamTypeInt,
			Step:   1,
			Min:    0,
			Max:    MaxThreshold,
			HasMin: true,
			HasMax: true,
		},
	}
}

// SetIntParameter updates an adjustable integer parameter, clamping it to its
// bounds. A changed threshold clears the settled flag.
func (m *Model) SetIntParameter(key string, value int) bool {
	switch key {
	case "h":
		ctrl := m.ParameterControls()[0]
		v := int(ctrl.Clamp(float64(value)))
		if v != m.cfg.Threshold {
			m.cfg.Threshold = v
			m.done = false
		}
		return true
	default:
		return false
	}
}
