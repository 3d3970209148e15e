package app

import (
	"github.com/relabs-tech/deviceinfo/internal/orientation"
	"github.com/relabs-tech/deviceinfo/internal/render"
)

// StateView is the state as shown to users: the raw enum values plus the
// formatted icon and labels. It is the JSON shape of /api/state, the
// websocket feed and the retained MQTT state topic.
type StateView struct {
	orientation.State
	Icon           render.Icon `json:"icon"`
	Label          string      `json:"label"`
	InterfaceLabel string      `json:"interface_label"`
}

func newStateView(s orientation.State) StateView {
	return StateView{
		State:          s,
		Icon:           render.IconFor(s.Device),
		Label:          render.Label(s),
		InterfaceLabel: render.InterfaceLabel(s),
	}
}
