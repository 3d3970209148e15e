package app

import (
	"context"
	"fmt"
	"log"

	"github.com/relabs-tech/deviceinfo/internal/config"
	"github.com/relabs-tech/deviceinfo/internal/orientation"
)

func formatStateLine(v StateView) string {
	return fmt.Sprintf("[%-12s] %-32s %s", v.Icon, v.Label, v.InterfaceLabel)
}

// RunConsole prints every state change of the configured host until ctx
// is done.
func RunConsole(ctx context.Context) error {
	m, err := startManager(config.Get())
	if err != nil {
		return err
	}
	defer m.Stop()

	show := func(s orientation.State) { fmt.Println(formatStateLine(newStateView(s))) }
	unwatch := followState(m, show)
	defer unwatch()

	<-ctx.Done()
	log.Println("console: shutting down")
	return nil
}
