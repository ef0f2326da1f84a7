package appstate_test

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bft-labs/appstate"
)

// ExampleOpen shows a launch that crashes and the launch after it.
func ExampleOpen() {
	dir, err := os.MkdirTemp("", "appstate-example")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "appstate.json")

	// First launch
	t := appstate.Open(path)
	appstate.NewMonitor(t).SetEnabled(true)
	t.NotifyAppActive(true)
	t.NotifyAppCrash()
	_ = t.Close()

	// Second launch
	t = appstate.Open(path)
	defer t.Close()
	appstate.NewMonitor(t).SetEnabled(true)

	s := t.CurrentState()
	fmt.Printf("crashed last launch: %v\n", s.CrashedLastLaunch)
	fmt.Printf("launches since last crash: %d\n", s.LaunchesSinceLastCrash)

	// Output:
	// crashed last launch: true
	// launches since last crash: 1
}

// ExampleNewMonitor shows the monitor adding the lifecycle record to a report.
func ExampleNewMonitor() {
	t := appstate.New()
	m := appstate.NewMonitor(t)
	m.SetEnabled(true)
	t.NotifyAppActive(true)

	ev := appstate.NewEvent()
	m.AddContextualInfoToEvent(&ev)
	fmt.Printf("%s: active=%v sessions=%d\n", m.ID(), ev.AppState.ApplicationIsActive, ev.AppState.SessionsSinceLaunch)

	// Output: ApplicationState: active=true sessions=1
}
