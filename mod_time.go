package softbody

import (
	"time"
)

type Time struct {
	Time       time.Time
	Dt         time.Duration
	FrameDelay time.Duration
}

// Seconds is Dt as float32 seconds.
func (t *Time) Seconds() float32 {
	return float32(t.Dt.Seconds())
}

// TimeModule measures the frame delta and caps the loop with a fixed delay
// after each frame.
type TimeModule struct {
	FrameDelay time.Duration
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{
		Time:       time.Now(),
		FrameDelay: mod.FrameDelay,
	})
	cmd.UseSystem(System(timeSystem).InStage(Prelude))
	cmd.UseSystem(System(frameDelaySystem).InStage(Finale))
}

func timeSystem(timeResource *Time) {
	now := time.Now()

	timeResource.Dt = now.Sub(timeResource.Time)
	timeResource.Time = now
}

func frameDelaySystem(timeResource *Time) {
	if timeResource.FrameDelay > 0 {
		time.Sleep(timeResource.FrameDelay)
	}
}
