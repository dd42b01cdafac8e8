package logic

// Controller runs one tick of the dimmer: mapper, integrator, persistence
// scheduler, and blinker, then arbitrates the indicator pin.
type Controller struct {
	mapper    *Mapper
	input     *Integrator
	scheduler *Scheduler
	blinker   Blinker

	pin           bool
	startTime     Millis
	commits       int
	lastHeartbeat Millis
}

// View is a point-in-time copy of controller state for status reporting.
type View struct {
	State          DeviceState
	Committed      DeviceState
	Activity       InputActivity
	IRActive       bool
	Indicator      bool
	Owner          PinOwner
	BlinkRemaining uint8
	Commits        int
}

// NewController creates a controller. restored is the state read back from
// storage at boot and is taken as both the live and the committed state.
// startTime is used for uptime in heartbeat data.
func NewController(m *Mapper, restored DeviceState, startTime Millis) *Controller {
	return &Controller{
		mapper:        m,
		input:         NewIntegrator(restored),
		scheduler:     NewScheduler(restored),
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Tick processes one loop iteration. cmd is nil when the decoder had no event.
func (c *Controller) Tick(cmd *Command, now Millis) Output {
	var in *Input
	if cmd != nil {
		in = &Input{
			Action: c.mapper.Map(cmd.Protocol, cmd.Code),
			Repeat: cmd.Repeat,
		}
	}
	changed := c.input.OnTick(in, now)
	state := c.input.State()

	lastInput, _ := c.input.LastInput()
	commits := c.scheduler.Check(state, lastInput, now)
	if len(commits) > 0 {
		c.commits += len(commits)
		c.blinker.Trigger(c.pin)
	}

	// The blinker holds the pin for its whole cycle, then hands it back.
	if level, owned := c.blinker.Tick(now); owned {
		c.pin = level
	} else {
		c.pin = c.input.IRActive()
	}

	return Output{
		PWM:       state.Output(),
		Indicator: c.pin,
		State:     state,
		Changed:   changed,
		Commits:   commits,
	}
}

// View returns a snapshot of the controller for status consumers.
func (c *Controller) View() View {
	return View{
		State:          c.input.State(),
		Committed:      c.scheduler.Committed(),
		Activity:       c.input.Activity(),
		IRActive:       c.input.IRActive(),
		Indicator:      c.pin,
		Owner:          c.blinker.Owner(),
		BlinkRemaining: c.blinker.Remaining(),
		Commits:        c.commits,
	}
}

// CheckHeartbeat returns heartbeat data if interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed
// or if interval is 0 (disabled).
func (c *Controller) CheckHeartbeat(now, interval Millis) *HeartbeatData {
	if interval == 0 {
		return nil
	}
	if now-c.lastHeartbeat < interval {
		return nil
	}

	c.lastHeartbeat = now
	return &HeartbeatData{
		Uptime:  now - c.startTime,
		State:   c.input.State(),
		Commits: c.commits,
	}
}
