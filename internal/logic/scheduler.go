package logic

// Scheduler decides when DeviceState changes are written to non-volatile storage.
// A field is committed only after input has been quiet for SettlePeriod and only
// if it differs from the value last committed.
type Scheduler struct {
	committed DeviceState
}

// NewScheduler creates a scheduler whose shadow copy matches what storage holds.
func NewScheduler(committed DeviceState) *Scheduler {
	return &Scheduler{committed: committed}
}

// Check returns the commits due at now. lastInput is the time of the most
// recent input event, or zero (boot) if there has been none.
// The shadow copy is updated for every returned commit.
func (s *Scheduler) Check(state DeviceState, lastInput, now Millis) []Commit {
	if now < lastInput || now-lastInput < SettlePeriod {
		return nil
	}
	if state == s.committed {
		return nil
	}

	var commits []Commit
	if state.Power != s.committed.Power {
		s.committed.Power = state.Power
		commits = append(commits, Commit{Field: FieldPower, Value: boolToByte(state.Power)})
	}
	if state.Level != s.committed.Level {
		s.committed.Level = state.Level
		commits = append(commits, Commit{Field: FieldLevel, Value: state.Level})
	}
	return commits
}

// Committed returns the shadow copy of the last committed state.
func (s *Scheduler) Committed() DeviceState {
	return s.committed
}

func boolToByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
