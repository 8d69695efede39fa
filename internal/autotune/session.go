package autotune

// Gains are committed to the restorable snapshot at this period. Bounds how
// stale the post-abort gains can be relative to the working set.
const commitPeriodMs = 5000

// Status is the session lifecycle state, observable by telemetry.
type Status uint8

const (
	StatusInactive Status = iota
	StatusActive
)

func (s Status) String() string {
	switch s {
	case StatusInactive:
		return "INACTIVE"
	case StatusActive:
		return "ACTIVE"
	}
	return "UNSUPPORTED"
}

// Session owns the working and committed gain snapshots for one tuning run.
// It is driven once per control-loop tick via Update, and once per axis per
// tick via UpdateAxis while active.
type Session struct {
	clock Clock
	bank  Bank
	law   Law

	current    [AxisCount]AxisState
	saved      [AxisCount]AxisState
	lastCommit uint32
	status     Status
}

func NewSession(clock Clock, bank Bank, law Law) *Session {
	return &Session{
		clock: clock,
		bank:  bank,
		law:   law,
	}
}

// Update is the per-tick session entry point. It starts a session when
// tuning is requested while armed, checkpoints while one is running, and
// restores the last committed snapshot the tick the request drops or the
// vehicle disarms.
func (s *Session) Update(requested, armed bool) {
	if requested && armed {
		if s.status != StatusActive {
			s.start()
			s.status = StatusActive
		} else {
			s.checkCommit()
		}
		return
	}

	if s.status == StatusActive {
		s.bank.Apply(gainSet(&s.saved))
	}
	s.status = StatusInactive
}

// UpdateAxis feeds one axis' tick observation to the tuning law. A gain
// change pushes the full gain set for all axes so the controller's view
// stays consistent in one update.
func (s *Session) UpdateAxis(axis Axis, desiredRate, achievedRate, output float64) {
	if s.status != StatusActive {
		return
	}

	sample := Sample{
		DesiredRate:  desiredRate,
		AchievedRate: achievedRate,
		Output:       output,
	}

	if s.law.Update(axis, &s.current[axis], sample, s.clock.Millis()) {
		s.bank.Apply(gainSet(&s.current))
	}
}

func (s *Session) Status() Status { return s.status }

func (s *Session) Active() bool { return s.status == StatusActive }

// AxisStates returns a copy of the working per-axis state, for telemetry
// and display.
func (s *Session) AxisStates() [AxisCount]AxisState {
	return s.current
}

// SavedGains returns the last committed snapshot's gains.
func (s *Session) SavedGains() GainSet {
	return gainSet(&s.saved)
}

// start reseeds both snapshots from the live controller's gains. Nothing
// carries over from a previous session.
func (s *Session) start() {
	now := s.clock.Millis()
	for axis := AxisRoll; axis < AxisCount; axis++ {
		s.current[axis] = AxisState{
			Regime:    RegimeTooLow,
			EnteredAt: now,
			Gains:     s.bank.Gains(axis),
		}
	}
	s.saved = s.current
	s.lastCommit = now
}

// checkCommit promotes the working gains into the restorable snapshot at
// most once per commit period and pushes them to the live controller.
func (s *Session) checkCommit() {
	now := s.clock.Millis()
	if now-s.lastCommit < commitPeriodMs {
		return
	}

	s.saved = s.current
	s.bank.Apply(gainSet(&s.saved))
	s.lastCommit = now
}

func gainSet(states *[AxisCount]AxisState) GainSet {
	var set GainSet
	for axis := AxisRoll; axis < AxisCount; axis++ {
		set[axis] = states[axis].Gains
	}
	return set
}
