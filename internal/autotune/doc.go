// Package autotune implements online tuning of rate-controller gains.
//
// While a [Session] is active it observes, once per control-loop tick, the
// gap between commanded and achieved rotational rate on each axis and nudges
// the controller's feed-forward gain toward a value that tracks the command
// without saturating the output. Companion P and I gains are derived from
// the feed-forward gain on every adjustment.
//
//   - [Session]: lifecycle, gain snapshots, periodic checkpointing
//   - [Law]: per-axis classification and gain-step policy
//   - [FixedWingLaw]: the fixed-wing variant of the law
//
// The working gains actively fly the vehicle. The session therefore commits
// them to a restorable snapshot at a fixed period, and deactivation always
// reverts the live controller to the last committed snapshot, never to an
// untested gain set.
//
// All entry points are called synchronously from the control loop. Nothing
// here allocates per tick and no locking is performed.
package autotune
