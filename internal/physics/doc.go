// Package physics provides airframe rotational-dynamics models used to
// exercise the rate controller and autotune engine in simulation.
package physics
