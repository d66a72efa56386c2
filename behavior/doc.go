// Package behavior translates confidence tiers and descriptive action names
// into concrete actuation calls.
//
// The Planner owns the nonverbal vocabulary of the robot: the per-tier
// confidence behaviors (verbal prefix, gesture, expression, LED color), the
// gesture/expression cycle shown while thinking aloud, and the mapping from
// descriptive names like "slight head shake" to concrete gesture requests.
// Actuation is best-effort throughout: failures are logged and swallowed so
// a missed nod never interrupts speech.
package behavior
