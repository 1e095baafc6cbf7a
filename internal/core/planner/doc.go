// Package planner holds the weekly capacity scheduler and the task status
// state machine. Every function here is pure: it works on task values read
// by the caller and returns new values plus the activities to record.
package planner
