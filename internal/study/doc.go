// Package study implements a study session over one deck: flip and choice
// modes, circular navigation, shuffling, timed exit/enter transitions and
// per-card and per-deck elapsed timers.
//
// A Session accepts commands only while idle. Next, Previous and Shuffle run
// two timed halves driven by a Scheduler; the card changes between them.
// RealScheduler uses time.AfterFunc, ManualScheduler fires on demand.
//
// Shuffle and GenerateChoices are pure functions over an injected
// *rand.Rand so that tests can use a seeded source.
package study
