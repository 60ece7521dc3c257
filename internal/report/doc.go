// Package report builds the daily task report and delivers it on a schedule.
//
// Aggregate is a pure function of a task set and a date. Service pairs it
// with task storage and a notification dispatcher, and Scheduler runs
// Service.SendDaily once at start and then on a fixed interval until its
// context is cancelled.
package report
