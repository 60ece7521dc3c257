// Package api exposes the task lifecycle over HTTP. Handlers validate the
// shape of requests, call the lifecycle service and translate its errors to
// status codes; they hold no lifecycle logic of their own.
package api
