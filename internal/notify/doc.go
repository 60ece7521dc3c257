// Package notify renders and delivers email notifications.
//
// A Dispatcher makes exactly one delivery attempt per call and never returns
// an error: a missing transport configuration, an unresolvable recipient, a
// render failure and a transport failure all fold into an Outcome with Sent
// set to false. That lets callers either wait for the Outcome or hand the
// call to a background worker without changing how they use it.
//
// Messages are built by a Renderer from an embedded template set: HTML
// layouts under templates/ and the subjects, headings and status/priority
// style tables in templates/set.yaml.
package notify
