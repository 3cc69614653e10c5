// Package builtins provides the command groups served by the gateway.
//
// # Groups
//
// Course catalog (course_catalog), registered through RegisterAll:
//
//   - list-schools: schools, optionally with department counts
//   - list-departments: departments of one school or of all schools
//   - get-course: full course record by course_id
//   - get-schedule: sections and meeting schedules, optionally for one term
//   - search-courses: free-text search with term and requirement filters
//   - check-schedule-conflicts: overlapping meetings between selected sections
//
// Weather (weather), registered through a named entry point:
//
//   - get-alert: active NWS alerts for a US state
//   - get-forecast: next forecast periods for a latitude/longitude
//
// Notification (notification), registered as a static command list:
//
//   - start-notification-stream: timed log notifications to the caller
//
// # Registration
//
// Groups are handed to packs.Discover in the order returned by Groups:
//
//	reports := packs.Discover(registry, builtins.Groups(deps), manifest, logger)
//
// # Arguments
//
// Every handler decodes its arguments into a typed request struct with
// packs.DecodeArgs, so a missing or mistyped field surfaces as an
// InvalidArgument error naming that field.
package builtins
