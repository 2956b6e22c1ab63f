// Package courses builds the in-memory course index. Documents named
// <category>/<id>.<YYYYMMDDhhmmss>.<title>.md are parsed into Course records,
// grouped by category in first-seen order and sorted by numeric id. A
// malformed document is skipped and reported in the diagnostic log; it never
// aborts a build.
package courses
