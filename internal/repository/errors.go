// Package repository persists users and course aggregate documents in
// MySQL. Sentinel errors let handlers distinguish failure scenarios
// without inspecting driver errors.
package repository

import "errors"

// ErrEmailExists is returned when an insert or update would violate
// the unique email constraint.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// ErrCourseNotFound is returned when no course matches the lookup.
var ErrCourseNotFound = errors.New("course not found")

// ErrVersionConflict is returned when a course save loses the
// compare-and-swap on the version stamp, meaning another writer got
// in between the read and the write. Callers re-read and re-apply.
var ErrVersionConflict = errors.New("course modified concurrently")
