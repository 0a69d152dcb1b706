package repository

import "errors"

var (
	// ErrNotFound is returned when a looked-up record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrUnknownMetric is returned for grading rules outside the metric catalog
	ErrUnknownMetric = errors.New("unknown metric")
)
