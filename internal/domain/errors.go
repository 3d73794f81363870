package domain

import "errors"

var (
	// ErrNoAvailableMonths is returned when a folder label skips all twelve months.
	ErrNoAvailableMonths = errors.New("no months left to distribute files into")

	// ErrUndecodable marks content that could not be decoded as text.
	ErrUndecodable = errors.New("content is not decodable as text")
)
