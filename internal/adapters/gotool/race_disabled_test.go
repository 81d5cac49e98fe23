//go:build !race

package gotool_test

const raceEnabled = false
