package model

import "fmt"

// OS identifies which operating system a save path or executable applies to.
// The set is closed: storage and callers must agree on the encoding exactly,
// so values are persisted through the code table below rather than as
// free-form strings.
type OS int

const (
	Windows OS = iota + 1
	Linux
	MacOS
)

// osCodes is version 1 of the on-disk encoding table. Codes are stable:
// adding a new OS means adding a new code, never reassigning an old one.
var osCodes = map[OS]string{
	Windows: "windows",
	Linux:   "linux",
	MacOS:   "macos",
}

var codesToOS = func() map[string]OS {
	m := make(map[string]OS, len(osCodes))
	for os, code := range osCodes {
		m[code] = os
	}
	return m
}()

// Valid reports whether the value is a member of the closed set.
func (o OS) Valid() bool {
	_, ok := osCodes[o]
	return ok
}

// Code returns the stored encoding for the OS. Only valid values have a code.
func (o OS) Code() string {
	return osCodes[o]
}

func (o OS) String() string {
	if code, ok := osCodes[o]; ok {
		return code
	}
	return fmt.Sprintf("OS(%d)", int(o))
}

// OSFromCode decodes a stored OS code. An unknown code is an error, never a
// reinterpretation as some other OS.
func OSFromCode(code string) (OS, error) {
	os, ok := codesToOS[code]
	if !ok {
		return 0, fmt.Errorf("unknown operating system code: %q", code)
	}
	return os, nil
}
