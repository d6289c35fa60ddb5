//go:build linux

package config

// defaultHotkeyKey is an evdev key name.
const defaultHotkeyKey = "KEY_F9"
