package main

import (
	"github.com/wehiroi/flchen/pkg/framework/router"
)

// keyRow is the home row, one key per mode in code order.
const keyRow = "asdfghjkl"

// keyCodes maps home-row keys to the event codes that select each mode.
var keyCodes = func() map[string]uint8 {
	table := router.Table()
	m := make(map[string]uint8, len(table))
	for i, mapping := range table {
		if i >= len(keyRow) {
			break
		}
		m[keyRow[i:i+1]] = mapping.Code
	}
	return m
}()

// codeForKey returns the event code bound to a key.
func codeForKey(key string) (uint8, bool) {
	code, ok := keyCodes[key]
	return code, ok
}
