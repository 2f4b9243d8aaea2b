/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	_ "embed"
)

//go:embed samples/list-users.json
var listUsersSample string

var demos = map[string]string{
	"list-users": listUsersSample,
}
