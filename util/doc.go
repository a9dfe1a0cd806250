// Package util holds small generic slice and pointer helpers.
package util
