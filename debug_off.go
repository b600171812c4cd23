//go:build !mregiondebug

package mregion

const trackByDefault = false
