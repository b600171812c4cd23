//go:build mregiondebug

package mregion

const trackByDefault = true
