package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMainWiring(t *testing.T) {
	origSetVersion := setVersionInfo
	origExecute := executeCmd
	origVersion := version
	t.Cleanup(func() {
		setVersionInfo = origSetVersion
		executeCmd = origExecute
		version = origVersion
	})

	var gotVersion string
	executed := false
	version = "1.2.3"
	setVersionInfo = func(v string) { gotVersion = v }
	executeCmd = func() { executed = true }

	main()

	assert.Equal(t, "1.2.3", gotVersion)
	assert.True(t, executed)
}
