package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerminalStatus(t *testing.T) {
	assert.False(t, TerminalStatus(PostStatusScheduled))
	assert.True(t, TerminalStatus(PostStatusPublished))
	assert.True(t, TerminalStatus(PostStatusFailed))
	assert.True(t, TerminalStatus(PostStatusCancelled))
	assert.False(t, TerminalStatus("draft"))
}
