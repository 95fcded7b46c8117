package zephyr_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shaharia-lab/zephyr"
)

func TestNewEvent(t *testing.T) {
	evt := zephyr.NewEvent("user.created", map[string]string{"name": "ada"})

	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, "user.created", evt.Type)
	assert.Equal(t, map[string]string{"name": "ada"}, evt.Payload)
	assert.WithinDuration(t, time.Now().UTC(), evt.EmittedAt, 2*time.Second)
}

func TestNewEvent_uniqueIDs(t *testing.T) {
	a := zephyr.NewEvent("t", nil)
	b := zephyr.NewEvent("t", nil)
	assert.NotEqual(t, a.ID, b.ID)
}
