package bus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNilBus(t *testing.T) {
	var b *Bus

	assert.Error(t, b.PublishEvent(context.Background(), "washrelay.tickets.submitted", "id", map[string]string{}))
	assert.Error(t, b.EnsureStream("WASHRELAY", "washrelay.>"))

	_, err := b.Subscribe(context.Background(), "washrelay.>", "durable", func(context.Context, []byte) error { return nil })
	assert.Error(t, err)

	b.Close()
}

func TestEnsureStreamRequiresArguments(t *testing.T) {
	b := &Bus{}
	assert.Error(t, b.EnsureStream("", "washrelay.>"))
	assert.Error(t, b.EnsureStream("WASHRELAY"))
}

func TestSubscribeRequiresHandler(t *testing.T) {
	b := &Bus{}
	_, err := b.Subscribe(context.Background(), "washrelay.>", "durable", nil)
	assert.Error(t, err)
}
