package notify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	sent    []int64
	failFor map[int64]error
}

func (f *fakeGateway) SendText(chatID int64, text string) error {
	if err, ok := f.failFor[chatID]; ok {
		return err
	}
	f.sent = append(f.sent, chatID)
	return nil
}

func TestDispatcher_Send(t *testing.T) {
	t.Run("delivers", func(t *testing.T) {
		gw := &fakeGateway{}
		d := NewDispatcher(gw)
		require.NoError(t, d.Send(1, "hello"))
		assert.Equal(t, []int64{1}, gw.sent)
	})

	t.Run("returns delivery error", func(t *testing.T) {
		gw := &fakeGateway{failFor: map[int64]error{1: errors.New("blocked")}}
		d := NewDispatcher(gw)
		assert.Error(t, d.Send(1, "hello"))
	})
}

func TestDispatcher_Broadcast(t *testing.T) {
	t.Run("one failure does not stop the rest", func(t *testing.T) {
		gw := &fakeGateway{failFor: map[int64]error{2: errors.New("blocked")}}
		d := NewDispatcher(gw)

		delivered := d.Broadcast([]int64{1, 2, 3}, "weekly report")
		assert.Equal(t, 2, delivered)
		assert.Equal(t, []int64{1, 3}, gw.sent)
	})

	t.Run("empty recipient list", func(t *testing.T) {
		d := NewDispatcher(&fakeGateway{})
		assert.Equal(t, 0, d.Broadcast(nil, "x"))
	})
}
