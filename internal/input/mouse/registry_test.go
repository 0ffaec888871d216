package mouse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	assert.Equal(t, []Button{ButtonLeft, ButtonMiddle, ButtonRight}, r.Buttons())
	assert.Equal(t, 3, r.Len())

	for _, b := range r.Buttons() {
		c, ok := r.Config(b)
		require.True(t, ok)
		assert.Equal(t, DefaultClickWindow, c.ClickWindow)
		assert.Equal(t, DefaultDoubleClickWindow, c.DoubleClickWindow)
	}

	_, ok := r.Config(ButtonBack)
	assert.False(t, ok)
}

func TestNewRegistryCustom(t *testing.T) {
	r, err := NewRegistry([]WatcherConfig{
		{Button: ButtonBack, ClickWindow: ms(150), DoubleClickWindow: ms(500)},
		{Button: ButtonLeft, ClickWindow: ms(80), DoubleClickWindow: ms(250)},
	})
	require.NoError(t, err)

	assert.Equal(t, []Button{ButtonBack, ButtonLeft}, r.Buttons())
	c, ok := r.Config(ButtonBack)
	require.True(t, ok)
	assert.Equal(t, ms(150), c.ClickWindow)
}

func TestNewRegistryEmpty(t *testing.T) {
	r, err := NewRegistry(nil)
	require.NoError(t, err)
	assert.Zero(t, r.Len())
}

func TestNewRegistryRejects(t *testing.T) {
	tests := []struct {
		name    string
		configs []WatcherConfig
		want    error
	}{
		{
			name:    "zero click window",
			configs: []WatcherConfig{{Button: ButtonLeft, ClickWindow: 0, DoubleClickWindow: ms(300)}},
			want:    ErrInvalidWindow,
		},
		{
			name:    "negative double-click window",
			configs: []WatcherConfig{{Button: ButtonLeft, ClickWindow: ms(100), DoubleClickWindow: -ms(1)}},
			want:    ErrInvalidWindow,
		},
		{
			name:    "button none",
			configs: []WatcherConfig{{Button: ButtonNone, ClickWindow: ms(100), DoubleClickWindow: ms(300)}},
			want:    ErrUnknownButton,
		},
		{
			name:    "out of range button",
			configs: []WatcherConfig{{Button: Button(42), ClickWindow: ms(100), DoubleClickWindow: ms(300)}},
			want:    ErrUnknownButton,
		},
		{
			name: "duplicate",
			configs: []WatcherConfig{
				{Button: ButtonLeft, ClickWindow: ms(100), DoubleClickWindow: ms(300)},
				{Button: ButtonLeft, ClickWindow: ms(200), DoubleClickWindow: ms(400)},
			},
			want: ErrDuplicateButton,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRegistry(tt.configs)
			assert.Nil(t, r)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)

			var we *WatcherError
			assert.True(t, errors.As(err, &we))
		})
	}
}

func TestRegistryConfigsIsCopy(t *testing.T) {
	r := DefaultRegistry()
	configs := r.Configs()
	configs[0].ClickWindow = ms(999)

	c, _ := r.Config(ButtonLeft)
	assert.Equal(t, DefaultClickWindow, c.ClickWindow)
}

func TestRegistryDetectorsAreFresh(t *testing.T) {
	r := DefaultRegistry()

	c1, _ := r.detectors()
	c2, _ := r.detectors()

	c1.Update(ms(10), []RawEvent{Press(ButtonLeft)})

	w1, _ := c1.Watcher(ButtonLeft)
	w2, _ := c2.Watcher(ButtonLeft)
	assert.Equal(t, ms(10), w1.LastPress)
	assert.Zero(t, w2.LastPress)
}
