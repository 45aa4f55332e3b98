package session

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/maze-robot/game/engine"
	"github.com/wricardo/maze-robot/game/maze"
	"github.com/wricardo/maze-robot/game/service"
)

func assertStored(t *testing.T, p SessionPersistence, id string, want bool) {
	t.Helper()
	stored, err := p.Exists(id)
	require.NoError(t, err)
	assert.Equal(t, want, stored, "stored(%s)", id)
}

func newPlayedSession(t *testing.T, id string) *service.Session {
	t.Helper()
	seed := int64(5)
	config := &engine.MazeConfig{Name: "Random", Description: "d", Shape: "random", Width: 6, Height: 5, Seed: &seed}
	layout, err := config.Build()
	require.NoError(t, err)
	eng, err := engine.NewWithLayout(layout)
	require.NoError(t, err)

	// Wander a little so there is position, orientation and history to keep.
	for i := 0; i < 12; i++ {
		if eng.PathIsClear() == engine.Yes {
			_, err = eng.Execute(engine.MoveForward)
		} else {
			_, err = eng.Execute(engine.TurnRight)
		}
		require.NoError(t, err)
	}

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		ConfigName:     "random",
		CreatedAt:      now,
		LastAccessedAt: now.Add(time.Minute),
	}
}

// runPersistenceContract checks behaviour every SessionPersistence shares.
func runPersistenceContract(t *testing.T, p SessionPersistence) {
	original := newPlayedSession(t, "contract1")

	t.Run("save and load", func(t *testing.T) {
		require.NoError(t, p.Save(original))
		assertStored(t, p, "contract1", true)
		assertStored(t, p, "CONTRACT1", true)

		loaded, err := p.Load("contract1")
		require.NoError(t, err)

		assert.Equal(t, original.ID, loaded.ID)
		assert.Equal(t, original.ConfigName, loaded.ConfigName)
		assert.True(t, original.CreatedAt.Equal(loaded.CreatedAt))
		assert.True(t, original.LastAccessedAt.Equal(loaded.LastAccessedAt))
		assert.Equal(t, original.Config.Width, loaded.Config.Width)

		assert.Equal(t, original.Engine.Grid().Clone(), loaded.Engine.Grid())
		assert.Equal(t, original.Engine.Position(), loaded.Engine.Position())
		assert.Equal(t, original.Engine.Orientation(), loaded.Engine.Orientation())
		assert.Equal(t, original.Engine.Start(), loaded.Engine.Start())
		assert.Equal(t, original.Engine.Finish(), loaded.Engine.Finish())
		assert.Len(t, loaded.Engine.History(), 12)
	})

	t.Run("save overwrites", func(t *testing.T) {
		_, err := original.Engine.Execute(engine.Restart)
		require.NoError(t, err)
		require.NoError(t, p.Save(original))

		loaded, err := p.Load("contract1")
		require.NoError(t, err)
		assert.Equal(t, loaded.Engine.Start(), loaded.Engine.Position())
		assert.Equal(t, maze.North, loaded.Engine.Orientation())
		assert.Equal(t, engine.No, loaded.Engine.VisitedAt(loaded.Engine.Start()))
	})

	t.Run("list", func(t *testing.T) {
		require.NoError(t, p.Save(newPlayedSession(t, "contract2")))
		ids, err := p.ListAll()
		require.NoError(t, err)
		sort.Strings(ids)
		assert.Equal(t, []string{"contract1", "contract2"}, ids)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, p.Delete("contract2"))
		assertStored(t, p, "contract2", false)
		assert.True(t, errors.Is(p.Delete("contract2"), ErrSessionNotFound))

		_, err := p.Load("contract2")
		assert.ErrorIs(t, err, ErrSessionNotFound)

		ids, err := p.ListAll()
		require.NoError(t, err)
		assert.Equal(t, []string{"contract1"}, ids)
	})

	t.Run("nil session", func(t *testing.T) {
		assert.Error(t, p.Save(nil))
	})
}
