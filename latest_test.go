package inview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLatest(t *testing.T) {
	t.Run("reads the last update", func(t *testing.T) {
		l := NewLatest(1)
		assert.Equal(t, 1, l.Read())

		l.Update(2)
		l.Update(3)
		assert.Equal(t, 3, l.Read())
	})

	t.Run("closures see new values", func(t *testing.T) {
		log := []string{}
		l := NewLatest(func() { log = append(log, "first") })

		call := func() { l.Read()() }

		call()
		l.Update(func() { log = append(log, "second") })
		call()

		assert.Equal(t, []string{"first", "second"}, log)
	})

	t.Run("zero value cell", func(t *testing.T) {
		var l Latest[func()]
		assert.Nil(t, l.Read())
	})
}
