package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPersonMergeMissing(t *testing.T) {
	t.Run("fills empty fields only", func(t *testing.T) {
		p := &Person{Name: "Amina Yusuf", Phone: "+11111"}

		changed := p.MergeMissing("Someone Else", ContactFields{
			Phone:  "+22222",
			Mobile: "+33333",
			City:   "Lagos",
		})

		assert.True(t, changed)
		assert.Equal(t, "Amina Yusuf", p.Name, "populated name must not be overwritten")
		assert.Equal(t, "+11111", p.Phone, "populated phone must not be overwritten")
		assert.Equal(t, "+33333", p.Mobile)
		assert.Equal(t, "Lagos", p.City)
	})

	t.Run("reports no change when nothing was filled", func(t *testing.T) {
		p := &Person{Name: "Amina Yusuf", Phone: "+11111"}
		changed := p.MergeMissing("Amina Yusuf", ContactFields{Phone: "+22222"})
		assert.False(t, changed)
	})

	t.Run("empty inputs never clear fields", func(t *testing.T) {
		p := &Person{Name: "Amina Yusuf", City: "Lagos"}
		changed := p.MergeMissing("", ContactFields{})
		assert.False(t, changed)
		assert.Equal(t, "Lagos", p.City)
	})
}
