package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsValidStatus(t *testing.T) {
	assert.True(t, IsValidStatus(StatusPending))
	assert.True(t, IsValidStatus(StatusInProgress))
	assert.True(t, IsValidStatus(StatusCompleted))
	assert.True(t, IsValidStatus(StatusCancelled))
	assert.False(t, IsValidStatus(Status("Archived")))
	assert.False(t, IsValidStatus(Status("")))
}

func TestEditableFieldMaterialize(t *testing.T) {
	in := EditableFieldInput{Value: "PO-778", IsEdited: true}
	f := in.Materialize()

	assert.Equal(t, "PO-778", f.Value)
	assert.True(t, f.IsEdited)
	assert.False(t, f.CreatedAt.IsZero())
	assert.False(t, f.UpdatedAt.IsZero())
}

func TestMaterializeFields(t *testing.T) {
	fields := MaterializeFields([]EditableFieldInput{{Value: "JC-1"}, {Value: "JC-2"}})
	assert.Len(t, fields, 2)
	assert.Equal(t, "JC-1", fields[0].Value)
	assert.Equal(t, "JC-2", fields[1].Value)

	assert.Empty(t, MaterializeFields(nil))
}

func TestServiceDateMaterialize(t *testing.T) {
	t.Run("derives month and year", func(t *testing.T) {
		in := ServiceDateInput{ServiceDate: time.Date(2025, time.November, 3, 0, 0, 0, 0, time.UTC)}
		sd := in.Materialize()

		assert.Equal(t, 11, sd.Month)
		assert.Equal(t, 2025, sd.Year)
		assert.Equal(t, PaymentStatusPending, sd.PaymentStatus)
	})

	t.Run("keeps an explicit payment status", func(t *testing.T) {
		in := ServiceDateInput{
			ServiceDate:   time.Date(2025, time.November, 3, 0, 0, 0, 0, time.UTC),
			PaymentStatus: PaymentStatusPaid,
		}
		assert.Equal(t, PaymentStatusPaid, in.Materialize().PaymentStatus)
	})
}
