package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barbershop-booking/internal/events"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/testutil"
)

func TestPublish_OneRowPerEntity(t *testing.T) {
	db := testutil.NewDB(t)
	l := New(db)

	group := "g-1"
	at := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, l.Publish(context.Background(), events.Event{
		Type:         events.TypeAppointmentStatusChanged,
		BarbershopID: 7,
		ActorID:      testutil.Ptr(uint(3)),
		Entity:       "appointment",
		EntityIDs:    []uint{10, 11},
		GroupID:      &group,
		FromStatus:   "PENDIENTE",
		ToStatus:     "CANCELADA",
		OccurredAt:   at,
	}))

	var rows []models.AuditLog
	require.NoError(t, db.Order("entity_id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, uint(10), *rows[0].EntityID)
	assert.Equal(t, uint(11), *rows[1].EntityID)
	assert.Equal(t, uint(3), *rows[0].ActorID)
	assert.True(t, rows[0].CreatedAt.Equal(at))

	var meta map[string]any
	require.NoError(t, json.Unmarshal([]byte(rows[0].Metadata), &meta))
	assert.Equal(t, "g-1", meta["group_id"])
	assert.Equal(t, "CANCELADA", meta["to_status"])
}

func TestPublish_EventWithoutEntities(t *testing.T) {
	db := testutil.NewDB(t)

	require.NoError(t, New(db).Publish(context.Background(), events.Event{
		Type:         events.TypeScheduleChanged,
		BarbershopID: 7,
		Entity:       "business_hours",
		OccurredAt:   time.Now(),
	}))

	var rows []models.AuditLog
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].EntityID)
	assert.Empty(t, rows[0].Metadata)
}
