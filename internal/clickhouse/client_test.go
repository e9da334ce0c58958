package clickhouse

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/models"
)

func TestSortADP(t *testing.T) {
	entries := []models.ADPEntry{
		{RemotePlayerID: "b", AveragePick: 3.5},
		{RemotePlayerID: "c", AveragePick: 1.0},
		{RemotePlayerID: "a", AveragePick: 3.5},
	}
	SortADP(entries)
	assert.Equal(t, "c", entries[0].RemotePlayerID)
	assert.Equal(t, "a", entries[1].RemotePlayerID)
	assert.Equal(t, "b", entries[2].RemotePlayerID)
}

func TestNewClientUnreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("dials the network")
	}
	_, err := NewClient("127.0.0.1:1", "default", "default", "")
	assert.Error(t, err)
}
