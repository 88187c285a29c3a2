package core

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHazardLog_ConcurrentRecord(t *testing.T) {
	log := NewHazardLog()

	var wg sync.WaitGroup
	for rank := range 8 {
		wg.Go(func() {
			log.Record(Hazard{Rank: rank, Peer: 0, Op: "recv length"})
			log.Record(Hazard{Rank: rank, Peer: 0, Op: "recv payload"})
		})
	}
	wg.Wait()

	assert.Equal(t, 16, log.Len())
	assert.Len(t, log.ForRank(3), 2)
	assert.Empty(t, log.ForRank(42))
}

func TestHazardLog_HazardsReturnsCopy(t *testing.T) {
	log := NewHazardLog()
	log.Record(Hazard{Rank: 1, Op: "recv length"})

	hazards := log.Hazards()
	hazards[0].Rank = 99

	assert.Equal(t, 1, log.Hazards()[0].Rank)
}

func TestRaceConditionDefect(t *testing.T) {
	var err error = &RaceConditionDefect{Hazards: []Hazard{
		{Rank: 0, Peer: 2, Op: "recv reply"},
	}}

	require.True(t, errors.Is(err, ErrRaceCondition))
	assert.False(t, errors.Is(err, ErrConfiguration))
	assert.Contains(t, err.Error(), `unit 0 used "recv reply" (peer 2) before completion`)
}
