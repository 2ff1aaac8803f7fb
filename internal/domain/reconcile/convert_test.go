package reconcile

import (
	"strconv"
	"sync"
	"testing"

	"github.com/ganot/crewsync/internal/domain/crewlog"
	"github.com/ganot/crewsync/internal/domain/tmtag"
	"github.com/stretchr/testify/require"
)

func TestLaborFromCrew_PreservesHours(t *testing.T) {
	n := 0
	newID := func() string {
		n++
		return "e" + strconv.Itoa(n)
	}
	members := []crewlog.CrewMember{
		{Name: "Ana", StHours: 8, OtHours: 1.5, DtHours: 0.5, PotHours: 1, TotalHours: 11},
		{Name: " Bo ", StHours: 4, TotalHours: 4},
	}

	entries := laborFromCrew(members, newID)
	require.Len(t, entries, 2)
	require.Equal(t, tmtag.LaborEntry{
		ID: "e1", WorkerName: "Ana", StHours: 8, OtHours: 1.5, DtHours: 0.5, PotHours: 1, TotalHours: 11,
	}, entries[0])
	require.Equal(t, "Bo", entries[1].WorkerName)
	require.Equal(t, "e2", entries[1].ID)

	back := crewFromLabor(entries)
	require.Equal(t, members[0], back[0])
	require.Equal(t, 4.0, back[1].TotalHours)
}

func TestCrewFromLabor_FillsMissingTotal(t *testing.T) {
	members := crewFromLabor([]tmtag.LaborEntry{{WorkerName: "Ana", StHours: 6, DtHours: 2}})
	require.Equal(t, 8.0, members[0].TotalHours)
}

func TestWorkerName_NFC(t *testing.T) {
	require.Equal(t, "Jos\u00e9", workerName("Jose\u0301"))
}

func TestKeyedMutex(t *testing.T) {
	k := newKeyedMutex()

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("P1|2024-01-15")
			counter++
			unlock()
		}()
	}
	wg.Wait()

	require.Equal(t, 50, counter)
	require.Empty(t, k.locks)
}
