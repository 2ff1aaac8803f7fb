package reconcile

import (
	"strings"

	"github.com/ganot/crewsync/internal/domain/crewlog"
	"github.com/ganot/crewsync/internal/domain/tmtag"
	"golang.org/x/text/unicode/norm"
)

// laborFromCrew maps crew members 1:1 onto labor entries with fresh ids.
// Hour buckets and totals are copied unchanged.
func laborFromCrew(members []crewlog.CrewMember, newID func() string) []tmtag.LaborEntry {
	entries := make([]tmtag.LaborEntry, 0, len(members))
	for _, m := range members {
		entries = append(entries, tmtag.LaborEntry{
			ID:         newID(),
			WorkerName: workerName(m.Name),
			StHours:    m.StHours,
			OtHours:    m.OtHours,
			DtHours:    m.DtHours,
			PotHours:   m.PotHours,
			TotalHours: m.TotalHours,
		})
	}
	return entries
}

// crewFromLabor is the inverse of laborFromCrew. A zero total is filled
// from the buckets.
func crewFromLabor(entries []tmtag.LaborEntry) []crewlog.CrewMember {
	members := make([]crewlog.CrewMember, 0, len(entries))
	for _, e := range entries {
		m := crewlog.CrewMember{
			Name:       workerName(e.WorkerName),
			StHours:    e.StHours,
			OtHours:    e.OtHours,
			DtHours:    e.DtHours,
			PotHours:   e.PotHours,
			TotalHours: e.TotalHours,
		}
		if m.TotalHours == 0 {
			m.TotalHours = m.BucketSum()
		}
		members = append(members, m)
	}
	return members
}

func workerName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
