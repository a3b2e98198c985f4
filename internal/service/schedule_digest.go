package service

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/crypto/blake2b"

	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/engine"
	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/models"
)

type digestPayload struct {
	Catalog      models.Catalog `json:"catalog"`
	NodeBudget   int64          `json:"nodeBudget"`
	TimeBudgetMs int64          `json:"timeBudgetMs"`
}

// SnapshotDigest hashes the catalog and budget with BLAKE2b-256. Entity order, duplicate
// set members and the way availability is split into intervals do not change the digest;
// names do, since they end up in exports.
func SnapshotDigest(catalog models.Catalog, cfg engine.Config) (string, error) {
	raw, err := json.Marshal(digestPayload{
		Catalog:      canonicalCatalog(catalog),
		NodeBudget:   cfg.NodeBudget,
		TimeBudgetMs: cfg.TimeBudget.Milliseconds(),
	})
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	sum := blake2b.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

func canonicalCatalog(c models.Catalog) models.Catalog {
	out := models.Catalog{
		Degrees:  append([]models.Degree(nil), c.Degrees...),
		Shifts:   make([]models.Shift, len(c.Shifts)),
		Teachers: make([]models.Teacher, len(c.Teachers)),
		Subjects: append([]models.Subject(nil), c.Subjects...),
		Groups:   make([]models.Group, len(c.Groups)),
	}
	sort.Slice(out.Degrees, func(i, j int) bool { return out.Degrees[i].ID < out.Degrees[j].ID })
	sort.Slice(out.Subjects, func(i, j int) bool { return out.Subjects[i].ID < out.Subjects[j].ID })

	for i, s := range c.Shifts {
		s.Days = sortedDays(s.Days)
		out.Shifts[i] = s
	}
	sort.Slice(out.Shifts, func(i, j int) bool { return out.Shifts[i].ID < out.Shifts[j].ID })

	for i, t := range c.Teachers {
		t.Availability = canonicalAvailability(t.Availability)
		t.CanTeach = sortedSet(t.CanTeach)
		out.Teachers[i] = t
	}
	sort.Slice(out.Teachers, func(i, j int) bool { return out.Teachers[i].ID < out.Teachers[j].ID })

	for i, g := range c.Groups {
		g.Subjects = sortedSet(g.Subjects)
		out.Groups[i] = g
	}
	sort.Slice(out.Groups, func(i, j int) bool { return out.Groups[i].ID < out.Groups[j].ID })
	return out
}

// canonicalAvailability merges the intervals into the hours they cover. Malformed
// input is only sorted; the engine rejects it anyway.
func canonicalAvailability(slots []models.TimeSlot) []models.TimeSlot {
	if cells, err := engine.Normalize(slots); err == nil {
		return cells.Intervals()
	}
	out := append([]models.TimeSlot(nil), slots...)
	sort.Slice(out, func(a, b int) bool {
		if out[a].Day != out[b].Day {
			return out[a].Day < out[b].Day
		}
		if out[a].Start != out[b].Start {
			return out[a].Start < out[b].Start
		}
		return out[a].End < out[b].End
	})
	return out
}

func sortedSet(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func sortedDays(days []models.Day) []models.Day {
	seen := make(map[models.Day]struct{}, len(days))
	out := make([]models.Day, 0, len(days))
	for _, d := range days {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
